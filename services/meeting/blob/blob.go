package blob

import "context"

// Store places uploaded audio bytes and returns the public URL path the
// bytes are served from.
type Store interface {
	Put(ctx context.Context, filename string, data []byte) (string, error)
}
