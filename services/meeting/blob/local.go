package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meetscribe/backend/pkg/logger"
	"github.com/meetscribe/backend/services/meeting/consts"
	"github.com/meetscribe/backend/services/meeting/entity"
)

// LocalStore writes audio files to a directory on disk. Stored names are
// prefixed with the upload time in unix milliseconds to avoid collisions.
type LocalStore struct {
	dir string
}

func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

var _ Store = (*LocalStore)(nil)

func (s *LocalStore) Put(ctx context.Context, filename string, data []byte) (string, error) {
	log := logger.FromContext(ctx)

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(filename))
	dest := filepath.Join(s.dir, name)

	if err := os.WriteFile(dest, data, 0o644); err != nil {
		log.Error("failed to write audio file", "path", dest, "error", err)
		return "", fmt.Errorf("%w: failed to write audio file: %v", entity.ErrStorage, err)
	}
	log.Debug("audio file stored", "path", dest, "size", len(data))

	return consts.UploadURLPrefix + "/" + name, nil
}

// Dir is the directory static file serving should be rooted at.
func (s *LocalStore) Dir() string {
	return s.dir
}
