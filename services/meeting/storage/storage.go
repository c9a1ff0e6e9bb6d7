package storage

import (
	"context"

	"github.com/meetscribe/backend/services/meeting/entity"
)

// Storage persists meetings and their audio clips. Lookups for absent records
// return errors wrapping entity.ErrNotFound.
type Storage interface {
	CreateMeeting(ctx context.Context, hostName string) (*entity.Meeting, error)
	GetMeeting(ctx context.Context, id string) (*entity.Meeting, error)
	MarkEnded(ctx context.Context, id string) error
	MergeRoleSummaries(ctx context.Context, id string, summaries map[string]string) error

	CreateAudioClip(ctx context.Context, clip *entity.AudioClip) (*entity.AudioClip, error)
	ListAudioClips(ctx context.Context, meetingID string) ([]*entity.AudioClip, error)
	SaveClipTranscript(ctx context.Context, clipID, text string) error
	MarkClipFailed(ctx context.Context, clipID string) error
}
