package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meetscribe/backend/pkg/gen"
	"github.com/meetscribe/backend/services/meeting/entity"
	"github.com/meetscribe/backend/services/meeting/storage"
)

// Storage keeps all records in process memory. It backs the service when no
// DATABASE_URL is configured and is the storage used by the test suites.
type Storage struct {
	mu       sync.RWMutex
	uuidGen  gen.UUIDGenerator
	meetings map[string]*entity.Meeting
	clips    map[string][]*entity.AudioClip
	clipByID map[string]*entity.AudioClip
}

func New(uuidGen gen.UUIDGenerator) *Storage {
	return &Storage{
		uuidGen:  uuidGen,
		meetings: make(map[string]*entity.Meeting),
		clips:    make(map[string][]*entity.AudioClip),
		clipByID: make(map[string]*entity.AudioClip),
	}
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateMeeting(ctx context.Context, hostName string) (*entity.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	meeting := &entity.Meeting{
		ID:        s.uuidGen.NextString(),
		HostName:  hostName,
		Ended:     false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.meetings[meeting.ID] = meeting

	return copyMeeting(meeting), nil
}

func (s *Storage) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meeting, exists := s.meetings[id]
	if !exists {
		return nil, fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	return copyMeeting(meeting), nil
}

func (s *Storage) MarkEnded(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, exists := s.meetings[id]
	if !exists {
		return fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	meeting.Ended = true
	meeting.UpdatedAt = time.Now()
	return nil
}

func (s *Storage) MergeRoleSummaries(ctx context.Context, id string, summaries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meeting, exists := s.meetings[id]
	if !exists {
		return fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	if meeting.RoleSummaries == nil {
		meeting.RoleSummaries = make(map[string]string, len(summaries))
	}
	for role, summary := range summaries {
		meeting.RoleSummaries[role] = summary
	}
	meeting.UpdatedAt = time.Now()
	return nil
}

func (s *Storage) CreateAudioClip(ctx context.Context, clip *entity.AudioClip) (*entity.AudioClip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *clip
	stored.ID = s.uuidGen.NextString()
	stored.CreatedAt = time.Now()

	s.clips[stored.MeetingID] = append(s.clips[stored.MeetingID], &stored)
	s.clipByID[stored.ID] = &stored

	out := stored
	return &out, nil
}

// ListAudioClips returns clips in arrival order.
func (s *Storage) ListAudioClips(ctx context.Context, meetingID string) ([]*entity.AudioClip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clips := s.clips[meetingID]
	out := make([]*entity.AudioClip, len(clips))
	for i, clip := range clips {
		c := *clip
		out[i] = &c
	}
	return out, nil
}

func (s *Storage) SaveClipTranscript(ctx context.Context, clipID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, exists := s.clipByID[clipID]
	if !exists {
		return fmt.Errorf("audio clip %s: %w", clipID, entity.ErrNotFound)
	}
	clip.TranscriptText = text
	clip.TranscriptFailed = false
	return nil
}

func (s *Storage) MarkClipFailed(ctx context.Context, clipID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, exists := s.clipByID[clipID]
	if !exists {
		return fmt.Errorf("audio clip %s: %w", clipID, entity.ErrNotFound)
	}
	clip.TranscriptFailed = true
	return nil
}

func copyMeeting(m *entity.Meeting) *entity.Meeting {
	out := *m
	if m.RoleSummaries != nil {
		out.RoleSummaries = make(map[string]string, len(m.RoleSummaries))
		for role, summary := range m.RoleSummaries {
			out.RoleSummaries[role] = summary
		}
	}
	return &out
}
