package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meetscribe/backend/pkg/gen"
	"github.com/meetscribe/backend/pkg/logger"
	"github.com/meetscribe/backend/services/meeting/entity"
	"github.com/meetscribe/backend/services/meeting/storage"
)

type Storage struct {
	db      *gorm.DB
	uuidGen gen.UUIDGenerator
}

func New(dsn string, uuidGen gen.UUIDGenerator) (*Storage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.AutoMigrate(&meetingModel{}, &audioClipModel{}, &roleSummaryModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Storage{
		db:      db,
		uuidGen: uuidGen,
	}, nil
}

var _ storage.Storage = (*Storage)(nil)

func (s *Storage) CreateMeeting(ctx context.Context, hostName string) (*entity.Meeting, error) {
	log := logger.FromContext(ctx)

	model := &meetingModel{
		ID:       s.uuidGen.NextString(),
		HostName: hostName,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		log.Error("failed to create meeting", "error", err)
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	log.Debug("created meeting", "meeting_id", model.ID)

	return meetingToEntity(model, nil), nil
}

func (s *Storage) GetMeeting(ctx context.Context, id string) (*entity.Meeting, error) {
	var model meetingModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	var summaries []roleSummaryModel
	if err := s.db.WithContext(ctx).Where("meeting_id = ?", id).Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to load role summaries: %w", err)
	}

	return meetingToEntity(&model, summaries), nil
}

func (s *Storage) MarkEnded(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&meetingModel{}).Where("id = ?", id).Update("ended", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark meeting ended: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("meeting %s: %w", id, entity.ErrNotFound)
	}
	return nil
}

// MergeRoleSummaries upserts one row per role, overwriting existing entries.
func (s *Storage) MergeRoleSummaries(ctx context.Context, id string, summaries map[string]string) error {
	if len(summaries) == 0 {
		return nil
	}

	rows := make([]roleSummaryModel, 0, len(summaries))
	for role, summary := range summaries {
		rows = append(rows, roleSummaryModel{
			MeetingID: id,
			Role:      role,
			Summary:   summary,
		})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "role"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to merge role summaries: %w", err)
	}
	return nil
}

func (s *Storage) CreateAudioClip(ctx context.Context, clip *entity.AudioClip) (*entity.AudioClip, error) {
	log := logger.FromContext(ctx)

	model := &audioClipModel{
		ID:        s.uuidGen.NextString(),
		UserID:    clip.UserID,
		MeetingID: clip.MeetingID,
		Role:      clip.Role,
		AudioURL:  clip.AudioURL,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		log.Error("failed to create audio clip", "error", err)
		return nil, fmt.Errorf("failed to create audio clip: %w", err)
	}
	log.Debug("created audio clip", "clip_id", model.ID, "meeting_id", model.MeetingID)

	return clipToEntity(model), nil
}

// ListAudioClips returns clips in arrival order.
func (s *Storage) ListAudioClips(ctx context.Context, meetingID string) ([]*entity.AudioClip, error) {
	var models []audioClipModel
	err := s.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("seq ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audio clips: %w", err)
	}

	clips := make([]*entity.AudioClip, len(models))
	for i := range models {
		clips[i] = clipToEntity(&models[i])
	}
	return clips, nil
}

func (s *Storage) SaveClipTranscript(ctx context.Context, clipID, text string) error {
	res := s.db.WithContext(ctx).Model(&audioClipModel{}).Where("id = ?", clipID).
		Updates(map[string]any{"transcript_text": text, "transcript_failed": false})
	if res.Error != nil {
		return fmt.Errorf("failed to save transcript: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("audio clip %s: %w", clipID, entity.ErrNotFound)
	}
	return nil
}

func (s *Storage) MarkClipFailed(ctx context.Context, clipID string) error {
	res := s.db.WithContext(ctx).Model(&audioClipModel{}).Where("id = ?", clipID).
		Update("transcript_failed", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark clip failed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("audio clip %s: %w", clipID, entity.ErrNotFound)
	}
	return nil
}
