package postgres

import (
	"time"

	"github.com/meetscribe/backend/services/meeting/entity"
)

type meetingModel struct {
	ID        string `gorm:"primaryKey"`
	HostName  string `gorm:"not null"`
	Ended     bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (meetingModel) TableName() string { return "meetings" }

type audioClipModel struct {
	ID string `gorm:"primaryKey"`
	// Seq preserves arrival order; created_at alone can collide.
	Seq              int64  `gorm:"autoIncrement;uniqueIndex"`
	UserID           string `gorm:"not null"`
	MeetingID        string `gorm:"index;not null"`
	Role             string
	AudioURL         string `gorm:"not null"`
	TranscriptText   string `gorm:"type:text"`
	TranscriptFailed bool   `gorm:"not null;default:false"`
	CreatedAt        time.Time
}

func (audioClipModel) TableName() string { return "audio_clips" }

type roleSummaryModel struct {
	MeetingID string `gorm:"primaryKey"`
	Role      string `gorm:"primaryKey"`
	Summary   string `gorm:"type:text"`
	UpdatedAt time.Time
}

func (roleSummaryModel) TableName() string { return "role_summaries" }

func meetingToEntity(m *meetingModel, summaries []roleSummaryModel) *entity.Meeting {
	var roleSummaries map[string]string
	if len(summaries) > 0 {
		roleSummaries = make(map[string]string, len(summaries))
		for _, row := range summaries {
			roleSummaries[row.Role] = row.Summary
		}
	}

	return &entity.Meeting{
		ID:            m.ID,
		HostName:      m.HostName,
		Ended:         m.Ended,
		RoleSummaries: roleSummaries,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func clipToEntity(m *audioClipModel) *entity.AudioClip {
	return &entity.AudioClip{
		ID:               m.ID,
		UserID:           m.UserID,
		MeetingID:        m.MeetingID,
		Role:             m.Role,
		AudioURL:         m.AudioURL,
		TranscriptText:   m.TranscriptText,
		TranscriptFailed: m.TranscriptFailed,
		CreatedAt:        m.CreatedAt,
	}
}
