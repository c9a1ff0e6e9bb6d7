package entity

import "time"

type Meeting struct {
	ID            string            `json:"id"`
	HostName      string            `json:"hostName"`
	Ended         bool              `json:"ended"`
	RoleSummaries map[string]string `json:"roleSummaries,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type AudioClip struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	MeetingID        string    `json:"meetingId"`
	Role             string    `json:"role,omitempty"`
	AudioURL         string    `json:"audioUrl"`
	TranscriptText   string    `json:"transcriptText,omitempty"`
	TranscriptFailed bool      `json:"transcriptFailed,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type CreateMeetingRequest struct {
	HostName string
}

type CreateMeetingResponse struct {
	MeetingID string
}

type UploadAudioRequest struct {
	UserID    string
	MeetingID string
	Role      string
	Filename  string
	Data      []byte
}

type UploadAudioResponse struct {
	Clip *AudioClip
}

type MeetingExistsResponse struct {
	Exists bool
	Reason string
}

type EndMeetingResponse struct {
	MeetingID string
}

type SummaryResponse struct {
	Transcript string
	Summaries  map[string]string
	Status     JobStatus
}

type ClipTranscript struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Text   string `json:"text"`
}

type TranscriptResponse struct {
	Transcripts  []ClipTranscript
	Summaries    map[string]string
	Conversation string
	Status       JobStatus
}
