package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/meetscribe/backend/pkg/logger"
	"github.com/meetscribe/backend/services/meeting/blob"
	"github.com/meetscribe/backend/services/meeting/consts"
	"github.com/meetscribe/backend/services/meeting/entity"
	"github.com/meetscribe/backend/services/meeting/pipeline"
	"github.com/meetscribe/backend/services/meeting/storage"
)

// TranscriptionClient turns a stored audio URL into transcript text.
type TranscriptionClient interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// SummarizationClient produces role keyed summaries and conversation
// narratives from transcripts.
type SummarizationClient interface {
	Summarize(ctx context.Context, transcripts, roles map[string]string) (map[string]string, error)
	Conversation(ctx context.Context, transcripts []string) (string, error)
}

type Usecase interface {
	CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.CreateMeetingResponse, error)
	UploadAudio(ctx context.Context, req *entity.UploadAudioRequest) (*entity.UploadAudioResponse, error)
	MeetingExists(ctx context.Context, meetingID string) (*entity.MeetingExistsResponse, error)
	EndMeeting(ctx context.Context, meetingID string) (*entity.EndMeetingResponse, error)
	GetSummary(ctx context.Context, meetingID string) (*entity.SummaryResponse, error)
	GetTranscript(ctx context.Context, meetingID string) (*entity.TranscriptResponse, error)
}

type usecase struct {
	storage     storage.Storage
	blobs       blob.Store
	transcriber TranscriptionClient
	summarizer  SummarizationClient
	runner      *pipeline.Runner

	transcribeAttempts int
}

func New(stg storage.Storage, blobs blob.Store, transcriber TranscriptionClient, summarizer SummarizationClient, runner *pipeline.Runner, transcribeAttempts int) Usecase {
	if transcribeAttempts < 1 {
		transcribeAttempts = 1
	}
	return &usecase{
		storage:            stg,
		blobs:              blobs,
		transcriber:        transcriber,
		summarizer:         summarizer,
		runner:             runner,
		transcribeAttempts: transcribeAttempts,
	}
}

func (u *usecase) CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.CreateMeetingResponse, error) {
	if strings.TrimSpace(req.HostName) == "" {
		return nil, fmt.Errorf("%w: host name is required", entity.ErrValidation)
	}

	meeting, err := u.storage.CreateMeeting(ctx, req.HostName)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "meeting created", "meeting_id", meeting.ID, "host_name", meeting.HostName)

	return &entity.CreateMeetingResponse{MeetingID: meeting.ID}, nil
}

func (u *usecase) UploadAudio(ctx context.Context, req *entity.UploadAudioRequest) (*entity.UploadAudioResponse, error) {
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: no audio file uploaded", entity.ErrValidation)
	}
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.MeetingID) == "" {
		return nil, fmt.Errorf("%w: userId and meetingId are required", entity.ErrValidation)
	}

	// Uploads against unknown or already ended meetings are accepted for
	// backward compatibility; the meeting is only checked to warn.
	if meeting, err := u.storage.GetMeeting(ctx, req.MeetingID); err != nil {
		logger.Warn(ctx, "audio uploaded for unknown meeting", "meeting_id", req.MeetingID)
	} else if meeting.Ended {
		logger.Warn(ctx, "audio uploaded for ended meeting", "meeting_id", req.MeetingID)
	}

	audioURL, err := u.blobs.Put(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	clip, err := u.storage.CreateAudioClip(ctx, &entity.AudioClip{
		UserID:    req.UserID,
		MeetingID: req.MeetingID,
		Role:      req.Role,
		AudioURL:  audioURL,
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "audio clip stored",
		"clip_id", clip.ID,
		"meeting_id", clip.MeetingID,
		"user_id", clip.UserID,
		"audio_url", clip.AudioURL)

	return &entity.UploadAudioResponse{Clip: clip}, nil
}

func (u *usecase) MeetingExists(ctx context.Context, meetingID string) (*entity.MeetingExistsResponse, error) {
	meeting, err := u.storage.GetMeeting(ctx, meetingID)
	if err != nil {
		if isNotFound(err) {
			return &entity.MeetingExistsResponse{Exists: false, Reason: "Meeting does not exist"}, nil
		}
		return nil, err
	}

	if meeting.Ended {
		return &entity.MeetingExistsResponse{Exists: false, Reason: "Meeting has ended"}, nil
	}
	return &entity.MeetingExistsResponse{Exists: true}, nil
}

// EndMeeting flips the ended flag and triggers the transcription pipeline in
// the background. Ending an already ended meeting is a no-op and does not
// re-trigger the pipeline.
func (u *usecase) EndMeeting(ctx context.Context, meetingID string) (*entity.EndMeetingResponse, error) {
	meeting, err := u.storage.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Ended {
		logger.Info(ctx, "meeting already ended", "meeting_id", meetingID)
		return &entity.EndMeetingResponse{MeetingID: meetingID}, nil
	}

	if err := u.storage.MarkEnded(ctx, meetingID); err != nil {
		return nil, err
	}
	logger.Info(ctx, "meeting ended", "meeting_id", meetingID)

	u.runner.Trigger(ctx, meetingID, u.runPipeline)

	return &entity.EndMeetingResponse{MeetingID: meetingID}, nil
}

func (u *usecase) GetSummary(ctx context.Context, meetingID string) (*entity.SummaryResponse, error) {
	meeting, err := u.storage.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	clips, err := u.storage.ListAudioClips(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(clips))
	for _, clip := range clips {
		if clip.TranscriptText != "" {
			texts = append(texts, clip.TranscriptText)
		}
	}

	return &entity.SummaryResponse{
		Transcript: strings.Join(texts, "\n"),
		Summaries:  meeting.RoleSummaries,
		Status:     u.pipelineStatus(meeting),
	}, nil
}

// GetTranscript returns per-clip transcripts plus a synthesized conversation
// narrative built from the first two clips. A failed synthesis call degrades
// to the fallback string instead of failing the request.
func (u *usecase) GetTranscript(ctx context.Context, meetingID string) (*entity.TranscriptResponse, error) {
	meeting, err := u.storage.GetMeeting(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	clips, err := u.storage.ListAudioClips(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	transcripts := make([]entity.ClipTranscript, len(clips))
	for i, clip := range clips {
		transcripts[i] = entity.ClipTranscript{
			UserID: clip.UserID,
			Role:   clipRole(clip, i),
			Text:   clip.TranscriptText,
		}
	}

	conversation := consts.ConversationFallback
	if len(clips) >= 2 {
		synthesized, err := u.summarizer.Conversation(ctx, []string{
			clips[0].TranscriptText,
			clips[1].TranscriptText,
		})
		if err != nil {
			logger.Warn(ctx, "conversation synthesis failed",
				"meeting_id", meetingID,
				"error", err.Error())
		} else {
			conversation = synthesized
		}
	}

	return &entity.TranscriptResponse{
		Transcripts:  transcripts,
		Summaries:    meeting.RoleSummaries,
		Conversation: conversation,
		Status:       u.pipelineStatus(meeting),
	}, nil
}

// pipelineStatus prefers the runner's in-process job state and falls back to
// inferring from persisted data after a restart.
func (u *usecase) pipelineStatus(meeting *entity.Meeting) entity.JobStatus {
	if status := u.runner.Status(meeting.ID); status != entity.JobUnknown {
		return status
	}
	if len(meeting.RoleSummaries) > 0 {
		return entity.JobDone
	}
	if meeting.Ended {
		return entity.JobPending
	}
	return entity.JobUnknown
}
