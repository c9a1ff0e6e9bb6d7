package usecase

import (
	"context"
	"errors"
	"strconv"

	"github.com/meetscribe/backend/pkg/logger"
	"github.com/meetscribe/backend/services/meeting/consts"
	"github.com/meetscribe/backend/services/meeting/entity"
	"github.com/meetscribe/backend/services/meeting/pipeline"
)

// runPipeline is the background pipeline body: transcribe every clip in
// arrival order, then summarize per role and persist the result. Individual
// clip failures are skipped after bounded attempts; a summarization failure
// fails the run.
func (u *usecase) runPipeline(ctx context.Context, meetingID string) error {
	log := logger.With(ctx, "meeting_id", meetingID)

	clips, err := u.storage.ListAudioClips(ctx, meetingID)
	if err != nil {
		return err
	}
	if len(clips) == 0 {
		log.Info("no audio clips for meeting, skipping pipeline")
		return nil
	}
	log.Info("pipeline transcribing clips", "clips_count", len(clips))

	transcripts := make(map[string]string, len(clips))
	roles := make(map[string]string, len(clips))

	for i, clip := range clips {
		key := positionalKey(i)
		roles[key] = clipRole(clip, i)

		text, err := u.transcribeClip(ctx, clip)
		if err != nil {
			log.Error("clip transcription exhausted attempts, skipping",
				"clip_id", clip.ID,
				"attempts", u.transcribeAttempts,
				"error", err.Error())
			pipeline.RecordClipFailure()
			if err := u.storage.MarkClipFailed(ctx, clip.ID); err != nil {
				log.Error("failed to flag clip", "clip_id", clip.ID, "error", err.Error())
			}
			continue
		}

		if err := u.storage.SaveClipTranscript(ctx, clip.ID, text); err != nil {
			return err
		}
		transcripts[key] = text
		log.Debug("clip transcribed", "clip_id", clip.ID, "speaker_key", key)
	}

	if len(transcripts) == 0 {
		log.Warn("no clip produced a transcript, skipping summarization")
		return nil
	}

	summaries, err := u.summarizer.Summarize(ctx, transcripts, roles)
	if err != nil {
		return err
	}

	if err := u.storage.MergeRoleSummaries(ctx, meetingID, summaries); err != nil {
		return err
	}
	log.Info("role summaries persisted", "roles_count", len(summaries))

	return nil
}

func (u *usecase) transcribeClip(ctx context.Context, clip *entity.AudioClip) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= u.transcribeAttempts; attempt++ {
		text, err := u.transcriber.Transcribe(ctx, clip.AudioURL)
		if err == nil {
			return text, nil
		}
		lastErr = err
		logger.Warn(ctx, "clip transcription attempt failed",
			"clip_id", clip.ID,
			"attempt", attempt,
			"error", err.Error())
	}
	return "", lastErr
}

// positionalKey labels the i-th clip "user1", "user2", ...
func positionalKey(i int) string {
	return "user" + strconv.Itoa(i+1)
}

// clipRole prefers the role captured at upload time and falls back to the
// positional default map; clips past the defaults keep their positional key.
func clipRole(clip *entity.AudioClip, i int) string {
	if clip.Role != "" {
		return clip.Role
	}
	key := positionalKey(i)
	if role, ok := consts.DefaultRoles[key]; ok {
		return role
	}
	return key
}

func isNotFound(err error) bool {
	return errors.Is(err, entity.ErrNotFound)
}
