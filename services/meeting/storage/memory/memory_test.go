package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meetscribe/backend/pkg/gen"
	"github.com/meetscribe/backend/services/meeting/entity"
)

func TestMeetingLifecycle(t *testing.T) {
	stg := New(gen.UUID())
	ctx := context.Background()

	meeting, err := stg.CreateMeeting(ctx, "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, meeting.ID)
	require.Equal(t, "Alice", meeting.HostName)
	require.False(t, meeting.Ended)

	_, err = stg.GetMeeting(ctx, "missing")
	require.ErrorIs(t, err, entity.ErrNotFound)

	require.NoError(t, stg.MarkEnded(ctx, meeting.ID))
	got, err := stg.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.True(t, got.Ended)

	require.ErrorIs(t, stg.MarkEnded(ctx, "missing"), entity.ErrNotFound)
}

func TestMergeRoleSummariesOverwrites(t *testing.T) {
	stg := New(gen.UUID())
	ctx := context.Background()

	meeting, err := stg.CreateMeeting(ctx, "Alice")
	require.NoError(t, err)

	require.NoError(t, stg.MergeRoleSummaries(ctx, meeting.ID, map[string]string{
		"attendee":  "first",
		"moderator": "second",
	}))
	require.NoError(t, stg.MergeRoleSummaries(ctx, meeting.ID, map[string]string{
		"attendee": "updated",
	}))

	got, err := stg.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"attendee":  "updated",
		"moderator": "second",
	}, got.RoleSummaries)
}

func TestListAudioClipsPreservesArrivalOrder(t *testing.T) {
	stg := New(gen.UUID())
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3"} {
		_, err := stg.CreateAudioClip(ctx, &entity.AudioClip{
			UserID:    user,
			MeetingID: "m1",
			AudioURL:  "/uploads/" + user + ".wav",
		})
		require.NoError(t, err)
	}

	clips, err := stg.ListAudioClips(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, clips, 3)
	require.Equal(t, "u1", clips[0].UserID)
	require.Equal(t, "u2", clips[1].UserID)
	require.Equal(t, "u3", clips[2].UserID)

	empty, err := stg.ListAudioClips(ctx, "other")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestClipTranscriptUpdates(t *testing.T) {
	stg := New(gen.UUID())
	ctx := context.Background()

	clip, err := stg.CreateAudioClip(ctx, &entity.AudioClip{
		UserID:    "u1",
		MeetingID: "m1",
		AudioURL:  "/uploads/u1.wav",
	})
	require.NoError(t, err)

	require.NoError(t, stg.MarkClipFailed(ctx, clip.ID))
	clips, err := stg.ListAudioClips(ctx, "m1")
	require.NoError(t, err)
	require.True(t, clips[0].TranscriptFailed)

	// A successful re-run clears the failure flag.
	require.NoError(t, stg.SaveClipTranscript(ctx, clip.ID, "hello"))
	clips, err = stg.ListAudioClips(ctx, "m1")
	require.NoError(t, err)
	require.Equal(t, "hello", clips[0].TranscriptText)
	require.False(t, clips[0].TranscriptFailed)

	require.ErrorIs(t, stg.SaveClipTranscript(ctx, "missing", "x"), entity.ErrNotFound)
	require.ErrorIs(t, stg.MarkClipFailed(ctx, "missing"), entity.ErrNotFound)
}

func TestReturnedMeetingIsACopy(t *testing.T) {
	stg := New(gen.UUID())
	ctx := context.Background()

	meeting, err := stg.CreateMeeting(ctx, "Alice")
	require.NoError(t, err)
	require.NoError(t, stg.MergeRoleSummaries(ctx, meeting.ID, map[string]string{"attendee": "a"}))

	got, err := stg.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	got.RoleSummaries["attendee"] = "mutated"
	got.Ended = true

	fresh, err := stg.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	require.Equal(t, "a", fresh.RoleSummaries["attendee"])
	require.False(t, fresh.Ended)
}
