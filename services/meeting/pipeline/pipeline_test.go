package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meetscribe/backend/services/meeting/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTriggerRunsToCompletion(t *testing.T) {
	runner := New(testLogger())

	ran := make(chan string, 1)
	ok := runner.Trigger(context.Background(), "m1", func(ctx context.Context, meetingID string) error {
		ran <- meetingID
		return nil
	})
	require.True(t, ok)

	select {
	case id := <-ran:
		require.Equal(t, "m1", id)
	case <-time.After(time.Second):
		t.Fatal("pipeline run did not start")
	}

	require.NoError(t, runner.Drain(context.Background()))
	require.Equal(t, entity.JobDone, runner.Status("m1"))
}

func TestTriggerRefusesDuplicateWhileRunning(t *testing.T) {
	runner := New(testLogger())

	release := make(chan struct{})
	started := make(chan struct{})
	ok := runner.Trigger(context.Background(), "m1", func(ctx context.Context, meetingID string) error {
		close(started)
		<-release
		return nil
	})
	require.True(t, ok)
	<-started

	require.False(t, runner.Trigger(context.Background(), "m1", func(ctx context.Context, meetingID string) error {
		return nil
	}))
	require.Equal(t, entity.JobRunning, runner.Status("m1"))

	close(release)
	require.NoError(t, runner.Drain(context.Background()))

	// A finished job may be triggered again.
	require.True(t, runner.Trigger(context.Background(), "m1", func(ctx context.Context, meetingID string) error {
		return nil
	}))
	require.NoError(t, runner.Drain(context.Background()))
}

func TestFailedRunSetsFailedStatus(t *testing.T) {
	runner := New(testLogger())

	bang := errors.New("provider down")
	require.True(t, runner.Trigger(context.Background(), "m1", func(ctx context.Context, meetingID string) error {
		return bang
	}))
	require.NoError(t, runner.Drain(context.Background()))
	require.Equal(t, entity.JobFailed, runner.Status("m1"))
}

func TestStatusUnknownForUntriggeredMeeting(t *testing.T) {
	runner := New(testLogger())
	require.Equal(t, entity.JobUnknown, runner.Status("never"))
}

func TestDrainTimesOut(t *testing.T) {
	runner := New(testLogger())

	release := make(chan struct{})
	require.True(t, runner.Trigger(context.Background(), "m1", func(ctx context.Context, meetingID string) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, runner.Drain(ctx))

	close(release)
	require.NoError(t, runner.Drain(context.Background()))
}

func TestRunSurvivesCanceledTriggerContext(t *testing.T) {
	runner := New(testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan error, 1)
	require.True(t, runner.Trigger(ctx, "m1", func(runCtx context.Context, meetingID string) error {
		got <- runCtx.Err()
		return nil
	}))
	cancel()

	require.NoError(t, runner.Drain(context.Background()))
	require.NoError(t, <-got)
	require.Equal(t, entity.JobDone, runner.Status("m1"))
}
