package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/meetscribe/backend/services/meeting/entity"
)

// RunFunc is the pipeline body executed for one meeting.
type RunFunc func(ctx context.Context, meetingID string) error

// Runner launches pipeline runs detached from the triggering request and
// tracks one job per meeting. A meeting with a pending or running job cannot
// be triggered again; finished jobs may be re-triggered.
type Runner struct {
	mu   sync.RWMutex
	jobs map[string]*entity.PipelineJob
	wg   sync.WaitGroup
	log  *slog.Logger
}

func New(log *slog.Logger) *Runner {
	log.Debug("creating pipeline runner")
	return &Runner{
		jobs: make(map[string]*entity.PipelineJob),
		log:  log,
	}
}

// Trigger starts run in the background. It reports false when a job for the
// meeting is already in flight.
func (r *Runner) Trigger(ctx context.Context, meetingID string, run RunFunc) bool {
	r.mu.Lock()
	if job, exists := r.jobs[meetingID]; exists {
		if job.Status == entity.JobPending || job.Status == entity.JobRunning {
			r.mu.Unlock()
			r.log.Warn("pipeline already in flight, trigger refused",
				slog.String("meeting_id", meetingID))
			duplicateTriggers.Inc()
			return false
		}
	}

	job := &entity.PipelineJob{
		MeetingID: meetingID,
		Status:    entity.JobPending,
		StartedAt: time.Now(),
	}
	r.jobs[meetingID] = job
	r.wg.Add(1)
	r.mu.Unlock()

	// The run must outlive the HTTP request that triggered it.
	runCtx := context.WithoutCancel(ctx)

	go func() {
		defer r.wg.Done()

		r.setStatus(meetingID, entity.JobRunning, nil)
		r.log.Info("pipeline run started", slog.String("meeting_id", meetingID))

		err := run(runCtx, meetingID)
		if err != nil {
			r.log.Error("pipeline run failed",
				slog.String("meeting_id", meetingID),
				slog.String("error", err.Error()))
			r.setStatus(meetingID, entity.JobFailed, err)
			runsTotal.WithLabelValues(string(entity.JobFailed)).Inc()
			return
		}

		r.log.Info("pipeline run finished", slog.String("meeting_id", meetingID))
		r.setStatus(meetingID, entity.JobDone, nil)
		runsTotal.WithLabelValues(string(entity.JobDone)).Inc()
	}()

	return true
}

// Status reports the job state for a meeting, JobUnknown when no job was
// ever triggered in this process.
func (r *Runner) Status(meetingID string) entity.JobStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[meetingID]
	if !exists {
		return entity.JobUnknown
	}
	return job.Status
}

// Drain waits for in-flight runs to finish or the context to expire.
func (r *Runner) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("pipeline runner drained")
		return nil
	case <-ctx.Done():
		r.log.Warn("pipeline drain timed out", slog.String("error", ctx.Err().Error()))
		return ctx.Err()
	}
}

func (r *Runner) setStatus(meetingID string, status entity.JobStatus, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, exists := r.jobs[meetingID]
	if !exists {
		return
	}
	job.Status = status
	job.Err = err
	if status == entity.JobDone || status == entity.JobFailed {
		job.FinishedAt = time.Now()
	}
}
