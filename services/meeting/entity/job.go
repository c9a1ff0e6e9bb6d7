package entity

import "time"

type JobStatus string

const (
	JobUnknown JobStatus = ""
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// PipelineJob tracks one background transcription/summarization run.
type PipelineJob struct {
	MeetingID  string
	Status     JobStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}
