package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_pipeline_runs_total",
		Help: "Completed transcription/summarization pipeline runs by outcome.",
	}, []string{"status"})

	duplicateTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_pipeline_duplicate_triggers_total",
		Help: "Pipeline triggers refused because a run was already in flight.",
	})

	clipFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_transcription_clip_failures_total",
		Help: "Audio clips skipped after exhausting transcription attempts.",
	})
)

// RecordClipFailure counts one clip that exhausted its transcription
// attempts and was skipped.
func RecordClipFailure() {
	clipFailuresTotal.Inc()
}
