// Package metrics defines the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SourceFailures counts meeting sources that errored, timed out or panicked.
var SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dayplan",
	Name:      "source_failures_total",
	Help:      "Meeting source fetches that contributed nothing because they failed.",
}, []string{"source"})

// SourceMeetings counts meetings contributed per source.
var SourceMeetings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dayplan",
	Name:      "source_meetings_total",
	Help:      "Meetings contributed by each source.",
}, []string{"source"})

var MeetingOverlaps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dayplan",
	Name:      "meeting_overlaps_total",
	Help:      "Pairs of overlapping meetings seen while loading a day.",
})

var SchedulesBuilt = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dayplan",
	Name:      "schedules_built_total",
	Help:      "Day plans produced.",
})

var UnscheduledTasks = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "dayplan",
	Name:      "schedule_unscheduled_tasks",
	Help:      "Tasks that did not fit in the day, per plan.",
	Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
})

var CompletionsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "dayplan",
	Name:      "completions_recorded_total",
	Help:      "Task completion durations appended to history.",
})
