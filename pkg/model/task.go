package model

import "time"

// Task is a unit of work handed to the scheduler. Tasks have no identity
// beyond their description; two tasks with the same text share history.
type Task struct {
	Description string
	// Estimate is an optional source-provided estimate ("est" UDA, org Effort).
	// When set it replaces the configured default for tasks without history.
	Estimate time.Duration
	Source   string // "file", "taskwarrior" or "orgmode"
}

// Descriptions returns the description of every task, in order.
func Descriptions(tasks []Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Description)
	}
	return out
}

// FromDescriptions wraps plain descriptions into tasks without estimates.
func FromDescriptions(descs []string) []Task {
	out := make([]Task, 0, len(descs))
	for _, d := range descs {
		out = append(out, Task{Description: d})
	}
	return out
}
