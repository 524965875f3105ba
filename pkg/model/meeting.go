package model

import "time"

// LunchLabel is matched literally by front-ends consuming rendered schedules.
const LunchLabel = "Lunch"

// Meeting is a fixed block of the day that task work must never overlap.
type Meeting struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Label  string    `json:"label"`
	Source string    `json:"source,omitempty"`
}

// Valid reports whether the meeting spans a positive interval.
func (m Meeting) Valid() bool {
	return m.Start.Before(m.End)
}

// Overlaps reports whether two meetings share any instant.
func (m Meeting) Overlaps(o Meeting) bool {
	return m.Start.Before(o.End) && o.Start.Before(m.End)
}
