package model

import (
	"fmt"
	"strings"
	"time"
)

// EntryKind tells task work, breaks and fixed meetings apart.
type EntryKind string

const (
	KindTask    EntryKind = "task"
	KindBreak   EntryKind = "break"
	KindMeeting EntryKind = "meeting"
)

// BreakLabel is matched literally by front-ends consuming rendered schedules.
const BreakLabel = "Break"

const clockLayout = "15:04"

// Entry is one block of the day plan.
type Entry struct {
	Kind  EntryKind `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Label string    `json:"label"`
}

// Line renders the entry as "HH:MM - HH:MM: label".
func (e Entry) Line() string {
	return fmt.Sprintf("%s - %s: %s", e.Start.Format(clockLayout), e.End.Format(clockLayout), e.Label)
}

// Schedule is an ordered day plan.
type Schedule []Entry

// Lines renders each entry on its own line.
func (s Schedule) Lines() []string {
	lines := make([]string, 0, len(s))
	for _, e := range s {
		lines = append(lines, e.Line())
	}
	return lines
}

// String joins the rendered lines with newlines.
func (s Schedule) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Tasks returns only the task-work entries.
func (s Schedule) Tasks() []Entry {
	var out []Entry
	for _, e := range s {
		if e.Kind == KindTask {
			out = append(out, e)
		}
	}
	return out
}
