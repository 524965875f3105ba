package taskwarrior

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/util"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
)

type CustomTime struct {
	time.Time
}

const taskwarriorTimeLayout = "20060102T150405Z" // YYYYMMDDTHHMMSSZ, always UTC

// UnmarshalJSON implements the json.Unmarshaler interface for CustomTime.
func (ct *CustomTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(taskwarriorTimeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time string '%s': %w", s, err)
	}
	ct.Time = t
	return nil
}

// MarshalJSON implements the json.Marshaler interface for CustomTime.
func (ct CustomTime) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.Format(taskwarriorTimeLayout) + `"`), nil
}

type Task struct {
	UUID        string      `json:"uuid"`
	Description string      `json:"description"`
	Due         *CustomTime `json:"due,omitempty"`
	Scheduled   *CustomTime `json:"scheduled,omitempty"`
	Status      string      `json:"status"`
	Project     string      `json:"project,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Urgency     float64     `json:"urgency,omitempty"`
	Start       *CustomTime `json:"start,omitempty"`
	End         *CustomTime `json:"end,omitempty"`
	// Duration UDAs configured as uda.estimate.label=est and uda.actual.label=act.
	Est string `json:"est,omitempty"`
	Act string `json:"act,omitempty"`
}

// Blocked reports whether the task carries the virtual BLOCKED tag.
func (t Task) Blocked() bool {
	for _, tag := range t.Tags {
		if tag == "BLOCKED" {
			return true
		}
	}
	return false
}

// ToTask converts to a scheduler task. A malformed "est" is ignored.
func (t Task) ToTask() model.Task {
	est, err := util.ParseDuration(t.Est)
	if err != nil {
		log.Printf("Warning: ignoring estimate of task %s: %v", t.UUID, err)
		est = 0
	}
	return model.Task{Description: t.Description, Estimate: est, Source: "taskwarrior"}
}
