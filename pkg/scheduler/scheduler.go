// Package scheduler lays out a single workday from an ordered task list,
// today's fixed meetings and predicted task durations.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/clock"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/metrics"
	"github.com/harrisonrobin/dayplan/pkg/model"
)

// ErrInvalidDuration is returned when a task's predicted length is not positive.
var ErrInvalidDuration = errors.New("predicted task duration must be positive")

// MeetingLoader supplies today's fixed blocks sorted by start.
type MeetingLoader interface {
	LoadToday(ctx context.Context) []model.Meeting
}

// Predictor estimates task length in minutes.
type Predictor interface {
	PredictDuration(ctx context.Context, task string, defaultMinutes float64) float64
}

// Options describes the workday. Clock values are offsets from midnight.
type Options struct {
	DayStart        time.Duration
	DayEnd          time.Duration
	Break           time.Duration
	DefaultDuration time.Duration
}

// DefaultOptions is a 09:00-18:00 day with 10 minute breaks and 50 minute tasks.
func DefaultOptions() Options {
	return Options{
		DayStart:        9 * time.Hour,
		DayEnd:          18 * time.Hour,
		Break:           10 * time.Minute,
		DefaultDuration: 50 * time.Minute,
	}
}

// OptionsFromConfig converts the configured "HH:MM" workday into Options.
func OptionsFromConfig(day config.DayConfig) (Options, error) {
	midnight := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	startAt, endAt, err := day.Window(midnight)
	if err != nil {
		return Options{}, err
	}
	start, end := startAt.Sub(midnight), endAt.Sub(midnight)
	if end <= start {
		return Options{}, fmt.Errorf("day start %s must be before day end %s", day.Start, day.End)
	}
	return Options{
		DayStart:        start,
		DayEnd:          end,
		Break:           time.Duration(day.BreakMinutes) * time.Minute,
		DefaultDuration: time.Duration(day.DefaultTaskMinutes) * time.Minute,
	}, nil
}

// Scheduler holds no state between Plan calls.
type Scheduler struct {
	meetings  MeetingLoader
	predictor Predictor
	clock     clock.Clock
	opts      Options
}

func New(meetings MeetingLoader, predictor Predictor, c clock.Clock, opts Options) *Scheduler {
	return &Scheduler{meetings: meetings, predictor: predictor, clock: c, opts: opts}
}

// PlanDescriptions plans plain task descriptions.
func (s *Scheduler) PlanDescriptions(ctx context.Context, tasks []string) (model.Schedule, error) {
	return s.Plan(ctx, model.FromDescriptions(tasks))
}

// Plan builds today's schedule. Tasks are placed first-fit in the given
// order; a task that does not fit before the next fixed block waits for a
// later gap, and tasks that never fit are left out.
func (s *Scheduler) Plan(ctx context.Context, tasks []model.Task) (model.Schedule, error) {
	durations, err := s.predict(ctx, tasks)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	dayStart := onDay(now, s.opts.DayStart)
	dayEnd := onDay(now, s.opts.DayEnd)

	p := &planner{
		tasks:     tasks,
		durations: durations,
		brk:       s.opts.Break,
		current:   dayStart,
	}

	for _, m := range s.meetings.LoadToday(ctx) {
		if !m.End.After(dayStart) || !m.Start.Before(dayEnd) {
			continue
		}
		p.fillUntil(m.Start)
		if p.current.Before(m.Start) {
			p.current = m.Start
		}
		if p.current.Before(m.End) {
			p.emit(model.KindMeeting, p.current, m.End, m.Label)
			p.current = m.End
		}
	}
	p.fillUntil(dayEnd)

	metrics.SchedulesBuilt.Inc()
	metrics.UnscheduledTasks.Observe(float64(len(tasks) - p.next))
	return p.schedule, nil
}

func (s *Scheduler) predict(ctx context.Context, tasks []model.Task) ([]time.Duration, error) {
	out := make([]time.Duration, len(tasks))
	for i, t := range tasks {
		def := s.opts.DefaultDuration
		if t.Estimate > 0 {
			def = t.Estimate
		}
		minutes := s.predictor.PredictDuration(ctx, t.Description, def.Minutes())
		if minutes <= 0 {
			return nil, fmt.Errorf("task %q: %w (got %v minutes)", t.Description, ErrInvalidDuration, minutes)
		}
		out[i] = time.Duration(minutes * float64(time.Minute))
	}
	return out, nil
}

// onDay places a clock offset on t's date by wall clock, so DST days keep 09:00 at 09:00.
func onDay(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.Date()
	h := int(offset / time.Hour)
	mi := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, h, mi, 0, 0, t.Location())
}

type planner struct {
	tasks     []model.Task
	durations []time.Duration
	brk       time.Duration
	current   time.Time
	next      int
	schedule  model.Schedule
}

// fillUntil places tasks, each followed by a break when one fits, until the
// next task would cross limit.
func (p *planner) fillUntil(limit time.Time) {
	for p.next < len(p.tasks) && p.current.Before(limit) {
		end := p.current.Add(p.durations[p.next])
		if end.After(limit) {
			return
		}
		p.emit(model.KindTask, p.current, end, p.tasks[p.next].Description)
		p.current = end
		p.next++

		if p.brk > 0 {
			if brEnd := p.current.Add(p.brk); !brEnd.After(limit) {
				p.emit(model.KindBreak, p.current, brEnd, model.BreakLabel)
				p.current = brEnd
			}
		}
	}
}

func (p *planner) emit(kind model.EntryKind, start, end time.Time, label string) {
	p.schedule = append(p.schedule, model.Entry{Kind: kind, Start: start, End: end, Label: label})
}
