// Package app wires configuration into the stores, sources and scheduler
// shared by the command line and the HTTP server.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/harrisonrobin/dayplan/pkg/clock"
	"github.com/harrisonrobin/dayplan/pkg/config"
	"github.com/harrisonrobin/dayplan/pkg/db"
	"github.com/harrisonrobin/dayplan/pkg/google"
	"github.com/harrisonrobin/dayplan/pkg/history"
	"github.com/harrisonrobin/dayplan/pkg/index"
	"github.com/harrisonrobin/dayplan/pkg/meetings"
	"github.com/harrisonrobin/dayplan/pkg/model"
	"github.com/harrisonrobin/dayplan/pkg/orgmode"
	"github.com/harrisonrobin/dayplan/pkg/outlook"
	"github.com/harrisonrobin/dayplan/pkg/scheduler"
	"github.com/harrisonrobin/dayplan/pkg/tasks"
	"github.com/harrisonrobin/dayplan/pkg/taskwarrior"
	"github.com/harrisonrobin/dayplan/pkg/tracker"
)

const (
	// DBFile is the SQLite history database inside the data directory.
	DBFile = "dayplan.db"

	// StaleStart is how long a started task may stay open before it is swept.
	StaleStart = 24 * time.Hour
)

// App is one fully wired dayplan instance.
type App struct {
	Config    *config.Config
	Clock     clock.Clock
	Predictor *history.Predictor
	Meetings  *meetings.Aggregator
	Local     *meetings.LocalFile
	Tasks     tasks.Source
	List      *tasks.List
	Tracker   *tracker.Table
	Scheduler *scheduler.Scheduler

	db *sql.DB
}

// New builds every component from cfg. External meeting sources are only
// added when they have credentials.
func New(cfg *config.Config, c clock.Clock, extra ...meetings.Source) (*App, error) {
	a := &App{Config: cfg, Clock: c}

	store, err := a.historyStore()
	if err != nil {
		return nil, err
	}
	a.Predictor = history.NewPredictor(store)

	localPath := cfg.DataPath(meetings.FileName)
	if moved, err := meetings.MigrateLegacy(filepath.Join(config.Home(), meetings.FileName), localPath); err != nil {
		log.Printf("Warning: %v", err)
	} else if moved {
		log.Printf("Moved meetings file to %s", localPath)
	}
	a.Local = meetings.NewLocalFile(localPath)

	sources := append([]meetings.Source{a.Local}, externalSources(cfg, a.calendarIndex())...)
	sources = append(sources, extra...)
	a.Meetings = meetings.NewAggregator(c, cfg.Day, cfg.SourceTimeout(), sources...)

	opts, err := scheduler.OptionsFromConfig(cfg.Day)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Scheduler = scheduler.New(a.Meetings, a.Predictor, c, opts)

	a.List = tasks.NewList(cfg.Storage.DataDir)
	switch cfg.Tasks.Source {
	case "taskwarrior":
		a.Tasks = taskwarrior.NewClient()
	case "orgmode":
		a.Tasks = orgmode.NewSource(cfg.Tasks.OrgFiles)
	default:
		a.Tasks = a.List
	}

	a.Tracker, err = tracker.NewTable(cfg.DataPath(tracker.FileName))
	if err != nil {
		log.Printf("Warning: failed to load in-progress tasks, starting empty: %v", err)
		a.Tracker = &tracker.Table{Path: cfg.DataPath(tracker.FileName), Entries: map[string]tracker.Entry{}}
	}
	for _, e := range a.Tracker.Sweep(c.Now(), StaleStart) {
		log.Printf("Dropping stale start of %q from %s", e.Task, e.Started.Format(time.RFC3339))
	}
	if err := a.Tracker.Save(); err != nil {
		log.Printf("Warning: failed to save in-progress tasks: %v", err)
	}

	return a, nil
}

func (a *App) historyStore() (history.Store, error) {
	cfg := a.Config
	switch cfg.Storage.HistoryBackend {
	case "memory":
		return history.NewMemoryStore(), nil
	case "sqlite":
		conn, err := db.Open(cfg.DataPath(DBFile))
		if err != nil {
			return nil, err
		}
		a.db = conn
		return history.NewSQLiteStore(conn), nil
	default:
		return history.NewFileStore(cfg.DataPath(history.FileName)), nil
	}
}

func (a *App) calendarIndex() *index.CalendarIndex {
	idx, err := index.NewCalendarIndex(a.Config.DataPath(index.FileName))
	if err != nil {
		log.Printf("Warning: ignoring unreadable calendar index: %v", err)
		return nil
	}
	return idx
}

func externalSources(cfg *config.Config, ids *index.CalendarIndex) []meetings.Source {
	var out []meetings.Source
	switch {
	case cfg.Google.CredentialsFile != "":
		out = append(out, google.NewSource(google.ServiceAccount(cfg.Google.CredentialsFile), cfg.Google.CalendarID).WithIndex(ids))
	case cfg.Google.UseToken:
		out = append(out, google.NewSource(google.InstalledApp(), cfg.Google.CalendarID).WithIndex(ids))
	}
	if cfg.Outlook.Token != "" {
		out = append(out, outlook.NewSource(cfg.Outlook.Endpoint, cfg.Outlook.Token))
	}
	return out
}

// Close releases the history database, if one is open.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// DefaultMinutes is the prediction for tasks with no history.
func (a *App) DefaultMinutes() float64 {
	return float64(a.Config.Day.DefaultTaskMinutes)
}

// Schedule plans today from the configured task source.
func (a *App) Schedule(ctx context.Context) (model.Schedule, error) {
	pending, err := a.Tasks.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading tasks from %s: %w", a.Tasks.Name(), err)
	}
	return a.Scheduler.Plan(ctx, pending)
}

// AddMeeting stores a local meeting. An empty date means today.
func (a *App) AddMeeting(date, start, end, label string) (model.Meeting, error) {
	now := a.Clock.Now()
	if date == "" {
		date = now.Format("2006-01-02")
	}
	m, err := meetings.ParseRecord(fmt.Sprintf("%s,%s-%s,%s", date, start, end, label), now.Location())
	if err != nil {
		return model.Meeting{}, err
	}
	if err := a.Local.Add(m); err != nil {
		return model.Meeting{}, err
	}
	return m, nil
}

// StartTask begins timing task.
func (a *App) StartTask(task string) error {
	if task == "" {
		return tasks.ErrEmptyTask
	}
	a.Tracker.Start(task, a.Clock.Now())
	return a.Tracker.Save()
}

// Completion describes what CompleteTask did.
type Completion struct {
	Task     string `json:"task"`
	Minutes  int    `json:"minutes,omitempty"`
	Recorded bool   `json:"recorded"`
	Pending  bool   `json:"was_pending"`
}

// CompleteTask marks task done. A positive minutes value is recorded as is;
// zero falls back to the time since StartTask, and records nothing when the
// task was never started.
func (a *App) CompleteTask(ctx context.Context, task string, minutes int) (Completion, error) {
	if task == "" {
		return Completion{}, tasks.ErrEmptyTask
	}
	if minutes < 0 {
		return Completion{}, fmt.Errorf("complete %q: %w (got %d)", task, history.ErrInvalidDuration, minutes)
	}

	c := Completion{Task: task, Minutes: minutes}
	elapsed, started := a.Tracker.Finish(task, a.Clock.Now())
	if c.Minutes == 0 && started {
		c.Minutes = elapsed
	}
	if err := a.Tracker.Save(); err != nil {
		log.Printf("Warning: failed to save in-progress tasks: %v", err)
	}

	if c.Minutes > 0 {
		if err := a.Predictor.RecordCompletion(ctx, task, c.Minutes); err != nil {
			return c, err
		}
		c.Recorded = true
	}

	pending, err := a.List.Complete(task)
	if err != nil {
		return c, err
	}
	c.Pending = pending
	return c, nil
}

// Prediction is the expected length of a task.
type Prediction struct {
	Task    string  `json:"task"`
	Minutes float64 `json:"minutes"`
	Samples int     `json:"samples"`
}

func (a *App) Predict(ctx context.Context, task string) Prediction {
	p := Prediction{Task: task, Minutes: a.Predictor.PredictDuration(ctx, task, a.DefaultMinutes())}
	if samples, err := a.Predictor.Durations(ctx, task); err == nil {
		p.Samples = len(samples)
	}
	return p
}
