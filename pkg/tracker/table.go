package tracker

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const FileName = "in_progress.json"

type Entry struct {
	Task    string    `json:"task"`
	Started time.Time `json:"started"`
}

// Table remembers when tasks were started so completions can be timed.
type Table struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`

	mu    sync.Mutex
	dirty bool
}

func NewTable(path string) (*Table, error) {
	t := &Table{
		Path:    path,
		Entries: make(map[string]Entry),
	}

	if _, err := os.Stat(path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Table) Load() error {
	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := json.NewDecoder(f).Decode(t); err != nil {
		return err
	}
	if t.Entries == nil {
		t.Entries = make(map[string]Entry)
	}
	return nil
}

func (t *Table) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}
	dir := filepath.Dir(t.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	err = encoder.Encode(t)
	if err == nil {
		t.dirty = false
	}
	return err
}

// Start marks task as in progress from now. Restarting resets the clock.
func (t *Table) Start(task string, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries[task] = Entry{Task: task, Started: now}
	t.dirty = true
}

// Started reports when task was started.
func (t *Table) Started(task string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.Entries[task]
	return e.Started, ok
}

// Finish removes task and returns the elapsed wall-clock minutes, rounded
// and never below one. ok is false when task was never started.
func (t *Table) Finish(task string, now time.Time) (minutes int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, exists := t.Entries[task]
	if !exists {
		return 0, false
	}
	delete(t.Entries, task)
	t.dirty = true
	return int(math.Max(1, math.Round(now.Sub(e.Started).Minutes()))), true
}

// Sweep drops and returns entries started more than maxAge before now.
func (t *Table) Sweep(now time.Time, maxAge time.Duration) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	var swept []Entry
	for task, entry := range t.Entries {
		if now.Sub(entry.Started) > maxAge {
			swept = append(swept, entry)
			delete(t.Entries, task)
			t.dirty = true
		}
	}
	return swept
}
