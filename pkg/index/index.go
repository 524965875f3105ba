// Package index persists calendar display names resolved to calendar IDs,
// so a named Google calendar is looked up once rather than on every fetch.
package index

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const FileName = "calendars.json"

type CalendarIndex struct {
	Mappings map[string]string `json:"mappings"`
	Path     string            `json:"-"`
	mu       sync.RWMutex
	dirty    bool
}

func NewCalendarIndex(path string) (*CalendarIndex, error) {
	idx := &CalendarIndex{
		Mappings: make(map[string]string),
		Path:     path,
	}

	if _, err := os.Stat(path); err == nil {
		if err := idx.Load(); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

func (idx *CalendarIndex) Load() error {
	f, err := os.Open(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if err := json.NewDecoder(f).Decode(&idx.Mappings); err != nil {
		return err
	}
	if idx.Mappings == nil {
		idx.Mappings = make(map[string]string)
	}
	return nil
}

func (idx *CalendarIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	dir := filepath.Dir(idx.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	f, err := os.Create(idx.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(idx.Mappings); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

// Get returns the cached ID for a calendar name, or "".
func (idx *CalendarIndex) Get(name string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.Mappings[name]
}

func (idx *CalendarIndex) Set(name, calendarID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.Mappings[name] != calendarID {
		idx.Mappings[name] = calendarID
		idx.dirty = true
	}
}

// Remove forgets a mapping, e.g. after the calendar was deleted or renamed.
func (idx *CalendarIndex) Remove(name string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.Mappings[name]; exists {
		delete(idx.Mappings, name)
		idx.dirty = true
	}
}
