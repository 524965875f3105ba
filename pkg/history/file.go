package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the JSON history file inside the data directory.
const FileName = "task_history.json"

// FileStore keeps history as a JSON object mapping task text to its samples.
// Every call re-reads the file so several processes see each other's writes;
// the mutex serialises writers inside one process.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Record(_ context.Context, task string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.load()
	history[task] = append(history[task], minutes)
	return s.save(history)
}

func (s *FileStore) Durations(_ context.Context, task string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[task], nil
}

// load never fails: a missing, unreadable or corrupt file is empty history.
func (s *FileStore) load() map[string][]int {
	history := make(map[string][]int)
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: could not read history file %s: %v", s.Path, err)
		}
		return history
	}
	if len(b) == 0 {
		return history
	}
	if err := json.Unmarshal(b, &history); err != nil {
		log.Printf("Warning: history file %s is corrupt, treating as empty: %v", s.Path, err)
		return make(map[string][]int)
	}
	return history
}

func (s *FileStore) save(history map[string][]int) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".task_history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp history file: %w", err)
	}
	if err := json.NewEncoder(tmp).Encode(history); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}
