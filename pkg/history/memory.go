package history

import (
	"context"
	"sync"
)

// MemoryStore keeps history in process memory only.
type MemoryStore struct {
	mu      sync.RWMutex
	samples map[string][]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{samples: make(map[string][]int)}
}

func (s *MemoryStore) Record(_ context.Context, task string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples[task] = append(s.samples[task], minutes)
	return nil
}

func (s *MemoryStore) Durations(_ context.Context, task string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.samples[task]...), nil
}
