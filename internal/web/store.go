package web

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aptview/aptview/internal/core"
)

// Entry is one uploaded, preprocessed dataset held in memory.
type Entry struct {
	ID             string
	FileName       string
	UploadedAt     time.Time
	Rows           int
	CancelledCount int
	Data           *core.Dataset
	Warnings       []core.Warning // normalization + preprocessing warnings
}

// store caches preprocessed datasets keyed by a generated ID. The core
// pipeline is stateless by contract; memoizing repeated loads is the
// presentation layer's job, and this is it. When the cap is reached the
// oldest dataset is evicted.
type store struct {
	mu      sync.RWMutex
	max     int
	entries map[string]*Entry
	order   []string // insertion order, oldest first
}

func newStore(max int) *store {
	return &store{
		max:     max,
		entries: make(map[string]*Entry),
	}
}

// Put stores a dataset and returns its generated ID.
func (s *store) Put(e *Entry) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	e.UploadedAt = time.Now()
	s.entries[e.ID] = e
	s.order = append(s.order, e.ID)

	for len(s.order) > s.max {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}

	return e.ID
}

// Get returns the dataset for id, or nil when it is unknown or evicted.
func (s *store) Get(id string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// List returns all cached entries, newest first.
func (s *store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out
}

// Len reports how many datasets are cached.
func (s *store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
