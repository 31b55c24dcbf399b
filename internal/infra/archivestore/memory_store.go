package archivestore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/ai-astrology/internal/domain/history"
)

type entry struct {
	record    history.ArchivedReport
	expiresAt time.Time
}

// MemoryStore keeps archived reports in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]entry), now: time.Now}
}

// Save implements history.Archive.
func (s *MemoryStore) Save(_ context.Context, record history.ArchivedReport, ttl time.Duration) error {
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[record.ID] = entry{record: record, expiresAt: exp}
	return nil
}

// Get implements history.Archive.
func (s *MemoryStore) Get(_ context.Context, id string) (history.ArchivedReport, error) {
	s.mu.RLock()
	e, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return history.ArchivedReport{}, history.ErrNotFound
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.reports, id)
		s.mu.Unlock()
		return history.ArchivedReport{}, history.ErrNotFound
	}
	return e.record, nil
}

var _ history.Archive = (*MemoryStore)(nil)
