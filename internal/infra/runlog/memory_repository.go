package runlog

import (
	"context"
	"sync"

	"github.com/yanqian/ai-astrology/internal/domain/history"
)

const defaultCapacity = 500

// MemoryRepository keeps the most recent runs in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	runs     []history.RunRecord
	capacity int
}

// NewMemoryRepository constructs a bounded in-memory run log.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryRepository{capacity: capacity}
}

// Append implements history.RunLog.
func (r *MemoryRepository) Append(_ context.Context, record history.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, record)
	if over := len(r.runs) - r.capacity; over > 0 {
		r.runs = append(r.runs[:0:0], r.runs[over:]...)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (r *MemoryRepository) Recent(_ context.Context, limit int) ([]history.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]history.RunRecord, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

var _ history.RunLog = (*MemoryRepository)(nil)
