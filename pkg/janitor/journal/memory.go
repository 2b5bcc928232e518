package journal

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
// Suitable for testing and short-lived processes.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	closed  bool
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a record.
func (s *MemoryStore) Append(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	clone := *rec
	s.records = append(s.records, &clone)
	return nil
}

// List returns records for a registry, newest first.
func (s *MemoryStore) List(_ context.Context, registryID string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var result []*Record
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if registryID != "" && rec.RegistryID != registryID {
			continue
		}
		clone := *rec
		result = append(result, &clone)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// Count returns the number of records for a registry.
func (s *MemoryStore) Count(_ context.Context, registryID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	if registryID == "" {
		return len(s.records), nil
	}

	count := 0
	for _, rec := range s.records {
		if rec.RegistryID == registryID {
			count++
		}
	}
	return count, nil
}

// Prune deletes records disposed before the cutoff.
func (s *MemoryStore) Prune(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	kept := s.records[:0]
	pruned := 0
	for _, rec := range s.records {
		if rec.DisposedAt.Before(before) {
			pruned++
			continue
		}
		kept = append(kept, rec)
	}
	s.records = kept
	return pruned, nil
}

// Close marks the store closed. Subsequent operations return ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
