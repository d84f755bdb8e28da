package audit

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage is an in-memory Storage implementation for tests and
// single-process deployments.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory audit storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Store(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) FindByFlagID(ctx context.Context, flagID uuid.UUID) ([]Entry, error) {
	s.mu.RLock()
	var result []Entry
	for _, e := range s.entries {
		if e.FlagID == flagID {
			result = append(result, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Len returns the total number of stored entries.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
