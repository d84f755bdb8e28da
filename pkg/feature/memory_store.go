package feature

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It's useful for testing and simple single-process deployments.
type MemoryStore struct {
	byKey map[string]*FeatureFlag
	keyOf map[uuid.UUID]string
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory flag store, optionally seeded with
// initial flags (e.g. loaded from a YAML file via LoadFile).
func NewMemoryStore(initial ...*FeatureFlag) (*MemoryStore, error) {
	s := &MemoryStore{
		byKey: make(map[string]*FeatureFlag),
		keyOf: make(map[uuid.UUID]string),
	}
	for _, flag := range initial {
		if flag == nil {
			continue
		}
		if err := s.Create(context.Background(), flag); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]*FeatureFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*FeatureFlag, 0, len(s.byKey))
	for _, flag := range s.byKey {
		result = append(result, flag.Clone())
	}
	return result, nil
}

func (s *MemoryStore) FindByKey(ctx context.Context, key string) (*FeatureFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flag, ok := s.byKey[key]
	if !ok {
		return nil, ErrFlagNotFound
	}
	return flag.Clone(), nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keyOf[id]
	if !ok {
		return nil, ErrFlagNotFound
	}
	return s.byKey[key].Clone(), nil
}

func (s *MemoryStore) FindByEnvironment(ctx context.Context, env string) ([]*FeatureFlag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*FeatureFlag
	for _, flag := range s.byKey {
		if flag.appliesToEnvironment(env) {
			result = append(result, flag.Clone())
		}
	}
	return result, nil
}

func (s *MemoryStore) Create(ctx context.Context, flag *FeatureFlag) error {
	if flag == nil {
		return fmt.Errorf("%w: flag cannot be nil", ErrInvalidFlag)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[flag.Key]; exists {
		return ErrFlagKeyExists
	}
	s.byKey[flag.Key] = flag.Clone()
	s.keyOf[flag.ID] = flag.Key
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, flag *FeatureFlag) error {
	if flag == nil {
		return fmt.Errorf("%w: flag cannot be nil", ErrInvalidFlag)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyOf[flag.ID]
	if !ok {
		return ErrFlagNotFound
	}
	// The key is immutable; updates always land on the original key.
	if key != flag.Key {
		return fmt.Errorf("%w: flag key cannot change", ErrInvalidFlag)
	}
	s.byKey[key] = flag.Clone()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keyOf[id]
	if !ok {
		return ErrFlagNotFound
	}
	delete(s.byKey, key)
	delete(s.keyOf, id)
	return nil
}
