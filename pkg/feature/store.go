package feature

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistent source of truth for flag records. Implementations
// must return ErrFlagNotFound for missing records and ErrFlagKeyExists for
// key collisions so callers can branch with errors.Is.
//
// Lookup methods return defensive copies; mutating a returned record does
// not affect the store.
type Store interface {
	// FindAll returns every live flag record.
	FindAll(ctx context.Context) ([]*FeatureFlag, error)

	// FindByKey returns the flag with the given key.
	FindByKey(ctx context.Context, key string) (*FeatureFlag, error)

	// FindByID returns the flag with the given storage identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error)

	// FindByEnvironment returns flags applicable to the given environment
	// tag, including flags with no environment scoping.
	FindByEnvironment(ctx context.Context, env string) ([]*FeatureFlag, error)

	// Create persists a new flag record.
	Create(ctx context.Context, flag *FeatureFlag) error

	// Update replaces an existing flag record.
	Update(ctx context.Context, flag *FeatureFlag) error

	// Delete removes the flag with the given identifier.
	Delete(ctx context.Context, id uuid.UUID) error
}
