package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists audit entries. Implementations must keep entries
// immutable once stored and return them newest first from FindByFlagID.
type Storage interface {
	Store(ctx context.Context, entry Entry) error
	FindByFlagID(ctx context.Context, flagID uuid.UUID) ([]Entry, error)
}

// Recorder appends diff-based history entries for flag mutations and reads
// them back by flag.
type Recorder struct {
	storage Storage
	now     func() time.Time
}

// Option configures a Recorder during construction.
type Option func(*Recorder)

// WithClock overrides the entry timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder creates a recorder over the given storage.
func NewRecorder(storage Storage, opts ...Option) *Recorder {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	r := &Recorder{
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stamps identity and time onto the entry and appends it.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	entry.ID = uuid.New().String()
	entry.CreatedAt = r.now()

	if err := entry.Validate(); err != nil {
		return err
	}
	return r.storage.Store(ctx, entry)
}

// FindByFlagID returns a flag's history, newest first.
func (r *Recorder) FindByFlagID(ctx context.Context, flagID uuid.UUID) ([]Entry, error) {
	return r.storage.FindByFlagID(ctx, flagID)
}
