package feature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fluxori-systems/fluxori-sub012/pkg/audit"
	"github.com/fluxori-systems/fluxori-sub012/pkg/environment"
)

// DefaultRefreshInterval is how often the cache is rebuilt from the store
// when no explicit interval is configured.
const DefaultRefreshInterval = 60 * time.Second

// Service orchestrates the flag engine: it validates and persists
// mutations, keeps the cache and audit trail in step with them, evaluates
// flags through the cache, and fans change notifications out to
// subscribers.
//
// Every mutation follows the same pipeline: validate, persist, audit,
// update cache, notify. The cache update and notifications happen only
// after the persistent write succeeds. An audit write failure is logged
// and does not fail the owning mutation.
type Service struct {
	store    Store
	recorder *audit.Recorder
	cache    *Cache
	registry *registry
	log      *slog.Logger
	now      func() time.Time

	refreshInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// ServiceOption configures a Service during construction.
type ServiceOption func(*Service)

// WithLogger configures the logger for the service and its cache.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAuditRecorder overrides the default in-memory audit recorder.
// Typical wiring: audit.NewRecorder(audit.NewPostgresStorage(pool)).
func WithAuditRecorder(r *audit.Recorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithRefreshInterval overrides the cache refresh interval.
// Typical wiring: WithRefreshInterval(cfg.RefreshInterval) with cfg loaded
// via pkg/config.
func WithRefreshInterval(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.refreshInterval = d
		}
	}
}

// WithClock overrides the mutation timestamp source, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a flag service over the given store.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("feature: store cannot be nil")
	}

	s := &Service{
		store:           store,
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:             func() time.Time { return time.Now().UTC() },
		refreshInterval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.recorder == nil {
		s.recorder = audit.NewRecorder(audit.NewMemoryStorage())
	}

	s.registry = newRegistry(s.log)
	s.cache = NewCache(store, s.log)
	s.cache.OnReplace(s.notifyAll)
	return s
}

// Cache exposes the service's flag cache.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Start performs the initial cache load and launches the periodic refresh
// loop. The loop runs until Close is called; it survives cancellation of
// the passed-in context's parents because refreshes are a process-lifetime
// concern. The initial load error is returned for visibility, the loop
// starts regardless and retries on its next tick.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.cache.Run(runCtx, s.refreshInterval)
	}()
	s.mu.Unlock()

	return s.cache.Refresh(ctx)
}

// Close stops the refresh loop. It is safe to call multiple times.
func (s *Service) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}
	return nil
}

// CreateFlag validates and persists a new flag, then audits, caches and
// notifies. Returns ErrFlagKeyExists when the key is taken and
// ErrInvalidFlag when the definition fails validation; nothing is
// persisted in either case.
func (s *Service) CreateFlag(ctx context.Context, flag *FeatureFlag, actorID string) (*FeatureFlag, error) {
	if flag == nil {
		return nil, fmt.Errorf("%w: flag cannot be nil", ErrInvalidFlag)
	}

	f := flag.Clone()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.FindByKey(ctx, f.Key); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrFlagKeyExists, f.Key)
	} else if !errors.Is(err, ErrFlagNotFound) {
		return nil, err
	}

	now := s.now()
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.Version = 1
	f.CreatedAt = now
	f.UpdatedAt = now
	f.LastModifiedAt = now
	f.LastModifiedBy = actorID
	f.DeletedAt = nil

	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		FlagID:      f.ID,
		FlagKey:     f.Key,
		Action:      audit.ActionCreated,
		PerformedBy: actorID,
		Changes: []audit.FieldChange{
			{Field: audit.FieldAll, OldValue: nil, NewValue: f.Clone()},
		},
	})

	s.cache.Put(f)
	s.notifyAll()
	s.registry.notifyChange(f.Key, f.Enabled)

	s.log.InfoContext(ctx, "feature flag created",
		slog.String("flag_key", f.Key), slog.String("actor", actorID))
	return f, nil
}

// UpdateFlag applies a partial update to an existing flag. The audit entry
// records only the fields whose values actually changed; an update whose
// diff is empty produces no audit entry. When the enabled state changes,
// flag-change listeners are notified in addition to the regular
// subscription fan-out so on/off transitions are not missed inside bulk
// edits.
func (s *Service) UpdateFlag(ctx context.Context, id uuid.UUID, upd FlagUpdate, actorID string) (*FeatureFlag, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	upd.apply(next)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	changes := diffFlags(current, next)

	now := s.now()
	next.Version = current.Version + 1
	next.UpdatedAt = now
	next.LastModifiedAt = now
	next.LastModifiedBy = actorID

	if err := s.store.Update(ctx, next); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		s.record(ctx, audit.Entry{
			FlagID:      next.ID,
			FlagKey:     next.Key,
			Action:      audit.ActionUpdated,
			PerformedBy: actorID,
			Changes:     changes,
		})
	}

	s.cache.Put(next)
	s.notifyAll()
	if current.Enabled != next.Enabled {
		s.registry.notifyChange(next.Key, next.Enabled)
	}

	s.log.InfoContext(ctx, "feature flag updated",
		slog.String("flag_key", next.Key),
		slog.String("actor", actorID),
		slog.Int("changes", len(changes)))
	return next, nil
}

// ToggleFlag flips the master switch. Toggling a flag to its current state
// is a no-op: the record is returned unchanged and no audit entry or
// notification is produced.
func (s *Service) ToggleFlag(ctx context.Context, id uuid.UUID, enabled bool, actorID string) (*FeatureFlag, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Enabled == enabled {
		return current, nil
	}

	next := current.Clone()
	next.Enabled = enabled

	now := s.now()
	next.Version = current.Version + 1
	next.UpdatedAt = now
	next.LastModifiedAt = now
	next.LastModifiedBy = actorID

	if err := s.store.Update(ctx, next); err != nil {
		return nil, err
	}

	s.record(ctx, audit.Entry{
		FlagID:      next.ID,
		FlagKey:     next.Key,
		Action:      audit.ActionToggled,
		PerformedBy: actorID,
		Changes: []audit.FieldChange{
			{Field: "enabled", OldValue: current.Enabled, NewValue: enabled},
		},
	})

	s.cache.Put(next)
	s.notifyAll()
	s.registry.notifyChange(next.Key, enabled)

	s.log.InfoContext(ctx, "feature flag toggled",
		slog.String("flag_key", next.Key),
		slog.Bool("enabled", enabled),
		slog.String("actor", actorID))
	return next, nil
}

// DeleteFlag removes a flag. Subscribers and change listeners are notified
// with enabled=false for the deleted key.
func (s *Service) DeleteFlag(ctx context.Context, id uuid.UUID, actorID string) error {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, audit.Entry{
		FlagID:      current.ID,
		FlagKey:     current.Key,
		Action:      audit.ActionDeleted,
		PerformedBy: actorID,
		Changes: []audit.FieldChange{
			{Field: audit.FieldAll, OldValue: current, NewValue: nil},
		},
	})

	s.cache.Remove(current.Key)
	s.notifyAll()
	s.registry.notifyChange(current.Key, false)

	s.log.InfoContext(ctx, "feature flag deleted",
		slog.String("flag_key", current.Key), slog.String("actor", actorID))
	return nil
}

// GetFlagByID returns a flag record by storage identifier.
func (s *Service) GetFlagByID(ctx context.Context, id uuid.UUID) (*FeatureFlag, error) {
	return s.store.FindByID(ctx, id)
}

// GetFlagByKey returns a flag record by key, reading through the cache.
func (s *Service) GetFlagByKey(ctx context.Context, key string) (*FeatureFlag, error) {
	if flag, ok := s.cache.Get(key); ok {
		return flag, nil
	}
	flag, err := s.store.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Put(flag)
	return flag, nil
}

// ListFlags returns all flags, optionally narrowed to an environment tag.
func (s *Service) ListFlags(ctx context.Context, env string) ([]*FeatureFlag, error) {
	if env == "" {
		return s.store.FindAll(ctx)
	}
	return s.store.FindByEnvironment(ctx, env)
}

// Evaluate decides a flag's outcome for the given context. It never
// returns an error: lookup failures produce a fail-safe disabled result
// with Source set to SourceError. When the context carries no environment,
// the deployment environment from ctx (if any) is used.
func (s *Service) Evaluate(ctx context.Context, key string, ectx EvaluationContext) EvaluationResult {
	if ectx.Environment == "" {
		ectx.Environment = environment.FromContext(ctx)
	}

	if flag, ok := s.cache.Get(key); ok {
		return Evaluate(flag, ectx)
	}

	// Cache miss: read through to the store and warm the cache on success.
	flag, err := s.store.FindByKey(ctx, key)
	switch {
	case err == nil:
		s.cache.Put(flag)
		return Evaluate(flag, ectx)
	case errors.Is(err, ErrFlagNotFound):
		result := Evaluate(nil, ectx)
		result.FlagKey = key
		return result
	default:
		s.log.ErrorContext(ctx, "flag lookup failed",
			slog.String("flag_key", key), slog.Any("error", err))
		return EvaluationResult{
			FlagKey:     key,
			Enabled:     false,
			Source:      SourceError,
			Reason:      fmt.Sprintf("Flag lookup failed: %v", err),
			EvaluatedAt: ectx.evaluationTime(),
		}
	}
}

// IsEnabled is the fail-safe convenience form of Evaluate: any failure
// collapses to false.
func (s *Service) IsEnabled(ctx context.Context, key string, ectx EvaluationContext) bool {
	return s.Evaluate(ctx, key, ectx).Enabled
}

// AuditLog returns a flag's mutation history, newest first.
func (s *Service) AuditLog(ctx context.Context, flagID uuid.UUID) ([]audit.Entry, error) {
	return s.recorder.FindByFlagID(ctx, flagID)
}

// Subscribe registers a subscription, synchronously invokes its callback
// once with the current states of its keys, and returns the unsubscribe
// function.
func (s *Service) Subscribe(sub Subscription) func() {
	unsubscribe := s.registry.subscribe(sub)
	s.registry.deliver(sub, s.evaluateKeys(sub.FlagKeys, sub.Context))
	return unsubscribe
}

// AddChangeListener registers a callback observing enabled-state
// transitions of any flag and returns its removal function.
func (s *Service) AddChangeListener(fn ChangeListener) func() {
	if fn == nil {
		return func() {}
	}
	return s.registry.addListener(fn)
}

// notifyAll re-evaluates every live subscription against the current cache.
func (s *Service) notifyAll() {
	s.registry.notifyAll(s.evaluateKeys)
}

// evaluateKeys resolves a key set strictly from the cache snapshot.
// Missing keys evaluate to disabled.
func (s *Service) evaluateKeys(keys []string, ectx EvaluationContext) map[string]bool {
	states := make(map[string]bool, len(keys))
	for _, key := range keys {
		flag, _ := s.cache.Get(key)
		states[key] = Evaluate(flag, ectx).Enabled
	}
	return states
}

// record writes an audit entry. Audit failures are logged, never fatal to
// the owning mutation: the flag write is already durable at this point.
func (s *Service) record(ctx context.Context, entry audit.Entry) {
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit write failed",
			slog.String("flag_key", entry.FlagKey),
			slog.String("action", string(entry.Action)),
			slog.Any("error", err))
	}
}
