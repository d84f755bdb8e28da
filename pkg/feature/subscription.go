package feature

import (
	"log/slog"
	"sync"
)

// Subscription asks to be called back with the enabled state of a set of
// flags, evaluated against a fixed context, whenever flag state may have
// changed. Subscriptions live until their unsubscribe function is called;
// they are never persisted.
type Subscription struct {
	FlagKeys []string
	Context  EvaluationContext
	Callback func(states map[string]bool)
}

// ChangeListener observes enabled-state transitions of individual flags.
type ChangeListener func(flagKey string, enabled bool)

// evaluateKeysFn re-evaluates a key set against the current cache state.
type evaluateKeysFn func(keys []string, ectx EvaluationContext) map[string]bool

// registry holds live subscriptions and flag-change listeners and fans
// notifications out to them. Each callback is isolated: a panicking
// consumer is logged and skipped, never aborting delivery to the rest and
// never removing its own registration.
type registry struct {
	log *slog.Logger

	mu        sync.Mutex
	nextID    uint64
	subs      map[uint64]Subscription
	listeners map[uint64]ChangeListener
}

func newRegistry(log *slog.Logger) *registry {
	return &registry{
		log:       log,
		subs:      make(map[uint64]Subscription),
		listeners: make(map[uint64]ChangeListener),
	}
}

// subscribe registers the subscription and returns its removal handle.
// The caller is responsible for the initial synchronous callback.
func (r *registry) subscribe(sub Subscription) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[id] = sub
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// addListener registers a flag-change listener and returns its removal handle.
func (r *registry) addListener(fn ChangeListener) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// notifyAll re-evaluates every live subscription's key set and invokes its
// callback with the fresh states. States are re-pulled at notification
// time, never pushed from stale data.
func (r *registry) notifyAll(evaluate evaluateKeysFn) {
	for _, sub := range r.snapshotSubs() {
		r.deliver(sub, evaluate(sub.FlagKeys, sub.Context))
	}
}

// notifyChange informs flag-change listeners of an enabled-state transition.
func (r *registry) notifyChange(flagKey string, enabled bool) {
	r.mu.Lock()
	listeners := make([]ChangeListener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		r.callListener(fn, flagKey, enabled)
	}
}

func (r *registry) snapshotSubs() []Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := make([]Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	return subs
}

// deliver invokes one subscription callback, containing any panic.
func (r *registry) deliver(sub Subscription, states map[string]bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("flag subscription callback panicked", slog.Any("panic", rec))
		}
	}()
	if sub.Callback != nil {
		sub.Callback(states)
	}
}

func (r *registry) callListener(fn ChangeListener, flagKey string, enabled bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("flag change listener panicked",
				slog.String("flag_key", flagKey), slog.Any("panic", rec))
		}
	}()
	fn(flagKey, enabled)
}
