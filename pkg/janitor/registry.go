package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/howmanysmall/nevermore-janitor/pkg/janitor/journal"
	"github.com/howmanysmall/nevermore-janitor/pkg/janitor/observability"
)

// entry is one tracked disposable unit: a key plus a classified payload.
type entry struct {
	key     any
	payload any
	kind    TaskKind
}

// Registry is ordered keyed storage of disposable entries. It owns the
// disposal algorithm: overwriting a key disposes the previous occupant,
// Remove disposes one entry, CleanUp disposes everything.
//
// Keys must be comparable (the same requirement Go maps impose). Storage
// mutation is serialized behind a per-instance mutex; disposal actions run
// outside the lock, so a disposal callback may add, remove, or clean up on
// the same registry without deadlocking.
//
// Entries are disposed in insertion order during a bulk cleanup, except that
// entries added while the sweep is running are only guaranteed to be disposed
// within the same sweep, in no particular order relative to the rest. A task
// that unconditionally re-adds itself will starve CleanUp forever; that is a
// caller bug the registry does not guard against.
type Registry struct {
	id string

	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	store   journal.Store

	warnOpaque       bool
	compactThreshold int

	mu      sync.Mutex
	entries map[any]*entry
	// order preserves insertion order; keys appear at most once. Removed
	// keys stay behind as tombstones until a sweep or compaction drops them.
	order   []any
	inOrder map[any]struct{}
	// sweeps counts nested CleanUp invocations on this instance.
	sweeps int
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newRegistry("reg-"+uuid.New().String()[:8], o)
}

func newRegistry(id string, o options) *Registry {
	return &Registry{
		id:               id,
		logger:           observability.EnrichLogger(o.logger, id),
		metrics:          o.metrics,
		spans:            o.spans,
		store:            o.store,
		warnOpaque:       o.warnOpaque,
		compactThreshold: o.compactThreshold,
		entries:          make(map[any]*entry),
		inOrder:          make(map[any]struct{}),
	}
}

// ID returns the registry's instance id, used for log and journal correlation.
func (r *Registry) ID() string {
	return r.id
}

// Add installs payload under key and returns the key, so callers can track
// and hand back a handle in one expression. If the key already holds an
// entry, that entry is disposed first, synchronously, before the new payload
// is installed; there is never a moment where both are alive.
//
// An overwritten key keeps its original position in the disposal order.
func (r *Registry) Add(key, payload any) any {
	e := &entry{key: key, payload: payload, kind: classify(payload)}
	r.metrics.RecordTracked(context.Background(), e.kind.String())

	for {
		r.mu.Lock()
		old, occupied := r.entries[key]
		if !occupied {
			r.entries[key] = e
			if _, ok := r.inOrder[key]; !ok {
				r.order = append(r.order, key)
				r.inOrder[key] = struct{}{}
			}
			r.compactLocked()
			r.mu.Unlock()
			return key
		}
		delete(r.entries, key)
		r.mu.Unlock()

		// Dispose outside the lock, then retry the install: the disposal
		// may itself have re-populated the key.
		r.dispose(context.Background(), old)
	}
}

// Get returns the payload stored under key, or false if the key is absent.
// Lookup has no lifecycle effect.
func (r *Registry) Get(key any) (any, bool) {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return e.payload, true
}

// Remove disposes and deletes the entry under key. Removing an absent key is
// a defined no-op, never an error, so cleanup code is safe to call
// redundantly.
func (r *Registry) Remove(key any) {
	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	if ok {
		r.dispose(context.Background(), e)
	}
}

// Discard deletes the entry under key without running its disposal action.
// Used when the underlying resource is known to be released already, such as
// a future that has settled on its own.
func (r *Registry) Discard(key any) {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Keys returns a snapshot of the live keys in insertion order.
func (r *Registry) Keys() []any {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]any, 0, len(r.entries))
	for _, k := range r.order {
		if _, ok := r.entries[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// Cleaning reports whether a CleanUp sweep is currently running on this
// registry.
func (r *Registry) Cleaning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweeps > 0
}

// CleanUp disposes every entry and empties the registry. Afterwards the
// registry is immediately reusable; there is no terminal state.
//
// Entries added during the sweep, including by disposal callbacks, are
// drained within the same call. Recursive CleanUp invocations are safe: an
// entry is disposed exactly once across the combined sweeps, because each
// entry is detached from storage before its disposal runs.
func (r *Registry) CleanUp() {
	ctx := context.Background()
	ctx, span := r.spans.StartCleanupSpan(ctx, r.id)
	done := observability.TimedOperation()

	r.mu.Lock()
	r.sweeps++
	outermost := r.sweeps == 1
	if outermost {
		observability.LogCleanupStart(r.logger, len(r.entries))
	}
	r.mu.Unlock()

	disposed := 0
	for {
		e := r.detachNext()
		if e == nil {
			break
		}
		r.dispose(ctx, e)
		disposed++
	}

	r.mu.Lock()
	r.sweeps--
	r.mu.Unlock()

	durationMs := done()
	if outermost {
		observability.LogCleanupComplete(r.logger, disposed, durationMs)
	}
	r.metrics.RecordCleanup(ctx, disposed, time.Duration(durationMs*float64(time.Millisecond)))
	r.spans.EndSpanWithError(span, nil)
}

// detachNext pops the oldest live entry off the order queue, removing it
// from storage so no other caller can dispose it. Returns nil when the
// registry is drained.
func (r *Registry) detachNext() *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.order) > 0 {
		k := r.order[0]
		r.order = r.order[1:]
		delete(r.inOrder, k)

		if e, ok := r.entries[k]; ok {
			delete(r.entries, k)
			return e
		}
	}
	return nil
}

// compactLocked rebuilds the order queue once tombstones dominate, so a
// long-lived registry with heavy add/remove churn does not grow without
// bound. Caller must hold the mutex.
func (r *Registry) compactLocked() {
	if len(r.order) < r.compactThreshold || len(r.order) < 2*len(r.entries) {
		return
	}

	live := make([]any, 0, len(r.entries))
	inOrder := make(map[any]struct{}, len(r.entries))
	for _, k := range r.order {
		if _, ok := r.entries[k]; ok {
			live = append(live, k)
			inOrder[k] = struct{}{}
		}
	}
	r.order = live
	r.inOrder = inOrder
}

// dispose runs the disposal action for a detached entry. The entry is
// already out of storage, so this runs at most once per entry. Panics and
// Close errors are isolated here: they are logged and recorded, never
// propagated, so one malformed task cannot abort a sweep.
func (r *Registry) dispose(ctx context.Context, e *entry) {
	kind := e.kind.String()
	ctx, span := r.spans.StartDisposalSpan(ctx, kind)
	start := time.Now()

	outcome := journal.OutcomeDisposed
	if e.kind == KindOpaque {
		outcome = journal.OutcomeSkipped
		if r.warnOpaque {
			observability.LogOpaqueTask(r.logger, e.key, fmt.Sprintf("%T", e.payload))
		}
	} else {
		if panicked := r.invoke(e); panicked {
			outcome = journal.OutcomePanicked
		}
	}

	duration := time.Since(start)
	r.metrics.RecordDisposal(ctx, kind, duration, outcome == journal.OutcomePanicked)
	r.spans.EndSpanWithError(span, nil)

	if r.store != nil {
		rec := journal.NewRecord(r.id, fmt.Sprintf("%v", e.key), kind, outcome, duration)
		if err := r.store.Append(ctx, rec); err != nil {
			r.logger.Warn("journal append failed",
				slog.String("record_id", rec.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// invoke runs the entry's disposal action with panic isolation. Reports
// whether the action panicked.
func (r *Registry) invoke(e *entry) (panicked bool) {
	defer func() {
		if rec := recover(); rec != nil {
			panicked = true
			observability.LogDisposalPanic(r.logger, e.key, e.kind.String(), rec)
		}
	}()

	if err := invokeTask(e.kind, e.payload); err != nil {
		observability.LogCloseError(r.logger, e.key, err)
	}
	return false
}
