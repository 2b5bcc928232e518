package janitor

import "sync"

// Future is the shape of a cancellable asynchronous value a manager can
// track. The registry never blocks on a future and never polls it: it checks
// Settled once at tracking time and registers a single OnSettled callback,
// invoked by the future's own executor, to drop the entry after settlement.
//
// Cancel must be a safe no-op once the future has settled; that contract
// belongs to the future, and [Promise] honors it.
type Future interface {
	// Settled reports whether the future has resolved, rejected, or been
	// cancelled.
	Settled() bool

	// Cancel settles a pending future as cancelled. No-op after settlement.
	Cancel()

	// OnSettled registers fn to run when the future settles. If the future
	// is already settled, fn runs immediately. Each registered fn runs
	// exactly once.
	OnSettled(fn func())
}

// PromiseState is the lifecycle state of a [Promise].
type PromiseState int

// Promise states.
const (
	StatePending PromiseState = iota
	StateResolved
	StateRejected
	StateCanceled
)

// String returns the human-readable name of the state.
func (s PromiseState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateRejected:
		return "rejected"
	case StateCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Promise is a minimal cancellable future: settle it once with Resolve,
// Reject, or Cancel, and read it with Value or Done. It implements [Future],
// so a pending Promise can be handed to [Manager.GiveFuture].
//
// Settlement is idempotent; only the first Resolve/Reject/Cancel wins.
// Promise is safe for concurrent use.
type Promise struct {
	mu        sync.Mutex
	state     PromiseState
	value     any
	err       error
	done      chan struct{}
	callbacks []func()
}

// NewPromise creates a pending promise.
func NewPromise() *Promise {
	return &Promise{
		done: make(chan struct{}),
	}
}

// Resolve settles the promise with a value. No-op if already settled.
func (p *Promise) Resolve(v any) {
	p.settle(StateResolved, v, nil)
}

// Reject settles the promise with an error. No-op if already settled.
func (p *Promise) Reject(err error) {
	p.settle(StateRejected, nil, err)
}

// Cancel settles the promise as cancelled with [ErrPromiseCanceled].
// No-op if already settled.
func (p *Promise) Cancel() {
	p.settle(StateCanceled, nil, ErrPromiseCanceled)
}

func (p *Promise) settle(state PromiseState, v any, err error) {
	p.mu.Lock()
	if p.state != StatePending {
		p.mu.Unlock()
		return
	}
	p.state = state
	p.value = v
	p.err = err
	callbacks := p.callbacks
	p.callbacks = nil
	close(p.done)
	p.mu.Unlock()

	// Callbacks run outside the lock so they may touch the promise, or the
	// registry tracking it, without deadlocking.
	for _, fn := range callbacks {
		fn()
	}
}

// Settled reports whether the promise has left the pending state.
func (p *Promise) Settled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != StatePending
}

// State returns the current state.
func (p *Promise) State() PromiseState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Value returns the settlement value and error. Both are zero while the
// promise is pending; a cancelled promise reports [ErrPromiseCanceled].
func (p *Promise) Value() (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value, p.err
}

// Done returns a channel closed on settlement, for select-based waiting.
func (p *Promise) Done() <-chan struct{} {
	return p.done
}

// OnSettled registers fn to run on settlement. Runs fn immediately (and
// synchronously) if the promise has already settled.
func (p *Promise) OnSettled(fn func()) {
	p.mu.Lock()
	if p.state == StatePending {
		p.callbacks = append(p.callbacks, fn)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	fn()
}

// Compile-time interface check.
var _ Future = (*Promise)(nil)
