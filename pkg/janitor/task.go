package janitor

import (
	"io"
	"reflect"
)

// TaskKind identifies the disposal variant of a tracked payload. Payloads are
// classified once when they enter a registry; disposal switches exhaustively
// on the kind.
type TaskKind int

// Task variants, in dispatch precedence order. The first variant a payload
// satisfies wins: a function value that also carries a Destroy method is
// still KindCallable.
const (
	// KindCallable is a zero-argument function, invoked at disposal.
	KindCallable TaskKind = iota

	// KindConnection is an event-subscription handle exposing Disconnect or
	// Unsubscribe.
	KindConnection

	// KindHandle is a cancellable execution handle (timer, goroutine token,
	// pending future) exposing Cancel. Cancelling a finished handle must be
	// a safe no-op; that is the payload's contract, not the registry's.
	KindHandle

	// KindManager is a nested *Manager. Disposal runs its CleanUp,
	// cascading through the ownership tree.
	KindManager

	// KindTeardown is an object exposing an explicit teardown method:
	// Destroy, Dispose, or Close.
	KindTeardown

	// KindOpaque matches nothing above. Disposal is a no-op with a WARN
	// diagnostic, since the caller likely expected cleanup semantics.
	KindOpaque
)

// String returns the human-readable name of the kind.
func (k TaskKind) String() string {
	switch k {
	case KindCallable:
		return "callable"
	case KindConnection:
		return "connection"
	case KindHandle:
		return "handle"
	case KindManager:
		return "manager"
	case KindTeardown:
		return "teardown"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Disconnector is the shape of an event-subscription handle.
type Disconnector interface {
	Disconnect()
}

// Unsubscriber is the alternate subscription-handle shape, as produced by
// typical event-bus Subscribe calls.
type Unsubscriber interface {
	Unsubscribe()
}

// Canceler is the shape of a cancellable execution handle. Cancel must be
// safe to call after the underlying work has already finished.
type Canceler interface {
	Cancel()
}

// Destroyer is an object with an explicit Destroy teardown method.
type Destroyer interface {
	Destroy()
}

// Disposer is an object with an explicit Dispose teardown method.
type Disposer interface {
	Dispose()
}

// Classify reports the disposal variant a payload will dispatch to. Callers
// can use it ahead of Give to check whether a value carries a recognizable
// teardown capability.
func Classify(payload any) TaskKind {
	return classify(payload)
}

func classify(payload any) TaskKind {
	if payload == nil {
		return KindOpaque
	}

	if _, ok := payload.(func()); ok {
		return KindCallable
	}
	// Named function types (with or without methods) don't match the func()
	// type assertion but are still zero-argument procedures.
	if v := reflect.ValueOf(payload); v.Kind() == reflect.Func && v.Type().NumIn() == 0 {
		return KindCallable
	}

	switch payload.(type) {
	case Disconnector, Unsubscriber:
		return KindConnection
	}

	if _, ok := payload.(Canceler); ok {
		return KindHandle
	}

	if IsManager(payload) {
		return KindManager
	}

	switch payload.(type) {
	case Destroyer, Disposer, io.Closer:
		return KindTeardown
	}

	return KindOpaque
}

// invokeTask executes the disposal action for a classified payload. The
// switch is exhaustive over TaskKind; KindOpaque is handled by the caller
// (diagnostic, no action). The returned error is only ever a Close error,
// which the registry logs rather than propagates.
func invokeTask(kind TaskKind, payload any) error {
	switch kind {
	case KindCallable:
		if fn, ok := payload.(func()); ok {
			fn()
			return nil
		}
		reflect.ValueOf(payload).Call(nil)

	case KindConnection:
		switch c := payload.(type) {
		case Disconnector:
			c.Disconnect()
		case Unsubscriber:
			c.Unsubscribe()
		}

	case KindHandle:
		payload.(Canceler).Cancel()

	case KindManager:
		payload.(*Manager).CleanUp()

	case KindTeardown:
		switch d := payload.(type) {
		case Destroyer:
			d.Destroy()
		case Disposer:
			d.Dispose()
		case io.Closer:
			return d.Close()
		}
	}
	return nil
}
