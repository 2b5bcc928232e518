package janitor

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Manager is a keyed-assignment facade over a [Registry]. It adds anonymous
// numeric ids for unkeyed tasks, shadows its own operation names so they can
// never hold tasks, and integrates cancellable futures.
//
// A cleaned manager is immediately reusable; one-shot destroy-and-discard
// semantics, if wanted, are the caller's to layer on top.
type Manager struct {
	id     string
	reg    *Registry
	logger *slog.Logger

	// nextID is the anonymous-id counter: strictly increasing, never reused
	// within this instance's lifetime.
	nextID atomic.Uint64
}

// reservedNames are the facade's own operation names. Writing a task under
// any of them is a usage error; reading one resolves to the built-in
// operation instead of registry contents.
var reservedNames = map[string]struct{}{
	"Get": {}, "get": {},
	"Set": {}, "set": {},
	"Remove": {}, "remove": {},
	"Give": {}, "give": {},
	"GiveFuture": {}, "giveFuture": {},
	"CleanUp": {}, "cleanUp": {}, "cleanup": {},
	"Destroy": {}, "destroy": {},
	"IsManager": {}, "isManager": {},
	"Count": {}, "count": {},
	"Keys": {}, "keys": {},
}

// New creates a manager with an empty registry and a zeroed anonymous-id
// counter.
func New(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := "jan-" + uuid.New().String()[:8]
	return &Manager{
		id:     id,
		reg:    newRegistry(id, o),
		logger: o.logger.With(slog.String("manager_id", id)),
	}
}

// IsManager reports whether v is a *Manager. Other subsystems use it to
// treat a manager as a task payload for nesting.
func IsManager(v any) bool {
	_, ok := v.(*Manager)
	return ok
}

// ID returns the manager's instance id.
func (m *Manager) ID() string {
	return m.id
}

// Registry returns the manager's underlying registry.
func (m *Manager) Registry() *Registry {
	return m.reg
}

// Get returns the payload stored under key, or nil if the key is absent.
//
// Keys that name the manager's own operations ("CleanUp", "Give", ...) are
// permanently shadowed: Get resolves them to the corresponding bound method
// rather than registry contents.
func (m *Manager) Get(key any) any {
	if name, ok := key.(string); ok {
		if op, reserved := m.reservedOp(name); reserved {
			return op
		}
	}
	payload, _ := m.reg.Get(key)
	return payload
}

// Set assigns payload to key.
//
// A key naming a reserved operation fails fast with [ErrReservedKey] and
// leaves the registry unmodified. A nil key fails with [ErrNilKey]. A nil
// payload removes the entry (disposing it). Assigning the payload already
// stored under key is a no-op, avoiding a pointless dispose-and-reinstall
// cycle. Otherwise the previous occupant, if any, is disposed before the new
// payload is installed.
func (m *Manager) Set(key, payload any) error {
	if key == nil {
		return ErrNilKey
	}
	if name, ok := key.(string); ok {
		if _, reserved := reservedNames[name]; reserved {
			return fmt.Errorf("%w: %q", ErrReservedKey, name)
		}
	}

	if payload == nil {
		m.reg.Remove(key)
		return nil
	}

	if current, ok := m.reg.Get(key); ok && sameTask(current, payload) {
		return nil
	}

	m.reg.Add(key, payload)
	return nil
}

// Remove disposes and deletes the entry under key. Equivalent to
// Set(key, nil) but usable with keys of any type without an error path.
// Removing an absent key is a no-op.
func (m *Manager) Remove(key any) {
	m.reg.Remove(key)
}

// Give tracks an anonymous task and returns its id. The id can later cancel
// just that task via Remove.
//
// A nil or false payload fails fast with [ErrNilTask]: a manager cannot
// track "nothing". A payload with no recognizable teardown capability is
// still tracked, but a WARN diagnostic is emitted, since its disposal will
// be a silent no-op — almost certainly not what the caller intended.
func (m *Manager) Give(payload any) (uint64, error) {
	if payload == nil {
		return 0, ErrNilTask
	}
	if b, ok := payload.(bool); ok && !b {
		return 0, ErrNilTask
	}

	id := m.nextID.Add(1)
	if classify(payload) == KindOpaque {
		m.logger.Warn("giving task with no teardown capability",
			slog.Uint64("task_id", id),
			slog.String("payload_type", fmt.Sprintf("%T", payload)),
		)
	}

	m.reg.Add(id, payload)
	return id, nil
}

// GiveFuture tracks a cancellable future for cleanup and returns it.
//
// An already-settled future is returned untouched and never tracked: there
// is nothing left to cancel. A pending future is tracked under an anonymous
// id as a cancellable handle, and a completion callback registered here —
// once, at tracking time — removes the entry when the future settles, so
// long-lived managers do not accumulate finished futures. Cleaning the
// manager while the future is still pending cancels it.
func (m *Manager) GiveFuture(f Future) Future {
	if f == nil {
		return nil
	}
	if f.Settled() {
		return f
	}

	id := m.nextID.Add(1)
	m.reg.Add(id, f)
	f.OnSettled(func() {
		m.reg.Discard(id)
	})
	return f
}

// Count returns the number of live tasks.
func (m *Manager) Count() int {
	return m.reg.Len()
}

// Keys returns a snapshot of the live task keys in insertion order.
func (m *Manager) Keys() []any {
	return m.reg.Keys()
}

// CleanUp disposes every tracked task and empties the manager. The manager
// is reusable afterwards. Safe to call redundantly and re-entrantly.
func (m *Manager) CleanUp() {
	m.reg.CleanUp()
}

// Destroy is an alias of CleanUp.
func (m *Manager) Destroy() {
	m.reg.CleanUp()
}

// reservedOp maps a reserved name to the corresponding built-in operation.
func (m *Manager) reservedOp(name string) (any, bool) {
	switch name {
	case "Get", "get":
		return m.Get, true
	case "Set", "set":
		return m.Set, true
	case "Remove", "remove":
		return m.Remove, true
	case "Give", "give":
		return m.Give, true
	case "GiveFuture", "giveFuture":
		return m.GiveFuture, true
	case "CleanUp", "cleanUp", "cleanup":
		return m.CleanUp, true
	case "Destroy", "destroy":
		return m.Destroy, true
	case "IsManager", "isManager":
		return IsManager, true
	case "Count", "count":
		return m.Count, true
	case "Keys", "keys":
		return m.Keys, true
	}
	return nil, false
}

// sameTask reports whether two payloads are the same task, by identity for
// reference kinds and by value for comparable ones. Used to make redundant
// reassignment a no-op.
func sameTask(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return ra.Pointer() == rb.Pointer()
	}

	if ra.Type().Comparable() {
		return a == b
	}
	return false
}
