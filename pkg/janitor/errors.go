package janitor

import "errors"

// Sentinel errors for facade usage mistakes. Both indicate caller bugs and
// are reported synchronously at the call site, never deferred to cleanup.
var (
	// ErrReservedKey indicates Set was called with a key that names one of
	// the manager's own operations. Those names are permanently shadowed and
	// cannot hold tasks.
	ErrReservedKey = errors.New("key is a reserved manager operation")

	// ErrNilTask indicates Give was called with nil or false. A manager
	// cannot track "nothing".
	ErrNilTask = errors.New("cannot track a nil task")

	// ErrNilKey indicates Set was called with a nil key.
	ErrNilKey = errors.New("key cannot be nil")
)

// ErrPromiseCanceled is the settlement error of a cancelled [Promise].
var ErrPromiseCanceled = errors.New("promise canceled")
