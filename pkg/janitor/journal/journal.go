// Package journal records disposal events for leak forensics.
//
// A journal is an append-only audit log of every disposal a registry
// performs: which key, which task variant, how the disposal went, and how
// long it took. Long-lived processes can attach a persistent journal to a
// manager and answer "what was released, when, and did anything fail" after
// the fact.
//
// Two Store implementations ship with the package: MemoryStore for tests and
// short-lived processes, and SQLiteStore for single-process durable use.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Outcome describes how a disposal went.
type Outcome string

// Disposal outcomes.
const (
	// OutcomeDisposed means the disposal action ran to completion.
	OutcomeDisposed Outcome = "disposed"

	// OutcomeSkipped means the payload had no teardown capability and the
	// disposal degraded to a no-op.
	OutcomeSkipped Outcome = "skipped"

	// OutcomePanicked means the disposal action panicked and was isolated.
	OutcomePanicked Outcome = "panicked"
)

// Record is one disposal event.
type Record struct {
	// ID uniquely identifies this record.
	ID string `json:"id"`

	// RegistryID identifies the registry that performed the disposal.
	RegistryID string `json:"registry_id"`

	// Key is the string form of the entry's key.
	Key string `json:"key"`

	// Kind is the task variant that was dispatched.
	Kind string `json:"kind"`

	// Outcome describes how the disposal went.
	Outcome Outcome `json:"outcome"`

	// Duration is how long the disposal action took.
	Duration time.Duration `json:"duration"`

	// DisposedAt is when the disposal happened.
	DisposedAt time.Time `json:"disposed_at"`
}

// NewRecord creates a record with a fresh id and timestamp.
func NewRecord(registryID, key, kind string, outcome Outcome, duration time.Duration) *Record {
	return &Record{
		ID:         "jrn-" + uuid.New().String()[:8],
		RegistryID: registryID,
		Key:        key,
		Kind:       kind,
		Outcome:    outcome,
		Duration:   duration,
		DisposedAt: time.Now().UTC(),
	}
}

// Store persists disposal records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores a record.
	Append(ctx context.Context, rec *Record) error

	// List returns records for a registry, newest first. A limit of 0 means
	// no limit.
	List(ctx context.Context, registryID string, limit int) ([]*Record, error)

	// Count returns the number of records for a registry.
	Count(ctx context.Context, registryID string) (int, error)

	// Prune deletes records disposed before the cutoff and reports how many
	// were removed.
	Prune(ctx context.Context, before time.Time) (int, error)

	// Close releases the store's resources.
	Close() error
}

// ErrStoreClosed is returned by operations on a closed store.
var ErrStoreClosed = errors.New("journal store closed")
