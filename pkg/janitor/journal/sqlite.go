package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists disposal records to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./janitor.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// disposed_at is stored as epoch nanoseconds so that ordering by it is
	// chronological; a textual timestamp would sort wrong at sub-second
	// granularity once trailing fractional zeros are trimmed.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS disposals (
			id TEXT PRIMARY KEY,
			registry_id TEXT NOT NULL,
			key TEXT NOT NULL,
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			duration_us INTEGER NOT NULL,
			disposed_at INTEGER NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_disposals_registry_id
		ON disposals(registry_id)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append stores a record.
func (s *SQLiteStore) Append(ctx context.Context, rec *Record) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO disposals (id, registry_id, key, kind, outcome, duration_us, disposed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.RegistryID, rec.Key, rec.Kind, string(rec.Outcome),
		rec.Duration.Microseconds(), rec.DisposedAt.UnixNano())

	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// List returns records for a registry, newest first.
func (s *SQLiteStore) List(ctx context.Context, registryID string, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	query := `
		SELECT id, registry_id, key, kind, outcome, duration_us, disposed_at
		FROM disposals
	`
	var args []any
	if registryID != "" {
		query += " WHERE registry_id = ?"
		args = append(args, registryID)
	}
	query += " ORDER BY disposed_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var outcome string
		var durationUs, disposedAt int64
		if err := rows.Scan(&rec.ID, &rec.RegistryID, &rec.Key, &rec.Kind,
			&outcome, &durationUs, &disposedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Outcome = Outcome(outcome)
		rec.Duration = time.Duration(durationUs) * time.Microsecond
		rec.DisposedAt = time.Unix(0, disposedAt).UTC()
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return records, nil
}

// Count returns the number of records for a registry.
func (s *SQLiteStore) Count(ctx context.Context, registryID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int
	var err error
	if registryID == "" {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM disposals`).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM disposals WHERE registry_id = ?
		`, registryID).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Prune deletes records disposed before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, before time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM disposals WHERE disposed_at < ?
	`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("prune records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return int(affected), nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
