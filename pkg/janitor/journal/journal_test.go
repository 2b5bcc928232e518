package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord("reg-1", "conn", "connection", OutcomeDisposed, 5*time.Millisecond)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "reg-1", rec.RegistryID)
	assert.Equal(t, "conn", rec.Key)
	assert.Equal(t, "connection", rec.Kind)
	assert.Equal(t, OutcomeDisposed, rec.Outcome)
	assert.Equal(t, 5*time.Millisecond, rec.Duration)
	assert.False(t, rec.DisposedAt.IsZero())
}

func TestNewRecord_UniqueIDs(t *testing.T) {
	a := NewRecord("reg-1", "k", "callable", OutcomeDisposed, 0)
	b := NewRecord("reg-1", "k", "callable", OutcomeDisposed, 0)
	assert.NotEqual(t, a.ID, b.ID)
}

// storeTest runs the Store contract against any implementation.
func storeTest(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("append and list", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, NewRecord("reg-a", "k1", "callable", OutcomeDisposed, time.Millisecond)))
		require.NoError(t, store.Append(ctx, NewRecord("reg-a", "k2", "teardown", OutcomePanicked, time.Millisecond)))
		require.NoError(t, store.Append(ctx, NewRecord("reg-b", "k3", "opaque", OutcomeSkipped, 0)))

		records, err := store.List(ctx, "reg-a", 0)
		require.NoError(t, err)
		require.Len(t, records, 2)

		all, err := store.List(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("list with limit", func(t *testing.T) {
		records, err := store.List(ctx, "reg-a", 1)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("count", func(t *testing.T) {
		count, err := store.Count(ctx, "reg-a")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		count, err = store.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		count, err = store.Count(ctx, "reg-missing")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("prune", func(t *testing.T) {
		pruned, err := store.Prune(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, pruned, "nothing old enough to prune")

		pruned, err = store.Prune(ctx, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 3, pruned)

		count, err := store.Count(ctx, "")
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("closed store", func(t *testing.T) {
		require.NoError(t, store.Close())

		err := store.Append(ctx, NewRecord("reg-a", "k", "callable", OutcomeDisposed, 0))
		assert.ErrorIs(t, err, ErrStoreClosed)

		_, err = store.List(ctx, "", 0)
		assert.ErrorIs(t, err, ErrStoreClosed)

		_, err = store.Count(ctx, "")
		assert.ErrorIs(t, err, ErrStoreClosed)

		_, err = store.Prune(ctx, time.Now())
		assert.ErrorIs(t, err, ErrStoreClosed)
	})
}

func TestMemoryStore(t *testing.T) {
	storeTest(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	storeTest(t, store)
}

func TestSQLiteStore_File(t *testing.T) {
	path := t.TempDir() + "/janitor.db"

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	rec := NewRecord("reg-1", "conn", "connection", OutcomeDisposed, 3*time.Millisecond)
	require.NoError(t, store.Append(ctx, rec))
	require.NoError(t, store.Close())

	// Records survive reopening the file.
	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.List(ctx, "reg-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
	assert.Equal(t, "connection", records[0].Kind)
	assert.Equal(t, OutcomeDisposed, records[0].Outcome)
	assert.Equal(t, 3*time.Millisecond, records[0].Duration)
}

func TestSQLiteStore_SubSecondOrdering(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	// Fractional parts chosen so that their textual forms (".5" vs ".52")
	// would sort in the wrong order; the stored epoch nanos must not.
	older := NewRecord("reg-1", "older", "callable", OutcomeDisposed, 0)
	older.DisposedAt = base.Add(500 * time.Millisecond)
	newer := NewRecord("reg-1", "newer", "callable", OutcomeDisposed, 0)
	newer.DisposedAt = base.Add(520 * time.Millisecond)

	require.NoError(t, store.Append(ctx, older))
	require.NoError(t, store.Append(ctx, newer))

	records, err := store.List(ctx, "reg-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "newer", records[0].Key, "newest first holds within a second")
	assert.Equal(t, "older", records[1].Key)
	assert.True(t, records[0].DisposedAt.Equal(newer.DisposedAt), "timestamp round-trips exactly")
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
