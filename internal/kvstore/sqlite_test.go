package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRequiresIdentity(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "kv.db"), "")
	require.ErrorIs(t, err, ErrNoIdentity)
}

func TestSQLiteRoundTrip(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "kv.db")
	store, err := Open(dsn, "device-1")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "forecast_cache", []byte(`[{"date":"2025-06-01"}]`)))
	got, err := store.Get(ctx, "forecast_cache")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2025-06-01"}]`, string(got))

	// Writes replace wholesale.
	require.NoError(t, store.Set(ctx, "forecast_cache", []byte(`[]`)))
	got, err = store.Get(ctx, "forecast_cache")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, store.Delete(ctx, "forecast_cache"))
	_, err = store.Get(ctx, "forecast_cache")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is a no-op.
	assert.NoError(t, store.Delete(ctx, "forecast_cache"))
}

func TestSQLiteScopesByDevice(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	a, err := Open(dsn, "device-a")
	require.NoError(t, err)
	defer a.Close()

	b, err := Open(dsn, "device-b")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set(ctx, "outfit_schedule", []byte("[1]")))

	_, err = b.Get(ctx, "outfit_schedule")
	assert.ErrorIs(t, err, ErrNotFound, "devices must not see each other's data")
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payload := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", payload))
	payload[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got), "stored values are isolated from caller mutation")
}
