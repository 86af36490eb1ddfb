package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "kv.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_KeyValue(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, "properties", `[{"id":"p1"}]`, 0))
		val, ok, err := db.Get(ctx, "properties")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"p1"}]`, val)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, "md_dark", "0", 0))
		require.NoError(t, db.Set(ctx, "md_dark", "1", 0))
		val, _, err := db.Get(ctx, "md_dark")
		require.NoError(t, err)
		assert.Equal(t, "1", val)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok, err := db.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Set(ctx, "k", "v", 0))
		require.NoError(t, db.Delete(ctx, "k"))
		_, ok, err := db.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	assert.NoError(t, db.Ping(ctx))
}

func TestDB_Expiry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	require.NoError(t, db.Set(ctx, "session:a", "{}", time.Minute))
	require.NoError(t, db.Set(ctx, "session:b", "{}", time.Hour))
	require.NoError(t, db.Set(ctx, "keep", "x", 0))

	_, ok, err := db.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = db.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Hour)
	n, err := db.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err = db.Get(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDB_RateLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		allowed, err := db.CheckRateLimit(ctx, "login:x", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := db.CheckRateLimit(ctx, "login:x", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	now = now.Add(2 * time.Minute)
	allowed, err = db.CheckRateLimit(ctx, "login:x", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
