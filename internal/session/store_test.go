// ABOUTME: Tests for the TTL store backends and the thread/profile wrappers
// ABOUTME: Validates expiry, overwrites, deletes, and key-space separation

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends lets the same contract tests run against every Store backend.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	mem := NewMemoryStore()
	t.Cleanup(mem.Close)

	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": mem,
		"sqlite": sqlite,
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(context.Background(), "missing")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "k", "v", time.Minute))

			value, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", value)
		})
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "k", "first", time.Minute))
			require.NoError(t, store.Save(ctx, "k", "second", time.Minute))

			value, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "second", value)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Save(ctx, "k", "v", time.Minute))
			require.NoError(t, store.Delete(ctx, "k"))

			_, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)

			// Deleting an absent key is not an error
			require.NoError(t, store.Delete(ctx, "k"))
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", "v", 10*time.Millisecond))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStore_Expiry(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	// Unix-second granularity: use a TTL that has already lapsed
	require.NoError(t, store.Save(ctx, "k", "v", -time.Second))

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestThreadSessions_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sessions := NewThreadSessions(store, time.Minute, nil)
	ctx := context.Background()

	threadID, err := sessions.GetThread(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, threadID)

	require.NoError(t, sessions.SaveThread(ctx, "conv-1", "thread-abc"))

	threadID, err = sessions.GetThread(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-abc", threadID)

	// Overwrite
	require.NoError(t, sessions.SaveThread(ctx, "conv-1", "thread-def"))
	threadID, err = sessions.GetThread(ctx, "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "thread-def", threadID)

	require.NoError(t, sessions.DeleteThread(ctx, "conv-1"))
	threadID, err = sessions.GetThread(ctx, "conv-1")
	require.NoError(t, err)
	assert.Empty(t, threadID)
}

func TestThreadSessions_ValueShape(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sessions := NewThreadSessions(store, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, sessions.SaveThread(ctx, "conv-1", "thread-abc"))

	raw, ok, err := store.Get(ctx, "session:conv-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"thread_id":"thread-abc"}`, raw)
}

func TestProfileCache_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	cache := NewProfileCache(store, time.Minute, nil)
	ctx := context.Background()

	profile, err := cache.Get(ctx, "aad-1")
	require.NoError(t, err)
	assert.Nil(t, profile)

	want := map[string]any{"mail": "ada@example.com", "department": "QA"}
	require.NoError(t, cache.Save(ctx, "aad-1", want))

	profile, err = cache.Get(ctx, "aad-1")
	require.NoError(t, err)
	assert.Equal(t, want, profile)

	require.NoError(t, cache.Delete(ctx, "aad-1"))
	profile, err = cache.Get(ctx, "aad-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestKeySpaces_DoNotCollide(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	sessions := NewThreadSessions(store, time.Minute, nil)
	cache := NewProfileCache(store, time.Minute, nil)
	ctx := context.Background()

	// Same identifier in both key spaces
	require.NoError(t, sessions.SaveThread(ctx, "shared-id", "thread-abc"))
	require.NoError(t, cache.Save(ctx, "shared-id", map[string]any{"mail": "a@b.c"}))

	threadID, err := sessions.GetThread(ctx, "shared-id")
	require.NoError(t, err)
	assert.Equal(t, "thread-abc", threadID)

	profile, err := cache.Get(ctx, "shared-id")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", profile["mail"])
}
