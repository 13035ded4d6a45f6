// ABOUTME: Tests for the read-through profile service
// ABOUTME: Validates cache hits, external fetches, and soft failure behavior

package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/babel-gateway/internal/session"
)

func newCache(t *testing.T) *session.ProfileCache {
	t.Helper()
	store := session.NewMemoryStore()
	t.Cleanup(store.Close)
	return session.NewProfileCache(store, time.Minute, nil)
}

func TestLookup_MissFetchesAndCaches(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "aad-1", r.URL.Query().Get("object_id"))
		assert.Equal(t, "shh", r.Header.Get("Client-Secret"))
		w.Write([]byte(`{"user":{"mail":"ada@example.com","department":"QA"}}`))
	}))
	defer srv.Close()

	svc := New(srv.URL, "shh", time.Second, newCache(t), nil)
	ctx := context.Background()

	profile, err := svc.Lookup(ctx, "aad-1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile["mail"])

	// Second lookup within the TTL window answers from cache, unchanged
	again, err := svc.Lookup(ctx, "aad-1")
	require.NoError(t, err)
	assert.Equal(t, profile, again)
	assert.Equal(t, int64(1), calls.Load())
}

func TestLookup_EmptyObjectID(t *testing.T) {
	svc := New("http://unused", "shh", time.Second, newCache(t), nil)

	profile, err := svc.Lookup(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestLookup_DisabledService(t *testing.T) {
	svc := New("", "", time.Second, newCache(t), nil)
	assert.False(t, svc.Enabled())

	profile, err := svc.Lookup(context.Background(), "aad-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestLookup_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	svc := New(srv.URL, "shh", time.Second, newCache(t), nil)

	_, err := svc.Lookup(context.Background(), "aad-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestLookup_MissingUserEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc := New(srv.URL, "shh", time.Second, newCache(t), nil)

	profile, err := svc.Lookup(context.Background(), "aad-1")
	require.NoError(t, err)
	assert.Nil(t, profile)
}
