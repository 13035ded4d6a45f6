// ABOUTME: Tests for the cached IAM token source
// ABOUTME: Validates caching, buffered expiry refresh, and error propagation

package iam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, calls *atomic.Int64, expiresIn string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ibm:params:oauth:grant-type:apikey", r.FormValue("grant_type"))
		assert.Equal(t, "test-key", r.FormValue("apikey"))

		w.WriteHeader(status)
		if status == http.StatusOK {
			w.Write([]byte(`{"access_token":"tok-1","expires_in":` + expiresIn + `}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestToken_CachesUntilExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, "3600", http.StatusOK)

	ts := NewTokenSource(srv.URL, "test-key", nil)

	tok, err := ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = ts.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	assert.Equal(t, int64(1), calls.Load())
}

func TestToken_RefreshesInsideBuffer(t *testing.T) {
	var calls atomic.Int64
	// Expires in 30s: inside the 60s buffer, so every call refreshes
	srv := tokenServer(t, &calls, "30", http.StatusOK)

	ts := NewTokenSource(srv.URL, "test-key", nil)

	_, err := ts.Token(context.Background())
	require.NoError(t, err)
	_, err = ts.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load())
}

func TestToken_DefaultExpiry(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, "0", http.StatusOK)

	ts := NewTokenSource(srv.URL, "test-key", nil)

	_, err := ts.Token(context.Background())
	require.NoError(t, err)

	// Default 3600s lifetime keeps the token cached
	assert.True(t, ts.expiresAt.After(time.Now().Add(30*time.Minute)))
}

func TestToken_ErrorPropagates(t *testing.T) {
	var calls atomic.Int64
	srv := tokenServer(t, &calls, "", http.StatusUnauthorized)

	ts := NewTokenSource(srv.URL, "test-key", nil)

	_, err := ts.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestToken_UnreachableEndpoint(t *testing.T) {
	ts := NewTokenSource("http://127.0.0.1:1/token", "test-key", nil)

	_, err := ts.Token(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requesting token")
}
