// ABOUTME: Cached IAM bearer-token source with lazy refresh
// ABOUTME: A 60-second expiry buffer avoids using a token that is about to lapse

package iam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	// expiryBuffer is subtracted from the token lifetime so a turn never
	// starts a call with a token about to lapse mid-flight.
	expiryBuffer = 60 * time.Second

	requestTimeout = 30 * time.Second

	grantType = "urn:ibm:params:oauth:grant-type:apikey"
)

// TokenSource exchanges an API key for a bearer token and caches it until
// shortly before expiry. Token failures propagate: without a valid token no
// subsequent call can succeed, so the turn must fail.
type TokenSource struct {
	tokenURL string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenSource creates a token source for the given IAM endpoint.
func NewTokenSource(tokenURL, apiKey string, logger *slog.Logger) *TokenSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenSource{
		tokenURL: tokenURL,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger.With("component", "iam"),
	}
}

// Token returns a valid bearer token, refreshing it when missing or within
// the expiry buffer. Refresh is serialized; concurrent callers share one
// request.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := time.Now()
	if ts.token != "" && now.Before(ts.expiresAt.Add(-expiryBuffer)) {
		ts.logger.Debug("reusing cached token",
			"remaining", ts.expiresAt.Sub(now).Round(time.Second))
		return ts.token, nil
	}

	ts.logger.Info("token missing or expiring, requesting a new one")
	if err := ts.refreshLocked(ctx); err != nil {
		return "", err
	}
	return ts.token, nil
}

// tokenResponse is the IAM token endpoint response shape.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// refreshLocked requests a new token. Must be called with mu held.
func (ts *TokenSource) refreshLocked(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("apikey", ts.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("token request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decoding token response: %w", err)
	}
	if payload.AccessToken == "" {
		return fmt.Errorf("token response missing access_token")
	}

	expiresIn := payload.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	ts.token = payload.AccessToken
	ts.expiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	ts.logger.Info("token renewed", "expires_in", expiresIn)
	return nil
}
