// ABOUTME: Read-through user profile lookup against the external directory API
// ABOUTME: Successful lookups are cached; lookup failures degrade to no profile

package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/babel-gateway/internal/session"
)

// Service fetches and caches user identity attributes keyed by directory
// object id. The external lookup is optional; an unconfigured service only
// ever answers from cache (which stays empty).
type Service struct {
	baseURL      string
	clientSecret string
	cache        *session.ProfileCache
	client       *http.Client
	logger       *slog.Logger
}

// New creates a profile service. baseURL and clientSecret may be empty, in
// which case external lookups are disabled.
func New(baseURL, clientSecret string, timeout time.Duration, cache *session.ProfileCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		baseURL:      baseURL,
		clientSecret: clientSecret,
		cache:        cache,
		client:       &http.Client{Timeout: timeout},
		logger:       logger.With("component", "profile"),
	}
}

// Enabled reports whether the external directory lookup is configured.
func (s *Service) Enabled() bool {
	return s.baseURL != "" && s.clientSecret != ""
}

// Lookup returns the profile for the object id, preferring the cache. On a
// miss the external directory is queried and the result cached. A nil map
// with nil error means "no profile available" and is not a failure.
func (s *Service) Lookup(ctx context.Context, objectID string) (map[string]any, error) {
	if objectID == "" {
		s.logger.Debug("profile lookup skipped, missing object id")
		return nil, nil
	}

	cached, err := s.cache.Get(ctx, objectID)
	if err != nil {
		s.logger.Warn("profile cache read failed", "object_id", objectID, "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	if !s.Enabled() {
		s.logger.Warn("profile lookup disabled by configuration")
		return nil, nil
	}

	profile, err := s.fetch(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	if err := s.cache.Save(ctx, objectID, profile); err != nil {
		s.logger.Warn("caching profile failed", "object_id", objectID, "error", err)
	}
	return profile, nil
}

// lookupResponse is the directory API response envelope.
type lookupResponse struct {
	User map[string]any `json:"user"`
}

// fetch queries the external directory API for one object id.
func (s *Service) fetch(ctx context.Context, objectID string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building profile request: %w", err)
	}
	q := req.URL.Query()
	q.Set("object_id", objectID)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Client-Secret", s.clientSecret)

	s.logger.Info("requesting profile", "object_id", objectID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("profile request failed: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding profile response: %w", err)
	}
	return payload.User, nil
}
