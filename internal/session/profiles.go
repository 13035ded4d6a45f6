// ABOUTME: TTL cache for user directory profiles, keyed by directory object id
// ABOUTME: Profiles and thread sessions share Store implementations but never key spaces

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// ProfileCache caches free-form identity attribute maps under
// "profile:<user_id>" keys. The TTL models identity data freshness.
type ProfileCache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewProfileCache creates a profile cache with the given TTL.
func NewProfileCache(store Store, ttl time.Duration, logger *slog.Logger) *ProfileCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileCache{
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "profiles"),
	}
}

func profileKey(objectID string) string {
	return "profile:" + objectID
}

// Get returns the cached profile for the object id, or nil on a miss.
func (p *ProfileCache) Get(ctx context.Context, objectID string) (map[string]any, error) {
	value, ok, err := p.store.Get(ctx, profileKey(objectID))
	if err != nil {
		return nil, fmt.Errorf("reading cached profile: %w", err)
	}
	if !ok {
		p.logger.Debug("profile cache miss", "object_id", objectID)
		return nil, nil
	}

	var profile map[string]any
	if err := json.Unmarshal([]byte(value), &profile); err != nil {
		return nil, fmt.Errorf("decoding cached profile: %w", err)
	}
	p.logger.Debug("profile cache hit", "object_id", objectID)
	return profile, nil
}

// Save caches the profile, overwriting any prior entry.
func (p *ProfileCache) Save(ctx context.Context, objectID string, profile map[string]any) error {
	value, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := p.store.Save(ctx, profileKey(objectID), string(value), p.ttl); err != nil {
		return fmt.Errorf("caching profile: %w", err)
	}
	return nil
}

// Delete removes the cached profile.
func (p *ProfileCache) Delete(ctx context.Context, objectID string) error {
	if err := p.store.Delete(ctx, profileKey(objectID)); err != nil {
		return fmt.Errorf("deleting cached profile: %w", err)
	}
	return nil
}
