// ABOUTME: Conversation-to-thread-id mapping with TTL expiry
// ABOUTME: Thread ids are the agent's continuation tokens; expiry models "session still warm"

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Manager maps a conversation id to the agent-assigned thread id.
type Manager interface {
	GetThread(ctx context.Context, conversationID string) (string, error)
	SaveThread(ctx context.Context, conversationID, threadID string) error
	DeleteThread(ctx context.Context, conversationID string) error
}

// threadRecord is the stored value shape. Kept as a JSON object rather than
// the bare id for compatibility with existing stored sessions.
type threadRecord struct {
	ThreadID string `json:"thread_id"`
}

// ThreadSessions implements Manager on top of a TTL Store, keyed by
// "session:<conversation_id>".
type ThreadSessions struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewThreadSessions creates a thread session manager with the given TTL.
func NewThreadSessions(store Store, ttl time.Duration, logger *slog.Logger) *ThreadSessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThreadSessions{
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "sessions"),
	}
}

func threadKey(conversationID string) string {
	return "session:" + conversationID
}

// GetThread returns the stored thread id for the conversation, or "" when
// none exists or the session has expired.
func (t *ThreadSessions) GetThread(ctx context.Context, conversationID string) (string, error) {
	value, ok, err := t.store.Get(ctx, threadKey(conversationID))
	if err != nil {
		return "", fmt.Errorf("reading thread session: %w", err)
	}
	if !ok {
		return "", nil
	}

	var record threadRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return "", fmt.Errorf("decoding thread session: %w", err)
	}
	return record.ThreadID, nil
}

// SaveThread stores the thread id for the conversation, overwriting any
// prior value and resetting the TTL.
func (t *ThreadSessions) SaveThread(ctx context.Context, conversationID, threadID string) error {
	value, err := json.Marshal(threadRecord{ThreadID: threadID})
	if err != nil {
		return fmt.Errorf("encoding thread session: %w", err)
	}

	t.logger.Debug("saving thread session",
		"conversation_id", conversationID,
		"ttl", t.ttl)
	if err := t.store.Save(ctx, threadKey(conversationID), string(value), t.ttl); err != nil {
		return fmt.Errorf("saving thread session: %w", err)
	}
	return nil
}

// DeleteThread removes the conversation's session.
func (t *ThreadSessions) DeleteThread(ctx context.Context, conversationID string) error {
	if err := t.store.Delete(ctx, threadKey(conversationID)); err != nil {
		return fmt.Errorf("deleting thread session: %w", err)
	}
	return nil
}
