// ABOUTME: Client for the orchestrator chat completions endpoint
// ABOUTME: Attaches stored thread ids and persists new ones for multi-turn continuity

package orchestrate

import (
	"bytes"
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

// TokenSource supplies bearer tokens for the orchestrator API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client calls the orchestrator chat endpoint. Transport and HTTP failures
// degrade to an empty reply; only token failures are returned as errors.
type Client struct {
	baseURL  string
	agentID  string
	tokens   TokenSource
	sessions session.Manager
	client   *http.Client
	logger   *slog.Logger
}

// New creates an orchestrator client.
func New(baseURL, agentID string, timeout time.Duration, tokens TokenSource, sessions session.Manager, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		agentID:  agentID,
		tokens:   tokens,
		sessions: sessions,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "orchestrate"),
	}
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Messages []chatMessage  `json:"messages"`
	Context  map[string]any `json:"context"`
	Stream   bool           `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the response the gateway consumes.
type chatResponse struct {
	ThreadID string `json:"thread_id"`
	Choices  []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the user message for one conversation and returns the
// agent's reply text. An empty reply means "no answer" (soft failure); the
// caller decides how to report that. If the response carries a new thread
// id it is persisted, overwriting any prior value for the conversation.
func (c *Client) Complete(ctx context.Context, conversationID, message string, turnContext map[string]any) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("getting orchestrator token: %w", err)
	}

	c.logger.Info("starting chat completion", "conversation_id", conversationID)

	body, err := json.Marshal(chatRequest{
		Messages: []chatMessage{{Role: "user", Content: message}},
		Context:  turnContext,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/orchestrate/%s/chat/completions", c.baseURL, c.agentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	threadID, err := c.sessions.GetThread(ctx, conversationID)
	if err != nil {
		// Store trouble must not kill the turn; the agent will start a new thread
		c.logger.Warn("thread lookup failed", "conversation_id", conversationID, "error", err)
	}
	if threadID != "" {
		req.Header.Set("X-IBM-THREAD-ID", threadID)
		c.logger.Debug("continuing existing thread", "conversation_id", conversationID, "thread_id", threadID)
	} else {
		c.logger.Debug("no previous thread, requesting a new one", "conversation_id", conversationID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("chat request failed", "conversation_id", conversationID, "error", err)
		return "", nil
	}
	defer resp.Body.Close()

	c.logger.Info("chat completion finished", "conversation_id", conversationID, "status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("chat request returned an error status",
			"conversation_id", conversationID,
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(detail)))
		return "", nil
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("decoding chat response failed", "conversation_id", conversationID, "error", err)
		return "", nil
	}

	if result.ThreadID != "" {
		if err := c.sessions.SaveThread(ctx, conversationID, result.ThreadID); err != nil {
			c.logger.Warn("saving thread failed", "conversation_id", conversationID, "error", err)
		} else {
			c.logger.Debug("thread stored", "conversation_id", conversationID, "thread_id", result.ThreadID)
		}
	}

	if len(result.Choices) == 0 {
		c.logger.Warn("empty response from orchestrator", "conversation_id", conversationID)
		return "", nil
	}

	return result.Choices[0].Message.Content, nil
}
