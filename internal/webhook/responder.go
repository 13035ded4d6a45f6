// ABOUTME: Outbound delivery back to the chat channel
// ABOUTME: Posts reply and typing activities to the inbound activity's service URL

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/2389/babel-gateway/internal/activity"
)

// channelResponder delivers activities for one turn. Replies go to the
// conversation the inbound activity arrived on, with sender and recipient
// swapped.
type channelResponder struct {
	inbound *activity.Activity
	client  *http.Client
}

func newChannelResponder(inbound *activity.Activity, client *http.Client) *channelResponder {
	return &channelResponder{inbound: inbound, client: client}
}

// SendText posts a message activity with the given text.
func (r *channelResponder) SendText(ctx context.Context, text string) error {
	return r.post(ctx, &activity.Activity{
		Type:         activity.TypeMessage,
		Text:         text,
		Locale:       r.inbound.Locale,
		Conversation: r.inbound.Conversation,
		From:         r.inbound.Recipient,
		Recipient:    r.inbound.From,
		ReplyToID:    r.inbound.ID,
	})
}

// SendTyping posts a typing indicator.
func (r *channelResponder) SendTyping(ctx context.Context) error {
	return r.post(ctx, &activity.Activity{
		Type:         activity.TypeTyping,
		Conversation: r.inbound.Conversation,
		From:         r.inbound.Recipient,
		Recipient:    r.inbound.From,
		ReplyToID:    r.inbound.ID,
	})
}

func (r *channelResponder) post(ctx context.Context, a *activity.Activity) error {
	if r.inbound.ServiceURL == "" {
		return fmt.Errorf("inbound activity has no service URL")
	}

	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding outbound activity: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v3/conversations/%s/activities",
		strings.TrimRight(r.inbound.ServiceURL, "/"),
		url.PathEscape(r.inbound.Conversation.ID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building outbound request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("channel rejected activity: status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
