// ABOUTME: Inbound channel event model for babel-gateway
// ABOUTME: Mirrors the Bot-Framework-style activity wire format, keeping unknown sender fields

package activity

import "encoding/json"

// Activity types the gateway distinguishes. Everything that is not a user
// message is ignored by the turn coordinator.
const (
	TypeMessage = "message"
	TypeTyping  = "typing"
)

// Activity is one inbound event delivered by the chat channel webhook.
type Activity struct {
	Type         string       `json:"type"`
	ID           string       `json:"id,omitempty"`
	Text         string       `json:"text,omitempty"`
	Locale       string       `json:"locale,omitempty"`
	ServiceURL   string       `json:"serviceUrl,omitempty"`
	Conversation Conversation `json:"conversation"`
	From         Account      `json:"from"`
	Recipient    Account      `json:"recipient,omitempty"`
	ReplyToID    string       `json:"replyToId,omitempty"`
}

// Conversation identifies the channel conversation an activity belongs to.
type Conversation struct {
	ID string `json:"id"`
}

// Account is the sender (or recipient) record on an activity. Channels
// attach contact data under inconsistent field names, sometimes at the top
// level and sometimes inside a nested properties object, so both are kept
// for candidate-key probing.
type Account struct {
	ID          string
	Name        string
	AADObjectID string

	// Extra holds top-level fields beyond the known ones.
	Extra map[string]any
	// Properties holds the auxiliary properties object, when present.
	Properties map[string]any
}

// accountKnown covers the explicitly modeled account fields.
type accountKnown struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	AADObjectID string         `json:"aadObjectId"`
	Properties  map[string]any `json:"properties"`
}

// UnmarshalJSON decodes the known account fields and retains every other
// top-level field in Extra so contact probing can see channel-specific keys.
func (a *Account) UnmarshalJSON(data []byte) error {
	var known accountKnown
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	delete(raw, "id")
	delete(raw, "name")
	delete(raw, "aadObjectId")
	delete(raw, "properties")

	a.ID = known.ID
	a.Name = known.Name
	a.AADObjectID = known.AADObjectID
	a.Properties = known.Properties
	if len(raw) > 0 {
		a.Extra = raw
	}
	return nil
}

// MarshalJSON writes the account back out in the channel wire shape.
// Extra fields are flattened to the top level, matching how they arrived.
func (a Account) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+4)
	for k, v := range a.Extra {
		out[k] = v
	}
	if a.ID != "" {
		out["id"] = a.ID
	}
	if a.Name != "" {
		out["name"] = a.Name
	}
	if a.AADObjectID != "" {
		out["aadObjectId"] = a.AADObjectID
	}
	if a.Properties != nil {
		out["properties"] = a.Properties
	}
	return json.Marshal(out)
}
