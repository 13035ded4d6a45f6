// ABOUTME: Builds the per-turn activity context from inbound channel events
// ABOUTME: Probes prioritized candidate keys for contact data and merges cached profile fields

package activity

import (
	"fmt"
	"sort"
)

// Context is the immutable per-turn record derived from one inbound message.
// A profile-merged copy replaces missing contact fields; fields already
// present from the channel are never overwritten.
type Context struct {
	ConversationID  string
	UserName        string
	UserID          string
	UserAADObjectID string
	UserEmail       string
	UserPhone       string
	Locale          string
	Message         string
}

// Candidate key lists for contact extraction, in priority order. The channel
// event and the directory profile use overlapping but not identical names.
var (
	emailKeys = []string{"email", "mail", "userPrincipalName", "primaryEmail"}
	phoneKeys = []string{"mobilePhone", "mobile_phone", "phone", "telephoneNumber"}

	profileEmailKeys = []string{"mail", "email", "userPrincipalName", "primaryEmail"}
	profilePhoneKeys = []string{"mobilePhone", "mobile_phone", "mobile", "businessPhones", "phone", "telephoneNumber"}

	profileIDKeys = []string{"id", "aad_object_id", "objectId"}
)

// Builder converts channel activities into orchestrator-ready context.
type Builder struct {
	defaultLocale string
}

// NewBuilder creates a Builder. The default locale is applied when the
// inbound event carries none.
func NewBuilder(defaultLocale string) *Builder {
	return &Builder{defaultLocale: defaultLocale}
}

// FromActivity extracts the per-turn context from an inbound activity.
func (b *Builder) FromActivity(a *Activity) Context {
	locale := a.Locale
	if locale == "" {
		locale = b.defaultLocale
	}

	return Context{
		ConversationID:  a.Conversation.ID,
		UserName:        a.From.Name,
		UserID:          a.From.ID,
		UserAADObjectID: a.From.AADObjectID,
		UserEmail:       extractAccountValue(&a.From, emailKeys),
		UserPhone:       extractAccountValue(&a.From, phoneKeys),
		Locale:          locale,
		Message:         a.Text,
	}
}

// MergeProfileData returns a copy of ctx with empty contact fields filled
// from the profile. Identity data already present in the channel event wins.
func (b *Builder) MergeProfileData(ctx Context, profile map[string]any) Context {
	if len(profile) == 0 {
		return ctx
	}

	if ctx.UserEmail == "" {
		ctx.UserEmail = ExtractFromMapping(profile, profileEmailKeys)
	}
	if ctx.UserPhone == "" {
		ctx.UserPhone = ExtractFromMapping(profile, profilePhoneKeys)
	}
	if ctx.UserAADObjectID == "" {
		ctx.UserAADObjectID = ExtractFromMapping(profile, profileIDKeys)
	}

	return ctx
}

// OrchestrateContext builds the context payload attached to the orchestrator
// chat request. Profile attributes are flattened in under profile_ keys.
func (b *Builder) OrchestrateContext(ctx Context, profile map[string]any) map[string]any {
	channel := map[string]any{
		"conversation_id":  ctx.ConversationID,
		"user_name":        ctx.UserName,
		"user_aadObjectId": ctx.UserAADObjectID,
		"user_id":          ctx.UserID,
	}
	for key, value := range profile {
		channel["profile_"+key] = value
	}

	return map[string]any{
		"channel": map[string]any{
			"channel_type": "teams",
			"teams":        channel,
			"locale":       ctx.Locale,
		},
	}
}

// extractAccountValue probes the candidate keys on the account's top-level
// fields, then on its properties object, returning the first non-empty
// coerced value.
func extractAccountValue(account *Account, keys []string) string {
	if account == nil {
		return ""
	}
	if v := ExtractFromMapping(account.Extra, keys); v != "" {
		return v
	}
	return ExtractFromMapping(account.Properties, keys)
}

// ExtractFromMapping probes the candidate keys against a free-form attribute
// map and returns the first non-empty match. List values yield their first
// non-empty element; nested maps yield their first non-empty value.
func ExtractFromMapping(data map[string]any, keys []string) string {
	if len(data) == 0 {
		return ""
	}
	for _, key := range keys {
		value, ok := data[key]
		if !ok {
			continue
		}
		if coerced := coerceValue(value); coerced != "" {
			return coerced
		}
	}
	return ""
}

// coerceValue flattens a list or map value to a single string.
func coerceValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		for _, item := range v {
			if coerced := coerceValue(item); coerced != "" {
				return coerced
			}
		}
		return ""
	case map[string]any:
		// JSON maps are unordered in Go; sort keys so probing stays
		// deterministic across turns.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if coerced := coerceValue(v[k]); coerced != "" {
				return coerced
			}
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
