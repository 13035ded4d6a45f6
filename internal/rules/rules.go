// ABOUTME: Ordered message transforms applied to the outgoing user message
// ABOUTME: Each rule is idempotent with respect to its own marker

package rules

import (
	"fmt"
	"strings"

	"github.com/2389/babel-gateway/internal/activity"
)

// Rule transforms the outgoing user message before it reaches the
// orchestrator. Rules must be no-ops when their marker is already present so
// that repeated application never duplicates content.
type Rule interface {
	Apply(message string, ctx activity.Context, profile map[string]any) string
}

// Chain applies rules in a fixed configured order. The chain output is the
// final prompt the agent sees.
type Chain struct {
	rules []Rule
}

// NewChain creates a rule chain that applies the given rules in order.
func NewChain(rules ...Rule) *Chain {
	return &Chain{rules: rules}
}

// Apply runs every rule over the message in order.
func (c *Chain) Apply(message string, ctx activity.Context, profile map[string]any) string {
	for _, rule := range c.rules {
		message = rule.Apply(message, ctx, profile)
	}
	return message
}

// UserInputLabelRule wraps the raw channel message so downstream
// instructions are clearly separated from user text.
type UserInputLabelRule struct {
	Label string
}

// NewUserInputLabelRule creates the rule with the default USER_INPUT label.
func NewUserInputLabelRule() *UserInputLabelRule {
	return &UserInputLabelRule{Label: "USER_INPUT"}
}

// Apply labels the message. Empty messages and already-labeled messages pass
// through unchanged.
func (r *UserInputLabelRule) Apply(message string, _ activity.Context, _ map[string]any) string {
	if message == "" {
		return message
	}

	prefix := r.Label + ": "
	if strings.HasPrefix(message, prefix) {
		return message
	}

	return fmt.Sprintf("%s'%s'", prefix, message)
}

// Candidate keys used when the context is missing a contact field and the
// profile has to supply it.
var (
	argEmailKeys = []string{"mail", "email", "userPrincipalName", "primaryEmail"}
	argPhoneKeys = []string{"mobilePhone", "mobile_phone", "mobile", "businessPhones", "phone", "telephoneNumber"}
)

// ArgumentsPrefixRule prepends an arguments block with the caller's identity
// fields so the agent can resolve tool calls without asking.
type ArgumentsPrefixRule struct{}

// NewArgumentsPrefixRule creates the rule.
func NewArgumentsPrefixRule() *ArgumentsPrefixRule {
	return &ArgumentsPrefixRule{}
}

// Apply prepends the arguments block unless it is already there.
func (r *ArgumentsPrefixRule) Apply(message string, ctx activity.Context, profile map[string]any) string {
	prefix := r.buildPrefix(ctx, profile)
	if prefix == "" {
		return message
	}

	if strings.HasPrefix(message, prefix) {
		return message
	}

	separator := ""
	if message != "" {
		separator = "\n\n"
	}
	return prefix + separator + message
}

// buildPrefix joins the available identity fields, each quoted, one per
// line. Only non-empty fields appear.
func (r *ArgumentsPrefixRule) buildPrefix(ctx activity.Context, profile map[string]any) string {
	email := ctx.UserEmail
	if email == "" {
		email = activity.ExtractFromMapping(profile, argEmailKeys)
	}
	phone := ctx.UserPhone
	if phone == "" {
		phone = activity.ExtractFromMapping(profile, argPhoneKeys)
	}

	var parts []string
	if email != "" {
		parts = append(parts, fmt.Sprintf("email:'%s'", email))
	}
	if ctx.UserAADObjectID != "" {
		parts = append(parts, fmt.Sprintf("aad_object_id:'%s'", ctx.UserAADObjectID))
	}
	if phone != "" {
		parts = append(parts, fmt.Sprintf("phone:'%s'", phone))
	}

	return strings.Join(parts, "\n")
}

// LocaleResponseRule appends a response-language instruction keyed off the
// caller's locale. Locales starting with es- force Spanish; everything else
// gets the English instruction.
type LocaleResponseRule struct {
	SpanishInstruction string
	EnglishInstruction string
}

// NewLocaleResponseRule creates the rule with the default instructions.
func NewLocaleResponseRule() *LocaleResponseRule {
	return &LocaleResponseRule{
		SpanishInstruction: "ALWAYS respond in Spanish. NEVER use Markdown table formats to reply.",
		EnglishInstruction: "ALWAYS respond in English. NEVER use Markdown table formats to reply.",
	}
}

// Apply appends the locale-specific instruction unless already present.
func (r *LocaleResponseRule) Apply(message string, ctx activity.Context, _ map[string]any) string {
	instruction := r.EnglishInstruction
	if strings.HasPrefix(strings.ToLower(ctx.Locale), "es-") {
		instruction = r.SpanishInstruction
	}

	if strings.Contains(message, instruction) {
		return message
	}

	separator := ""
	if message != "" {
		separator = "\n\n"
	}
	return message + separator + instruction
}
