// Package bot coordinates one conversation turn: it derives per-turn
// context from the inbound activity, enriches it with an optional directory
// profile, transforms the message through the rule chain, obtains the
// agent's reply from the orchestrator, applies language control, and hands
// the result to the channel responder.
//
// The coordinator owns the turn-level error policy. Recoverable problems
// (profile lookup failures, a missing reply, a language-control dead end)
// are logged and absorbed; only authentication failures and delivery
// failures surface to the caller.
package bot
