// Package langcontrol guarantees the final reply is in the caller's
// language, even when the upstream agent answers in the wrong one.
//
// # Target decision
//
// The target language is derived per turn, in order:
//
//  1. Spanish marker heuristic: a fixed set of Spanish-specific tokens
//     (inverted punctuation, interrogatives, domain words) in the user
//     message forces Spanish regardless of detector output.
//  2. Statistical detection (lingua-go) over Spanish, English, Portuguese,
//     and French, applied when confidence reaches 0.70. Texts shorter than
//     the minimum length never reach this bar.
//  3. Locale fallback by prefix (es-/en-/pt-/fr-), defaulting to Spanish.
//
// # Cascade
//
// One validate-or-translate prompt produces the primary candidate. If the
// acceptance check rejects it, up to three translation prompts of escalating
// strictness run against the primary text, then against the original
// upstream reply. The first accepted candidate wins; if none is accepted the
// last non-empty output is returned as a best effort. Every output is
// sanitized first: prompt-echo artifacts are truncated and a leading
// language-code prefix stripped.
//
// The cascade is total: at most seven generation calls per turn, no
// unbounded loops, and a full backend outage degrades to the unmodified
// upstream reply (the caller falls back when the result is empty). Only a
// token-acquisition failure aborts the turn.
package langcontrol
