// ABOUTME: The language-control cascade: detect target, then force the reply into it
// ABOUTME: Bounded at seven generation calls per turn, always returns a best effort

package langcontrol

import (
	"context"
	"log/slog"
)

// maxTranslateRetries bounds each translation cascade. With one primary
// call, one cascade over the primary text, and one over the original reply,
// a turn issues at most 1 + 3 + 3 = 7 generation calls.
const maxTranslateRetries = 3

// Controller forces the final reply into the caller's language, independent
// of what language the upstream agent chose.
type Controller struct {
	detector  Detector
	generator Generator
	logger    *slog.Logger
}

// New creates a language controller.
func New(detector Detector, generator Generator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		detector:  detector,
		generator: generator,
		logger:    logger.With("component", "langcontrol"),
	}
}

// TargetLanguage decides the language the reply must be delivered in.
// Spanish markers in the user message win outright; otherwise a confident
// detection wins; otherwise the locale decides.
func (c *Controller) TargetLanguage(userMessage, locale string) Language {
	if HasSpanishMarker(userMessage) {
		return Spanish
	}

	det := c.detector.Detect(userMessage)
	if det.Confidence >= confidenceThreshold {
		return det.Language
	}

	return FromLocale(locale)
}

// Control returns the reply rewritten into the target language derived from
// the user message and locale. An empty result means no generation ever
// succeeded; the caller should fall back to the unmodified reply. The only
// error path is a token failure.
func (c *Controller) Control(ctx context.Context, userMessage, reply, locale string) (string, error) {
	target := c.TargetLanguage(userMessage, locale)
	c.logger.Info("applying language control", "target", target.Name, "locale", locale)

	primary, err := c.attempt(ctx, primaryPrompt(userMessage, reply, target))
	if err != nil {
		return "", err
	}
	if primary != "" && c.inTarget(primary, target) {
		return primary, nil
	}

	if primary != "" {
		c.logger.Warn("primary generation not in target language, retrying", "target", target.Name)
		out, accepted, err := c.translateCascade(ctx, primary, target)
		if err != nil {
			return "", err
		}
		if accepted {
			return out, nil
		}
	}

	// Last chance: run the same cascade against the original upstream reply
	// instead of the possibly corrupted primary text.
	c.logger.Warn("retries on generated text failed, translating the original reply", "target", target.Name)
	out, accepted, err := c.translateCascade(ctx, reply, target)
	if err != nil {
		return "", err
	}
	if accepted || out != "" {
		return out, nil
	}

	// Best effort: the primary text if we have one, otherwise nothing.
	return primary, nil
}

// translateCascade issues up to maxTranslateRetries translation prompts of
// escalating strictness against the source text, stopping at the first
// accepted result. When nothing is accepted it returns the last non-empty
// output as the best effort.
func (c *Controller) translateCascade(ctx context.Context, source string, target Language) (text string, accepted bool, err error) {
	var lastNonEmpty string
	for attempt := 1; attempt <= maxTranslateRetries; attempt++ {
		out, err := c.attempt(ctx, retryPrompt(attempt, source, target))
		if err != nil {
			return "", false, err
		}
		if out == "" {
			continue
		}
		if c.inTarget(out, target) {
			return out, true, nil
		}
		c.logger.Debug("translation attempt rejected", "attempt", attempt, "target", target.Name)
		lastNonEmpty = out
	}
	return lastNonEmpty, false, nil
}

// attempt runs one generation call and sanitizes its output.
func (c *Controller) attempt(ctx context.Context, prompt string) (string, error) {
	out, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return Sanitize(out), nil
}

// inTarget reports whether the text is acceptable as target-language output:
// either the target is Spanish and the text carries a Spanish marker, or the
// detector's top result matches the target.
func (c *Controller) inTarget(text string, target Language) bool {
	if target.Is(Spanish) && HasSpanishMarker(text) {
		return true
	}

	det := c.detector.Detect(text)
	return det.Confidence > 0 && det.Language.Is(target)
}
