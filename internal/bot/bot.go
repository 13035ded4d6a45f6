// ABOUTME: Turn coordination: one inbound message through profile, rules, orchestrator, and language control
// ABOUTME: Optional collaborators (profile lookup, language control) are nil-tolerant

package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/2389/babel-gateway/internal/activity"
	"github.com/2389/babel-gateway/internal/config"
	"github.com/2389/babel-gateway/internal/rules"
)

// Orchestrator produces the agent's reply for one turn.
type Orchestrator interface {
	Complete(ctx context.Context, conversationID, message string, turnContext map[string]any) (string, error)
}

// ProfileLookup resolves a directory profile for a channel user. A nil map
// with nil error means no profile is available.
type ProfileLookup interface {
	Lookup(ctx context.Context, objectID string) (map[string]any, error)
}

// LanguageController rewrites a reply into the turn's target language. An
// empty result means the controller could not produce anything usable and
// the original reply should be delivered.
type LanguageController interface {
	Control(ctx context.Context, userMessage, reply, locale string) (string, error)
}

// Responder is the outbound boundary back to the chat channel.
type Responder interface {
	SendText(ctx context.Context, text string) error
	SendTyping(ctx context.Context) error
}

// Coordinator drives a single conversation turn end to end.
type Coordinator struct {
	builder      *activity.Builder
	rules        *rules.Chain
	orchestrator Orchestrator
	profiles     ProfileLookup      // nil when the directory lookup is not configured
	language     LanguageController // nil when language control is not configured
	cfg          config.BotConfig
	logger       *slog.Logger
}

// New creates a turn coordinator. profiles and language may be nil; the
// corresponding steps are skipped.
func New(builder *activity.Builder, chain *rules.Chain, orchestrator Orchestrator, profiles ProfileLookup, language LanguageController, cfg config.BotConfig, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		builder:      builder,
		rules:        chain,
		orchestrator: orchestrator,
		profiles:     profiles,
		language:     language,
		cfg:          cfg,
		logger:       logger.With("component", "bot"),
	}
}

// HandleTurn processes one inbound activity. Non-message activities and
// empty messages are ignored. Errors returned here are the ones the caller
// should apologize for (orchestrator auth failures, delivery failures);
// everything recoverable is handled in place.
func (c *Coordinator) HandleTurn(ctx context.Context, act *activity.Activity, responder Responder) error {
	if act.Type != activity.TypeMessage {
		c.logger.Debug("ignoring non-message activity", "type", act.Type)
		return nil
	}
	if strings.TrimSpace(act.Text) == "" {
		c.logger.Debug("ignoring empty message", "conversation_id", act.Conversation.ID)
		return nil
	}

	logger := c.logger.With(
		"turn_id", uuid.NewString(),
		"conversation_id", act.Conversation.ID,
		"user_id", act.From.ID,
	)
	logger.Info("processing turn", "locale", act.Locale)

	if err := responder.SendTyping(ctx); err != nil {
		logger.Warn("sending typing indicator failed", "error", err)
	}

	turnCtx := c.builder.FromActivity(act)

	var profile map[string]any
	if c.profiles != nil && turnCtx.UserAADObjectID != "" {
		var err error
		profile, err = c.profiles.Lookup(ctx, turnCtx.UserAADObjectID)
		if err != nil {
			logger.Warn("profile lookup failed, continuing without it", "error", err)
			profile = nil
		}
	}
	turnCtx = c.builder.MergeProfileData(turnCtx, profile)

	orchestrateCtx := c.builder.OrchestrateContext(turnCtx, profile)
	message := c.rules.Apply(turnCtx.Message, turnCtx, profile)

	reply, err := c.orchestrator.Complete(ctx, turnCtx.ConversationID, message, orchestrateCtx)
	if err != nil {
		return fmt.Errorf("completing turn: %w", err)
	}
	if reply == "" {
		logger.Warn("orchestrator returned no reply")
		if c.cfg.NotifyOnEmptyReply && c.cfg.FallbackMessage != "" {
			return responder.SendText(ctx, c.cfg.FallbackMessage)
		}
		return nil
	}

	if c.language != nil {
		controlled, err := c.language.Control(ctx, turnCtx.Message, reply, turnCtx.Locale)
		if err != nil {
			return fmt.Errorf("applying language control: %w", err)
		}
		if controlled != "" {
			reply = controlled
		} else {
			logger.Warn("language control produced nothing, delivering the original reply")
		}
	}

	if err := responder.SendText(ctx, reply); err != nil {
		return fmt.Errorf("delivering reply: %w", err)
	}
	logger.Info("turn completed")
	return nil
}
