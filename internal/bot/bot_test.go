// ABOUTME: Tests for the turn coordinator
// ABOUTME: Exercises the full pipeline with stubbed collaborators

package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/babel-gateway/internal/activity"
	"github.com/2389/babel-gateway/internal/config"
	"github.com/2389/babel-gateway/internal/rules"
)

type fakeOrchestrator struct {
	reply       string
	err         error
	gotMessage  string
	gotConvID   string
	gotContext  map[string]any
	timesCalled int
}

func (f *fakeOrchestrator) Complete(_ context.Context, conversationID, message string, turnContext map[string]any) (string, error) {
	f.timesCalled++
	f.gotConvID = conversationID
	f.gotMessage = message
	f.gotContext = turnContext
	return f.reply, f.err
}

type fakeProfiles struct {
	profile map[string]any
	err     error
	gotID   string
}

func (f *fakeProfiles) Lookup(_ context.Context, objectID string) (map[string]any, error) {
	f.gotID = objectID
	return f.profile, f.err
}

type fakeLanguage struct {
	out       string
	err       error
	gotReply  string
	gotLocale string
}

func (f *fakeLanguage) Control(_ context.Context, _, reply, locale string) (string, error) {
	f.gotReply = reply
	f.gotLocale = locale
	return f.out, f.err
}

type recordingResponder struct {
	texts     []string
	typings   int
	typingErr error
	sendErr   error
}

func (r *recordingResponder) SendText(_ context.Context, text string) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingResponder) SendTyping(context.Context) error {
	r.typings++
	return r.typingErr
}

func messageActivity(text string) *activity.Activity {
	return &activity.Activity{
		Type:         activity.TypeMessage,
		Text:         text,
		Locale:       "es-ES",
		Conversation: activity.Conversation{ID: "conv-1"},
		From: activity.Account{
			ID:          "user-1",
			Name:        "Ana",
			AADObjectID: "aad-1",
		},
	}
}

func newCoordinator(orch *fakeOrchestrator, profiles ProfileLookup, language LanguageController, cfg config.BotConfig) *Coordinator {
	builder := activity.NewBuilder("es-ES")
	chain := rules.NewChain(rules.NewUserInputLabelRule())
	return New(builder, chain, orch, profiles, language, cfg, nil)
}

func TestHandleTurn_IgnoresNonMessageActivities(t *testing.T) {
	orch := &fakeOrchestrator{}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, nil, config.BotConfig{})

	act := messageActivity("hola")
	act.Type = activity.TypeTyping

	require.NoError(t, c.HandleTurn(context.Background(), act, responder))
	assert.Zero(t, orch.timesCalled)
	assert.Zero(t, responder.typings)
	assert.Empty(t, responder.texts)
}

func TestHandleTurn_IgnoresEmptyText(t *testing.T) {
	orch := &fakeOrchestrator{}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, nil, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("   "), responder))
	assert.Zero(t, orch.timesCalled)
}

func TestHandleTurn_HappyPath(t *testing.T) {
	orch := &fakeOrchestrator{reply: "¡Hola Ana!"}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, nil, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))

	assert.Equal(t, 1, responder.typings)
	assert.Equal(t, "conv-1", orch.gotConvID)
	assert.Equal(t, "USER_INPUT: 'hola'", orch.gotMessage)
	assert.Equal(t, []string{"¡Hola Ana!"}, responder.texts)
}

func TestHandleTurn_ProfileEnrichesContext(t *testing.T) {
	orch := &fakeOrchestrator{reply: "ok"}
	profiles := &fakeProfiles{profile: map[string]any{"mail": "ana@example.com"}}
	responder := &recordingResponder{}
	c := newCoordinator(orch, profiles, nil, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))

	assert.Equal(t, "aad-1", profiles.gotID)

	channel, ok := orch.gotContext["channel"].(map[string]any)
	require.True(t, ok)
	teams, ok := channel["teams"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", teams["profile_mail"])
}

func TestHandleTurn_ProfileFailureIsTolerated(t *testing.T) {
	orch := &fakeOrchestrator{reply: "ok"}
	profiles := &fakeProfiles{err: errors.New("directory down")}
	responder := &recordingResponder{}
	c := newCoordinator(orch, profiles, nil, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))
	assert.Equal(t, []string{"ok"}, responder.texts)
}

func TestHandleTurn_EmptyReplyIsSilentByDefault(t *testing.T) {
	orch := &fakeOrchestrator{reply: ""}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, nil, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))
	assert.Empty(t, responder.texts)
}

func TestHandleTurn_EmptyReplySendsFallbackWhenConfigured(t *testing.T) {
	orch := &fakeOrchestrator{reply: ""}
	responder := &recordingResponder{}
	cfg := config.BotConfig{
		NotifyOnEmptyReply: true,
		FallbackMessage:    "Lo siento, no pude procesar tu mensaje en este momento.",
	}
	c := newCoordinator(orch, nil, nil, cfg)

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))
	assert.Equal(t, []string{cfg.FallbackMessage}, responder.texts)
}

func TestHandleTurn_LanguageControlRewritesReply(t *testing.T) {
	orch := &fakeOrchestrator{reply: "Hello Ana!"}
	language := &fakeLanguage{out: "¡Hola Ana!"}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, language, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))

	assert.Equal(t, "Hello Ana!", language.gotReply)
	assert.Equal(t, "es-ES", language.gotLocale)
	assert.Equal(t, []string{"¡Hola Ana!"}, responder.texts)
}

func TestHandleTurn_LanguageControlDeadEndDeliversOriginal(t *testing.T) {
	orch := &fakeOrchestrator{reply: "Hello Ana!"}
	language := &fakeLanguage{out: ""}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, language, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))
	assert.Equal(t, []string{"Hello Ana!"}, responder.texts)
}

func TestHandleTurn_LanguageControlErrorPropagates(t *testing.T) {
	orch := &fakeOrchestrator{reply: "Hello"}
	language := &fakeLanguage{err: errors.New("token rejected")}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, language, config.BotConfig{})

	err := c.HandleTurn(context.Background(), messageActivity("hola"), responder)
	require.Error(t, err)
	assert.Empty(t, responder.texts)
}

func TestHandleTurn_OrchestratorErrorPropagates(t *testing.T) {
	orch := &fakeOrchestrator{err: errors.New("401 unauthorized")}
	responder := &recordingResponder{}
	c := newCoordinator(orch, nil, nil, config.BotConfig{})

	err := c.HandleTurn(context.Background(), messageActivity("hola"), responder)
	require.Error(t, err)
	assert.Empty(t, responder.texts)
}

func TestHandleTurn_TypingFailureDoesNotAbortTurn(t *testing.T) {
	orch := &fakeOrchestrator{reply: "ok"}
	responder := &recordingResponder{typingErr: errors.New("channel hiccup")}
	c := newCoordinator(orch, nil, nil, config.BotConfig{})

	require.NoError(t, c.HandleTurn(context.Background(), messageActivity("hola"), responder))
	assert.Equal(t, []string{"ok"}, responder.texts)
}
