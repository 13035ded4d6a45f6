// ABOUTME: HTTP server for the inbound channel webhook
// ABOUTME: Verifies, decodes, and dispatches activities; recovers per-turn failures with an apology

package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/babel-gateway/internal/activity"
	"github.com/2389/babel-gateway/internal/bot"
)

// apologyMessage is sent when turn processing fails after the activity was
// accepted. Delivery failures of the apology itself are only logged.
const apologyMessage = "Sorry, something went wrong while processing your message."

// TurnHandler processes one decoded activity.
type TurnHandler interface {
	HandleTurn(ctx context.Context, act *activity.Activity, responder bot.Responder) error
}

// Server is the inbound webhook listener.
type Server struct {
	handler  TurnHandler
	verifier *Verifier // nil disables verification
	client   *http.Client
	logger   *slog.Logger

	// newResponder is swappable for tests.
	newResponder func(*activity.Activity) bot.Responder
}

// NewServer creates the webhook server. verifier may be nil, which disables
// inbound authentication.
func NewServer(handler TurnHandler, verifier *Verifier, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		handler:  handler,
		verifier: verifier,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger.With("component", "webhook"),
	}
	s.newResponder = func(act *activity.Activity) bot.Responder {
		return newChannelResponder(act, s.client)
	}
	return s
}

// Routes returns the HTTP mux for the webhook endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", s.handleMessages)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.verifier != nil {
		token, ok := bearerToken(r)
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		if err := s.verifier.Verify(token); err != nil {
			s.logger.Warn("rejecting request with invalid token", "error", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	var act activity.Activity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		http.Error(w, "malformed activity", http.StatusBadRequest)
		return
	}

	responder := s.newResponder(&act)
	if err := s.handler.HandleTurn(r.Context(), &act, responder); err != nil {
		s.logger.Error("turn processing failed",
			"error", err,
			"conversation_id", act.Conversation.ID,
			"user_id", act.From.ID,
		)
		if notifyErr := responder.SendText(r.Context(), apologyMessage); notifyErr != nil {
			s.logger.Error("notifying the user about the failure also failed",
				"error", notifyErr,
				"conversation_id", act.Conversation.ID,
			)
		}
	}

	// The channel only needs to know the activity was accepted.
	w.WriteHeader(http.StatusOK)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}
