// ABOUTME: Client for the hosted text-generation endpoint used by the cascade
// ABOUTME: Transport failures yield an empty result so the cascade can move on

package langcontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/babel-gateway/internal/config"
)

const generationVersion = "2023-05-29"

// TokenSource supplies bearer tokens for the generation API.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Generator produces text for one prompt. An empty result with nil error is
// a failed attempt the cascade tolerates; an error aborts the turn (token
// failures only).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// WatsonxClient implements Generator against the watsonx.ai text generation
// endpoint.
type WatsonxClient struct {
	url          string
	modelID      string
	projectID    string
	maxNewTokens int
	temperature  float64
	tokens       TokenSource
	client       *http.Client
	logger       *slog.Logger
}

// NewWatsonxClient creates a generation client from configuration.
func NewWatsonxClient(cfg config.GenerationConfig, tokens TokenSource, logger *slog.Logger) *WatsonxClient {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &WatsonxClient{
		url:          strings.TrimRight(cfg.URL, "/"),
		modelID:      cfg.ModelID,
		projectID:    cfg.ProjectID,
		maxNewTokens: cfg.MaxNewTokens,
		temperature:  cfg.Temperature,
		tokens:       tokens,
		client:       &http.Client{Timeout: timeout},
		logger:       logger.With("component", "generation"),
	}
}

// generationRequest is the text generation request body.
type generationRequest struct {
	Input      string               `json:"input"`
	Parameters generationParameters `json:"parameters"`
	ModelID    string               `json:"model_id"`
	ProjectID  string               `json:"project_id"`
}

type generationParameters struct {
	DecodingMethod    string  `json:"decoding_method"`
	MaxNewTokens      int     `json:"max_new_tokens"`
	Temperature       float64 `json:"temperature"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

type generationResponse struct {
	Results []struct {
		GeneratedText string `json:"generated_text"`
	} `json:"results"`
}

// Generate runs one prompt through the generation model and returns the
// trimmed generated text. HTTP and transport failures are logged and yield
// an empty result; only token failures return an error.
func (w *WatsonxClient) Generate(ctx context.Context, prompt string) (string, error) {
	token, err := w.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("getting generation token: %w", err)
	}

	body, err := json.Marshal(generationRequest{
		Input: prompt,
		Parameters: generationParameters{
			DecodingMethod:    "greedy",
			MaxNewTokens:      w.maxNewTokens,
			Temperature:       w.temperature,
			RepetitionPenalty: 1.1,
		},
		ModelID:   w.modelID,
		ProjectID: w.projectID,
	})
	if err != nil {
		return "", fmt.Errorf("encoding generation request: %w", err)
	}

	url := fmt.Sprintf("%s/ml/v1/text/generation?version=%s", w.url, generationVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generation request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	w.logger.Debug("calling generation model", "model_id", w.modelID)

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Error("generation request failed", "error", err)
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		w.logger.Error("generation returned an error status",
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(detail)))
		return "", nil
	}

	var result generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		w.logger.Error("decoding generation response failed", "error", err)
		return "", nil
	}
	if len(result.Results) == 0 {
		return "", nil
	}

	return strings.TrimSpace(result.Results[0].GeneratedText), nil
}
