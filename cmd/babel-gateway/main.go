// ABOUTME: Entry point for the babel-gateway webhook server
// ABOUTME: Bridges a chat channel to a hosted conversational agent with language control

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/2389/babel-gateway/internal/activity"
	"github.com/2389/babel-gateway/internal/bot"
	"github.com/2389/babel-gateway/internal/config"
	"github.com/2389/babel-gateway/internal/iam"
	"github.com/2389/babel-gateway/internal/langcontrol"
	"github.com/2389/babel-gateway/internal/orchestrate"
	"github.com/2389/babel-gateway/internal/profile"
	"github.com/2389/babel-gateway/internal/rules"
	"github.com/2389/babel-gateway/internal/session"
	"github.com/2389/babel-gateway/internal/webhook"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _           _          _
| |__   __ _| |__   ___| |      __ _  __ _| |_ _____      ____ _ _   _
| '_ \ / _' | '_ \ / _ \ |_____/ _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| |_) | (_| | |_) |  __/ |_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
|_.__/ \__,_|_.__/ \___|_|      \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                                |___/                             |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: BABEL_CONFIG env var > ./babel.yaml > ~/.config/babel/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("BABEL_CONFIG"); envPath != "" {
		return envPath
	}

	if _, err := os.Stat("babel.yaml"); err == nil {
		return "babel.yaml"
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "babel.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "babel", "gateway.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: babel-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve   Start the webhook server")
		fmt.Println("  health  Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("Sessions:  %s\n", cfg.Sessions.Backend)
	green.Print("    ▶ ")
	fmt.Printf("Language:  %s\n", featureState(cfg.Generation.Enabled()))
	green.Print("    ▶ ")
	fmt.Printf("Profiles:  %s\n", featureState(cfg.Profile.Enabled()))
	fmt.Println()

	logger.Info("starting babel-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"sessions_backend", cfg.Sessions.Backend,
	)

	server, closeStore, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: server.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// buildServer wires the turn pipeline in dependency order: stores, token
// sources, clients, coordinator, webhook.
func buildServer(cfg *config.Config, logger *slog.Logger) (*webhook.Server, func(), error) {
	var store session.Store
	closeStore := func() {}
	switch cfg.Sessions.Backend {
	case "sqlite":
		sqliteStore, err := session.NewSQLiteStore(cfg.Sessions.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening session store: %w", err)
		}
		store = sqliteStore
		closeStore = func() {
			if err := sqliteStore.Close(); err != nil {
				logger.Warn("closing session store failed", "error", err)
			}
		}
	default:
		memStore := session.NewMemoryStore()
		store = memStore
		closeStore = memStore.Close
	}

	threads := session.NewThreadSessions(store, cfg.Sessions.ThreadTTL, logger)
	orchTokens := iam.NewTokenSource(cfg.Orchestrate.TokenURL, cfg.Orchestrate.APIKey, logger)
	orchestrator := orchestrate.New(
		cfg.Orchestrate.BaseURL,
		cfg.Orchestrate.AgentID,
		cfg.Orchestrate.Timeout,
		orchTokens,
		threads,
		logger,
	)

	var profiles bot.ProfileLookup
	if cfg.Profile.Enabled() {
		cache := session.NewProfileCache(store, cfg.Sessions.ProfileTTL, logger)
		profiles = profile.New(
			cfg.Profile.BaseURL,
			cfg.Profile.ClientSecret,
			cfg.Profile.Timeout,
			cache,
			logger,
		)
	}

	var language bot.LanguageController
	if cfg.Generation.Enabled() {
		genTokens := iam.NewTokenSource(cfg.Generation.TokenURL, cfg.Generation.APIKey, logger)
		generator := langcontrol.NewWatsonxClient(cfg.Generation, genTokens, logger)
		language = langcontrol.New(langcontrol.NewLinguaDetector(), generator, logger)
	}

	builder := activity.NewBuilder(cfg.Bot.DefaultLocale)
	chain := rules.NewChain(
		rules.NewUserInputLabelRule(),
		rules.NewArgumentsPrefixRule(),
		rules.NewLocaleResponseRule(),
	)

	coordinator := bot.New(builder, chain, orchestrator, profiles, language, cfg.Bot, logger)

	var verifier *webhook.Verifier
	if cfg.Channel.JWTSecret != "" {
		verifier = webhook.NewVerifier([]byte(cfg.Channel.JWTSecret), cfg.Channel.AppID)
	}

	return webhook.NewServer(coordinator, verifier, logger), closeStore, nil
}

func featureState(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	url := fmt.Sprintf("http://%s/healthz", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
