// ABOUTME: Configuration loading and parsing for babel-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete babel-gateway configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Channel     ChannelConfig     `yaml:"channel"`
	Orchestrate OrchestrateConfig `yaml:"orchestrate"`
	Generation  GenerationConfig  `yaml:"generation"`
	Profile     ProfileConfig     `yaml:"profile"`
	Sessions    SessionsConfig    `yaml:"sessions"`
	Bot         BotConfig         `yaml:"bot"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds the inbound webhook listener configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// ChannelConfig holds chat-channel authentication configuration.
// When JWTSecret is empty, inbound request verification is disabled
// (useful for local testing against an emulator).
type ChannelConfig struct {
	AppID     string `yaml:"app_id"`
	TenantID  string `yaml:"tenant_id"`
	JWTSecret string `yaml:"jwt_secret"`
}

// OrchestrateConfig holds the conversational-agent (orchestrator) endpoint
// configuration
type OrchestrateConfig struct {
	BaseURL  string `yaml:"base_url"`
	AgentID  string `yaml:"agent_id"`
	APIKey   string `yaml:"api_key"`
	TokenURL string `yaml:"token_url"`

	Timeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// GenerationConfig holds the text-generation backend used for language
// control. The feature is enabled only when credentials are present.
type GenerationConfig struct {
	URL          string  `yaml:"url"`
	APIKey       string  `yaml:"api_key"`
	ProjectID    string  `yaml:"project_id"`
	ModelID      string  `yaml:"model_id"`
	MaxNewTokens int     `yaml:"max_new_tokens"`
	Temperature  float64 `yaml:"temperature"`
	TokenURL     string  `yaml:"token_url"`

	Timeout time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`
}

// Enabled reports whether language control is configured
func (g *GenerationConfig) Enabled() bool {
	return g.APIKey != "" && g.ProjectID != ""
}

// ProfileConfig holds the external user-directory lookup configuration.
// The lookup is optional; an empty base URL or secret disables it.
type ProfileConfig struct {
	BaseURL      string `yaml:"base_url"`
	ClientSecret string `yaml:"client_secret"`

	Timeout time.Duration `yaml:"-"`

	TimeoutRaw string `yaml:"timeout"`
}

// Enabled reports whether the external profile lookup is configured
func (p *ProfileConfig) Enabled() bool {
	return p.BaseURL != "" && p.ClientSecret != ""
}

// SessionsConfig holds TTL-store configuration for thread sessions and
// cached profiles
type SessionsConfig struct {
	Backend string `yaml:"backend"` // "memory" or "sqlite"
	Path    string `yaml:"path"`    // database path for the sqlite backend

	ThreadTTL  time.Duration `yaml:"-"`
	ProfileTTL time.Duration `yaml:"-"`

	ThreadTTLRaw  string `yaml:"thread_ttl"`
	ProfileTTLRaw string `yaml:"profile_ttl"`
}

// BotConfig holds turn-coordination behavior configuration
type BotConfig struct {
	DefaultLocale string `yaml:"default_locale"`

	// NotifyOnEmptyReply controls whether the fallback message is sent when
	// the orchestrator returns no reply. Off by default: the observed
	// production behavior is to stay silent.
	NotifyOnEmptyReply bool   `yaml:"notify_on_empty_reply"`
	FallbackMessage    string `yaml:"fallback_message"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults matching the original deployment of this service.
const (
	DefaultTokenURL      = "https://iam.cloud.ibm.com/identity/token"
	DefaultGenerationURL = "https://us-south.ml.cloud.ibm.com"
	DefaultModelID       = "ibm/granite-3-8b-instruct"
	DefaultLocale        = "es-ES"

	defaultHTTPAddr        = "0.0.0.0:3978"
	defaultMaxNewTokens    = 2000
	defaultTemperature     = 0.3
	defaultThreadTTL       = 15 * time.Minute
	defaultProfileTTL      = 24 * time.Hour
	defaultFallbackMessage = "Lo siento, no pude procesar tu mensaje en este momento."
)

// Load reads a configuration file from the given path and returns a parsed,
// validated Config. Environment variables in the format ${VAR_NAME} are
// expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration without validating it. The validation
// tooling uses this to report on incomplete configurations field by field.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables expand to the empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in zero-valued fields before validation
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = defaultHTTPAddr
	}
	if c.Orchestrate.TokenURL == "" {
		c.Orchestrate.TokenURL = DefaultTokenURL
	}
	if c.Generation.TokenURL == "" {
		c.Generation.TokenURL = DefaultTokenURL
	}
	if c.Generation.URL == "" {
		c.Generation.URL = DefaultGenerationURL
	}
	if c.Generation.ModelID == "" {
		c.Generation.ModelID = DefaultModelID
	}
	if c.Generation.MaxNewTokens == 0 {
		c.Generation.MaxNewTokens = defaultMaxNewTokens
	}
	if c.Generation.Temperature == 0 {
		c.Generation.Temperature = defaultTemperature
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = "memory"
	}
	if c.Bot.DefaultLocale == "" {
		c.Bot.DefaultLocale = DefaultLocale
	}
	if c.Bot.FallbackMessage == "" {
		c.Bot.FallbackMessage = defaultFallbackMessage
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and
// valid. Returns an error describing the first validation failure.
func (c *Config) Validate() error {
	if c.Orchestrate.BaseURL == "" {
		return fmt.Errorf("orchestrate.base_url is required")
	}
	if c.Orchestrate.AgentID == "" {
		return fmt.Errorf("orchestrate.agent_id is required")
	}
	if c.Orchestrate.APIKey == "" {
		return fmt.Errorf("orchestrate.api_key is required")
	}

	switch c.Sessions.Backend {
	case "memory":
	case "sqlite":
		if c.Sessions.Path == "" {
			return fmt.Errorf("sessions.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("sessions.backend must be %q or %q, got %q", "memory", "sqlite", c.Sessions.Backend)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "text", "json", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		raw  string
		dst  *time.Duration
		name string
		def  time.Duration
	}{
		{cfg.Orchestrate.TimeoutRaw, &cfg.Orchestrate.Timeout, "orchestrate.timeout", 60 * time.Second},
		{cfg.Generation.TimeoutRaw, &cfg.Generation.Timeout, "generation.timeout", 60 * time.Second},
		{cfg.Profile.TimeoutRaw, &cfg.Profile.Timeout, "profile.timeout", 10 * time.Second},
		{cfg.Sessions.ThreadTTLRaw, &cfg.Sessions.ThreadTTL, "sessions.thread_ttl", defaultThreadTTL},
		{cfg.Sessions.ProfileTTLRaw, &cfg.Sessions.ProfileTTL, "sessions.profile_ttl", defaultProfileTTL},
	}

	for _, f := range fields {
		if f.raw == "" {
			*f.dst = f.def
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
