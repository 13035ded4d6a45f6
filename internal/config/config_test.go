// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Covers defaults, duration parsing, and required-field errors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const minimalConfig = `
orchestrate:
  base_url: "https://api.example.com/instances/abc"
  agent_id: "agent-1"
  api_key: "secret"
`

func TestLoad_Minimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/instances/abc", cfg.Orchestrate.BaseURL)
	assert.Equal(t, "agent-1", cfg.Orchestrate.AgentID)

	// Defaults
	assert.Equal(t, "0.0.0.0:3978", cfg.Server.HTTPAddr)
	assert.Equal(t, DefaultTokenURL, cfg.Orchestrate.TokenURL)
	assert.Equal(t, DefaultGenerationURL, cfg.Generation.URL)
	assert.Equal(t, DefaultModelID, cfg.Generation.ModelID)
	assert.Equal(t, 2000, cfg.Generation.MaxNewTokens)
	assert.InDelta(t, 0.3, cfg.Generation.Temperature, 0.0001)
	assert.Equal(t, "memory", cfg.Sessions.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Sessions.ThreadTTL)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.ProfileTTL)
	assert.Equal(t, "es-ES", cfg.Bot.DefaultLocale)
	assert.False(t, cfg.Bot.NotifyOnEmptyReply)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_BABEL_API_KEY", "expanded-key")

	cfg, err := Load(writeConfig(t, `
orchestrate:
  base_url: "https://api.example.com"
  agent_id: "agent-1"
  api_key: "${TEST_BABEL_API_KEY}"
`))
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.Orchestrate.APIKey)
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	_, err := Load(writeConfig(t, `
orchestrate:
  base_url: "https://api.example.com"
  agent_id: "agent-1"
  api_key: "${TEST_BABEL_DOES_NOT_EXIST}"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orchestrate.api_key is required")
}

func TestLoad_Durations(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
sessions:
  backend: "memory"
  thread_ttl: "900s"
  profile_ttl: "86400s"
generation:
  timeout: "90s"
`))
	require.NoError(t, err)
	assert.Equal(t, 900*time.Second, cfg.Sessions.ThreadTTL)
	assert.Equal(t, 86400*time.Second, cfg.Sessions.ProfileTTL)
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sessions:
  thread_ttl: "15 minutes"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions.thread_ttl")
}

func TestLoad_SQLiteBackendRequiresPath(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sessions:
  backend: "sqlite"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions.path is required")
}

func TestLoad_UnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, minimalConfig+`
sessions:
  backend: "redis"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions.backend")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestGenerationEnabled(t *testing.T) {
	g := GenerationConfig{}
	assert.False(t, g.Enabled())

	g.APIKey = "k"
	assert.False(t, g.Enabled())

	g.ProjectID = "p"
	assert.True(t, g.Enabled())
}

func TestProfileEnabled(t *testing.T) {
	p := ProfileConfig{BaseURL: "https://dir.example.com"}
	assert.False(t, p.Enabled())

	p.ClientSecret = "s"
	assert.True(t, p.Enabled())
}

func TestParse_DoesNotValidate(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  http_addr: \":8080\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Empty(t, cfg.Orchestrate.APIKey)
}
