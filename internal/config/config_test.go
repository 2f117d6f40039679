package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alterflow.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, "OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
}

func TestLoad_EmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesSelectedValues(t *testing.T) {
	path := writeConfig(t, `
server {
  listen       = ":9090"
  cors_origins = ["https://example.com"]
}

llm {
  model       = "gpt-4o-mini"
  temperature = 0.2
}

history {
  path = "/tmp/alterflow.db"
}

session {
  max_sessions = 8
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, "/tmp/alterflow.db", cfg.History.Path)
	assert.Equal(t, 8, cfg.Session.MaxSessions)

	// Untouched settings keep their defaults.
	assert.Equal(t, 4096, cfg.LLM.MaxTokens)
	assert.Equal(t, 200, cfg.History.MaxRows)
}

func TestLoad_RejectsMalformedFile(t *testing.T) {
	_, err := Load(writeConfig(t, `server {`))
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownAttribute(t *testing.T) {
	_, err := Load(writeConfig(t, `
llm {
  api_key = "sk-plaintext"
}
`))
	assert.Error(t, err)
}

func TestConfig_APIKeyFromEnv(t *testing.T) {
	t.Setenv("ALTERFLOW_TEST_KEY", "sk-test")

	cfg := Default()
	cfg.LLM.APIKeyEnv = "ALTERFLOW_TEST_KEY"
	assert.Equal(t, "sk-test", cfg.APIKey())
}
