// Package config loads the optional HCL configuration file. Every setting
// has a default, so running without a file (or with an empty one) works.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/alterflow/internal/llm"
	"github.com/vk/alterflow/internal/session"
)

// Config is the decoded application configuration.
type Config struct {
	Server  Server
	LLM     LLM
	History History
	Session Session
}

// Server configures the HTTP listener.
type Server struct {
	Listen      string
	CORSOrigins []string
}

// LLM configures the generation backend. The API key is read from the
// environment variable named by APIKeyEnv, never from the file itself.
type LLM struct {
	Model       string
	Temperature float64
	MaxTokens   int
	APIKeyEnv   string
	BaseURL     string
}

// History configures the sqlite generation log.
type History struct {
	Path    string
	MaxRows int
}

// Session configures the in-memory upload registry.
type Session struct {
	MaxSessions int
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Listen:      ":8080",
			CORSOrigins: []string{"*"},
		},
		LLM: LLM{
			Model:       llm.DefaultModel,
			Temperature: 0,
			MaxTokens:   4096,
			APIKeyEnv:   "OPENAI_API_KEY",
		},
		History: History{
			Path:    "alterflow.db",
			MaxRows: 200,
		},
		Session: Session{
			MaxSessions: session.DefaultMaxSessions,
		},
	}
}

// hclFile mirrors the file structure for decoding. All blocks and attributes
// are optional.
type hclFile struct {
	Server  *hclServer  `hcl:"server,block"`
	LLM     *hclLLM     `hcl:"llm,block"`
	History *hclHistory `hcl:"history,block"`
	Session *hclSession `hcl:"session,block"`
}

type hclServer struct {
	Listen      *string   `hcl:"listen,optional"`
	CORSOrigins *[]string `hcl:"cors_origins,optional"`
}

type hclLLM struct {
	Model       *string  `hcl:"model,optional"`
	Temperature *float64 `hcl:"temperature,optional"`
	MaxTokens   *int     `hcl:"max_tokens,optional"`
	APIKeyEnv   *string  `hcl:"api_key_env,optional"`
	BaseURL     *string  `hcl:"base_url,optional"`
}

type hclHistory struct {
	Path    *string `hcl:"path,optional"`
	MaxRows *int    `hcl:"max_rows,optional"`
}

type hclSession struct {
	MaxSessions *int `hcl:"max_sessions,optional"`
}

// Load parses an HCL config file and overlays it on the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	hclF, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(hclF.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if b := parsed.Server; b != nil {
		overlay(&cfg.Server.Listen, b.Listen)
		overlay(&cfg.Server.CORSOrigins, b.CORSOrigins)
	}
	if b := parsed.LLM; b != nil {
		overlay(&cfg.LLM.Model, b.Model)
		overlay(&cfg.LLM.Temperature, b.Temperature)
		overlay(&cfg.LLM.MaxTokens, b.MaxTokens)
		overlay(&cfg.LLM.APIKeyEnv, b.APIKeyEnv)
		overlay(&cfg.LLM.BaseURL, b.BaseURL)
	}
	if b := parsed.History; b != nil {
		overlay(&cfg.History.Path, b.Path)
		overlay(&cfg.History.MaxRows, b.MaxRows)
	}
	if b := parsed.Session; b != nil {
		overlay(&cfg.Session.MaxSessions, b.MaxSessions)
	}
	return cfg, nil
}

// APIKey resolves the configured API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

func overlay[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
