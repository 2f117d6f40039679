// Package llm wraps the langchaingo model client used for all generation
// calls. The convert pipelines depend on the small Generator interface, so
// tests substitute a canned model and never touch the network.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/vk/alterflow/internal/ctxlog"
)

// DefaultModel is used when the configuration names no model.
const DefaultModel = "gpt-4o"

// Generator produces model output for a fully rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config carries the provider settings for a client.
type Config struct {
	// APIKey authenticates against the OpenAI-compatible endpoint.
	APIKey string
	// Model names the chat model; empty means DefaultModel.
	Model string
	// BaseURL overrides the API endpoint, for proxies and compatible
	// providers. Empty uses the provider default.
	BaseURL string
	// Temperature is passed on every call. Code generation runs at 0.
	Temperature float64
	// MaxTokens caps the completion length; 0 leaves the provider default.
	MaxTokens int
}

// Client is the langchaingo-backed Generator.
type Client struct {
	model       llms.Model
	name        string
	temperature float64
	maxTokens   int
}

// New builds a client for the configured OpenAI-compatible endpoint.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	name := cfg.Model
	if name == "" {
		name = DefaultModel
	}

	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(name),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("llm: create model client: %w", err)
	}
	return NewWithModel(model, name, cfg.Temperature, cfg.MaxTokens), nil
}

// NewWithModel wraps an existing langchaingo model. Tests inject fakes here.
func NewWithModel(model llms.Model, name string, temperature float64, maxTokens int) *Client {
	return &Client{model: model, name: name, temperature: temperature, maxTokens: maxTokens}
}

// Generate runs one completion for the prompt and returns the trimmed text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("LLM call starting.", "model", c.name, "prompt_len", len(prompt))

	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if c.maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.maxTokens))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("llm: generate: %w", err)
	}

	out = strings.TrimSpace(out)
	logger.Debug("LLM call finished.", "model", c.name, "output_len", len(out))
	return out, nil
}
