package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/alterflow/internal/api"
	"github.com/vk/alterflow/internal/cli"
	"github.com/vk/alterflow/internal/config"
	"github.com/vk/alterflow/internal/history"
	"github.com/vk/alterflow/internal/llm"
	"github.com/vk/alterflow/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	opts     *cli.Options
	cfg      *config.Config
	sessions *session.Registry
	hist     *history.Store
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, loaded
// configuration, and opened history store.
func New(outW io.Writer, logW io.Writer, opts *cli.Options) (*App, error) {
	logger := newLogger(opts.LogLevel, opts.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	logger.Debug("Configuration loaded.", "listen", cfg.Server.Listen, "model", cfg.LLM.Model)

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		opts:     opts,
		cfg:      cfg,
		sessions: session.NewRegistry(cfg.Session.MaxSessions),
		hist:     hist,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	return a.hist.Close()
}

// newGenerator builds the LLM backend for one conversion. A per-request key
// takes precedence over the configured environment variable.
func (a *App) newGenerator(apiKey string) (llm.Generator, error) {
	if apiKey == "" {
		apiKey = a.cfg.APIKey()
	}
	return llm.New(llm.Config{
		APIKey:      apiKey,
		Model:       a.cfg.LLM.Model,
		BaseURL:     a.cfg.LLM.BaseURL,
		Temperature: a.cfg.LLM.Temperature,
		MaxTokens:   a.cfg.LLM.MaxTokens,
	})
}

// handler assembles the HTTP API surface.
func (a *App) handler() http.Handler {
	return api.NewHandler(api.Options{
		Sessions:       a.sessions,
		History:        a.hist,
		NewGenerator:   a.newGenerator,
		MaxHistoryRows: a.cfg.History.MaxRows,
		CORSOrigins:    a.cfg.Server.CORSOrigins,
	})
}
