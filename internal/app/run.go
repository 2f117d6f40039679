package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vk/alterflow/internal/convert"
	"github.com/vk/alterflow/internal/ctxlog"
	"github.com/vk/alterflow/internal/history"
	"github.com/vk/alterflow/internal/workflow"
	"github.com/vk/alterflow/internal/yxmd"
)

// Run executes the application: one-shot when a workflow file was given on
// the command line, the HTTP server otherwise.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.opts.WorkflowPath != "" {
		return a.runOneShot(ctx)
	}
	return a.serve(ctx)
}

// serve runs the HTTP API until the context is cancelled or a termination
// signal arrives, then shuts down gracefully.
func (a *App) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:    a.cfg.Server.Listen,
		Handler: a.handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctxlog.WithLogger(context.Background(), a.logger)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting.", "address", a.cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	a.logger.Debug("HTTP server shut down gracefully.")
	return <-errCh
}

// runOneShot parses the workflow file and either prints its execution order
// or converts it, writing the result to stdout.
func (a *App) runOneShot(ctx context.Context) error {
	doc, err := yxmd.ParseFile(a.opts.WorkflowPath)
	if err != nil {
		return err
	}
	g, err := workflow.Build(doc.Tools, doc.Connections)
	if err != nil {
		return err
	}
	a.logger.Debug("Workflow parsed.", "name", doc.Name, "tools", g.Len())

	if a.opts.PrintSequence {
		order, err := workflow.Sequence(g, scopeOf(a.opts.Tools))
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, strings.Join(order, "\n"))
		return nil
	}

	if a.opts.ConvertTarget == "" {
		return errors.New("one-shot mode needs -print-sequence or -convert")
	}

	gen, err := a.newGenerator("")
	if err != nil {
		return err
	}
	svc := convert.NewService(gen)
	res, err := svc.Run(ctx,
		convert.Target(a.opts.ConvertTarget), convert.Mode(a.opts.ConvertMode),
		convert.Request{Graph: g, ToolIDs: a.opts.Tools, Instructions: a.opts.Instructions})
	if err != nil {
		return err
	}

	if _, err := a.hist.Append(ctx, history.Record{
		Kind:     a.opts.ConvertTarget + "-" + a.opts.ConvertMode,
		Workflow: doc.Name,
		ToolIDs:  res.Sequence,
		Output:   res.Code,
		Prompt:   res.Prompt,
	}); err != nil {
		a.logger.Error("Failed to record generation.", "error", err)
	}

	fmt.Fprintln(a.outW, res.Code)
	return nil
}

func scopeOf(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	scope := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		scope[id] = struct{}{}
	}
	return scope
}
