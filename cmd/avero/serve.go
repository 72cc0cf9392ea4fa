package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/avero-hq/avero/internal/api"
	"github.com/avero-hq/avero/internal/dataset"
	"github.com/avero-hq/avero/internal/metrics"
	"github.com/avero-hq/avero/internal/session"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve sessions over HTTP. Every client creates its own session with
POST /sessions and addresses it by ID. Prometheus metrics are exposed at
/metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr)")
	_ = opts.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	logger := slog.Default()
	m := metrics.New(true)

	b, err := opts.initBackend(ctx, logger, dataset.WithObserver(m))
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	deps := opts.sessionDeps(b, logger)
	deps.CacheObserver = m
	deps.SpeechObserver = m
	sessions := session.NewManager(deps, session.WithSessionObserver(m))
	defer sessions.CloseAll()

	srv := api.NewServer(sessions, b.loader,
		api.WithMetrics(m),
		api.WithLogger(logger),
		api.WithDefaultDatasets(opts.cfg.Data.Datasets),
		api.WithRequestTimeout(opts.cfg.Speech.Timeout+5*time.Second),
	)

	httpServer := &http.Server{
		Addr:              opts.cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
