package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"ragflow/internal/corpus"
	"ragflow/internal/logging"
	"ragflow/internal/metrics"
	"ragflow/internal/server"
	"ragflow/pkg/pipeline"
)

var (
	serveAddr string
	serveSeed bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: "Serves POST /v1/ask and POST /v1/documents, plus /healthz and\n" +
		"prometheus metrics on /metrics. Shuts down gracefully on SIGINT/SIGTERM.",
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "index the built-in demo corpus on startup")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	if serveSeed {
		if err := corpus.Ingest(ctx, rt.Embedder, rt.Index, corpus.Seed()); err != nil {
			return fmt.Errorf("seed corpus: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewPipeline(reg)

	exec := pipeline.NewExecutor(rt.Plan, pipeline.WithObserver(pipeline.MultiObserver{
		m,
		&pipeline.LogObserver{Logger: logging.Component("pipeline")},
	}))
	srv := server.New(exec, rt.Embedder, rt.Index, reg)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger := logging.Component("server")
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
