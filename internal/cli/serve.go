//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/klaviyo/knowledge-grader/log"
	"github.com/klaviyo/knowledge-grader/server/docgrader"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCommand() *cobra.Command {
	var (
		addr         string
		trustProxies bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves the grading API:

  POST /api/doc-grader/evaluate   grade a document (rate limited per client IP)
  POST /api/doc-grader/preview    predict the chunk breakdown
  GET  /health                    liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			return a.serve(ctx, addr, trustProxies)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	cmd.Flags().BoolVar(&trustProxies, "trust-proxy", false, "rate limit on X-Forwarded-For instead of the peer address")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, trustProxies bool) error {
	cfg := a.cfg

	stopTelemetry, err := startTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	g, err := a.newGrader(ctx, cfg)
	if err != nil {
		return err
	}
	limiter, closeLimiter, err := newLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	opts := []docgrader.Option{
		docgrader.WithChunkSize(cfg.Chunking.Size),
		docgrader.WithMaxRetrieved(cfg.Chunking.MaxRetrieved),
		docgrader.WithMaxDocumentChars(cfg.Document.MaxChars),
		docgrader.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		docgrader.WithTrustForwardedFor(trustProxies),
	}
	if limiter != nil {
		opts = append(opts, docgrader.WithLimiter(limiter))
	}
	if counter := newTokenCounter(cfg); counter != nil {
		opts = append(opts, docgrader.WithTokenCounter(counter))
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           docgrader.New(g, opts...).Handler(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
