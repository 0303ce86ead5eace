// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Command server runs the NexOps API: the client operations management
// service with its layered request security pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexlayer/nexops/internal/api"
	"github.com/nexlayer/nexops/internal/authz"
	"github.com/nexlayer/nexops/internal/config"
	"github.com/nexlayer/nexops/internal/docstore"
	"github.com/nexlayer/nexops/internal/firewall"
	"github.com/nexlayer/nexops/internal/identity"
	"github.com/nexlayer/nexops/internal/logging"
	"github.com/nexlayer/nexops/internal/securitylog"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	store, err := docstore.NewMemStore()
	if err != nil {
		return fmt.Errorf("create document store: %w", err)
	}

	verifier, err := identity.NewJWTVerifier(cfg.Security.JWTSecret)
	if err != nil {
		return fmt.Errorf("create credential verifier: %w", err)
	}

	enforcer, err := authz.NewEnforcer(cfg.Security.CasbinPolicyPath)
	if err != nil {
		return fmt.Errorf("create policy enforcer: %w", err)
	}

	resolver := authz.NewResolver(authz.NewStoreDirectory(store), cfg.Security.AdminEmails)
	policy := authz.NewPolicy(enforcer, store)

	recorder := securitylog.NewRecorder(store)
	defer recorder.Close()

	inspector := firewall.NewInspector(cfg.Firewall.Patterns)
	handlers := api.NewHandlers(store, policy)
	middleware := api.NewMiddleware(cfg, verifier, resolver)
	router := api.NewRouter(handlers, middleware, inspector, recorder)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", addr).
			Str("environment", cfg.Server.Environment).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
