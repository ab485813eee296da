/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikeb26/chess-pre/config"
	"github.com/mikeb26/chess-pre/internal"
	"github.com/mikeb26/chess-pre/uschess"
)

const shutdownTimeout = 15 * time.Second

func main() {
	internal.InitLogging(os.Getenv("PRE_DEBUG") != "")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("preserver: failed to load configuration", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	srv, err := newServer(cfg, uschess.NewClient(ctx))
	if err != nil {
		slog.Error("preserver: failed to initialize", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      srv.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * requestTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("preserver: listening", "addr", httpServer.Addr,
			"mode", cfg.Solver.Perf.Mode, "cacheBucket", cfg.WebCacheBucket)
		serverErrors <- httpServer.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("preserver: server error", "err", err)
			os.Exit(1)
		}
	case sig := <-quit:
		slog.Info("preserver: shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("preserver: graceful shutdown failed", "err", err)
			_ = httpServer.Close()
			os.Exit(1)
		}
	}
}
