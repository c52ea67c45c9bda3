/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/passfoundry/passforge/internal/config"
	"github.com/passfoundry/passforge/internal/server"
)

func main() {
	logger := log.New(os.Stderr, "passforge ", log.LstdFlags)
	cfg := config.FromEnv()
	cfg.Logger = logger

	srv, err := server.New(context.Background(), cfg)
	if err != nil {
		logger.Fatalf("startup failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("server error: %v", err)
		}
	case sig := <-stop:
		logger.Printf("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Fatalf("shutdown failed: %v", err)
		}
	}
}
