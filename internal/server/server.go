/*
 * Copyright (c) 2025 SECOM CO., LTD. All Rights reserved.
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/passfoundry/passforge/internal/bundle"
	"github.com/passfoundry/passforge/internal/config"
	"github.com/passfoundry/passforge/internal/infra/sqlite"
	"github.com/passfoundry/passforge/internal/pipeline"
	"github.com/passfoundry/passforge/internal/signature"
)

// Server wires the HTTP listener and the pass generation stack.
type Server struct {
	cfg     config.Config
	db      *sql.DB
	handler *handler
	http    *http.Server
	logger  *log.Logger
}

// New constructs a Server using the provided configuration. The signing
// identity is loaded once here; a broken keystore fails startup, never a
// request.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	db, err := sqlite.InitDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}

	identity, err := signature.LoadIdentity(cfg.IdentityPath, cfg.IdentityPassword)
	if err != nil {
		sqlite.CloseDB(db)
		return nil, err
	}
	signer, err := signature.NewSigner(signature.Format(cfg.SignatureFormat), identity)
	if err != nil {
		sqlite.CloseDB(db)
		return nil, err
	}

	campaigns := sqlite.NewCampaignRepository(db)
	passes := sqlite.NewPassRepository(db)
	redemptions := sqlite.NewRedemptionRepository(db)

	pipe := pipeline.New(pipeline.Config{
		PassTypeIdentifier: cfg.PassTypeIdentifier,
		TeamIdentifier:     cfg.TeamIdentifier,
		OrganizationName:   cfg.OrganizationName,
		WebServiceURL:      cfg.WebServiceURL,
		DigestAlgorithm:    bundle.DigestAlgorithm(cfg.DigestAlgorithm),
		OutputDir:          cfg.OutputDir,
		EmbedStrip3x:       cfg.EmbedStrip3x,
	}, signer, campaigns, passes, redemptions, logger)

	h := newHandler(pipe, campaigns, passes, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		cfg:     cfg,
		db:      db,
		handler: h,
		http:    httpSrv,
		logger:  logger,
	}, nil
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	s.logger.Printf("Run Passforge Server on %s.", s.http.Addr)

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully takes down the HTTP server and closes the database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if dbErr := sqlite.CloseDB(s.db); err == nil {
		err = dbErr
	}
	return err
}
