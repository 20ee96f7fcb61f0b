// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package server exposes the analyzer over HTTP.
//
// Endpoints:
//
//	POST /v1/analyze - Analyze one document sent in the body
//	GET  /v1/rules   - List registered providers and violation codes
//	GET  /v1/config  - Current configuration snapshot
//	PUT  /v1/config  - Replace the configuration wholesale
//	GET  /health     - Liveness
//	GET  /metrics    - Prometheus metrics, when enabled
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
)

// Version is reported by /health.
const Version = "0.1.0"

// Config configures a Server.
type Config struct {
	// Addr is the listen address. Default: ":8088".
	Addr string

	// MaxContentBytes bounds the analyzed content. Default: 10MB.
	MaxContentBytes int

	// ShutdownTimeout bounds graceful shutdown. Default: 10s.
	ShutdownTimeout time.Duration

	// ServiceName labels spans from the otelgin middleware.
	ServiceName string

	// MetricsHandler serves /metrics. Nil leaves the route unregistered.
	MetricsHandler http.Handler
}

// DefaultConfig returns the serve command defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8088",
		MaxContentBytes: 10 * 1024 * 1024,
		ShutdownTimeout: 10 * time.Second,
		ServiceName:     "patterndojo",
	}
}

// Server serves the analyzer over HTTP.
//
// # Thread Safety
//
// Safe for concurrent requests; configuration changes go through the
// analyzer's store.
type Server struct {
	cfg      Config
	analyzer *analyzer.Analyzer
	logger   *logging.Logger
	router   *gin.Engine
}

// New builds the router. A nil logger discards output.
func New(an *analyzer.Analyzer, cfg Config, logger *logging.Logger) *Server {
	defaults := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.MaxContentBytes <= 0 {
		cfg.MaxContentBytes = defaults.MaxContentBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaults.ServiceName
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		cfg:      cfg,
		analyzer: an,
		logger:   logger.With("component", "server"),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(s.requestLogger())
	s.registerRoutes(router)
	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/health", s.handleHealth)
	if s.cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(s.cfg.MetricsHandler))
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.GET("/rules", s.handleRules)
		v1.GET("/config", s.handleGetConfig)
		v1.PUT("/config", s.handlePutConfig)
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.errorLog(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.Writer.Header().Get(headerRequestID))
	}
}

// errorLog routes net/http's internal errors (TLS handshakes, panics in
// connection handling) into the service logger.
func (s *Server) errorLog() *log.Logger {
	return slog.NewLogLogger(s.logger.Slog().Handler(), slog.LevelError)
}
