// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/PatternDojo/services/dojo/config"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

const headerRequestID = "X-Request-ID"

// Error codes returned in ErrorResponse.Code.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeContentTooLarge = "CONTENT_TOO_LARGE"
	CodeAnalyzeFailed   = "ANALYZE_FAILED"
	CodeInvalidConfig   = "INVALID_CONFIG"
)

func requestID(c *gin.Context) string {
	id := c.GetHeader(headerRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(headerRequestID, id)
	return id
}

func (s *Server) fail(c *gin.Context, status int, code string, err error, id string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code, RequestID: id})
}

// handleAnalyze handles POST /v1/analyze.
func (s *Server) handleAnalyze(c *gin.Context) {
	id := requestID(c)
	logger := s.logger.With("request_id", id, "handler", "analyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("invalid request body", "error", err)
		s.fail(c, http.StatusBadRequest, CodeInvalidRequest, err, id)
		return
	}
	if len(req.Content) > s.cfg.MaxContentBytes {
		err := fmt.Errorf("content is %d bytes, limit %d", len(req.Content), s.cfg.MaxContentBytes)
		s.fail(c, http.StatusRequestEntityTooLarge, CodeContentTooLarge, err, id)
		return
	}

	doc := document.New(req.Path, []byte(req.Content))
	if req.LanguageID != "" {
		doc = document.NewWithLanguage(req.Path, req.LanguageID, []byte(req.Content))
	}

	cfg := s.analyzer.Store().Snapshot()
	if len(req.Patterns) > 0 {
		cfg.Patterns = req.Patterns
	}

	res, err := s.analyzer.AnalyzeWith(c.Request.Context(), doc, cfg)
	if err != nil {
		logger.Error("analyze failed", "path", req.Path, "error", err)
		s.fail(c, http.StatusInternalServerError, CodeAnalyzeFailed, err, id)
		return
	}

	c.JSON(http.StatusOK, AnalyzeResponse{
		RunID:      id,
		Path:       res.Path,
		Language:   res.Language,
		Violations: res.Violations,
		RawCount:   res.RawCount,
		Suppressed: res.Suppressed,
		Skipped:    res.Skipped,
	})
}

// handleRules handles GET /v1/rules.
func (s *Server) handleRules(c *gin.Context) {
	providers := s.analyzer.Registry().AllProviders()
	infos := make([]rules.Info, 0, len(providers))
	for _, p := range providers {
		infos = append(infos, rules.Describe(p))
	}
	c.JSON(http.StatusOK, RulesResponse{Rules: infos, Codes: rules.AllCodes()})
}

// handleGetConfig handles GET /v1/config.
func (s *Server) handleGetConfig(c *gin.Context) {
	store := s.analyzer.Store()
	c.JSON(http.StatusOK, ConfigResponse{Version: store.Version(), Config: store.Snapshot()})
}

// handlePutConfig handles PUT /v1/config. The body replaces the whole
// configuration; omitted fields take the built-in defaults.
func (s *Server) handlePutConfig(c *gin.Context) {
	id := requestID(c)

	cfg := config.Default()
	if err := c.ShouldBindJSON(&cfg); err != nil {
		s.fail(c, http.StatusBadRequest, CodeInvalidConfig, err, id)
		return
	}
	for _, name := range cfg.Patterns {
		if name == "" {
			s.fail(c, http.StatusBadRequest, CodeInvalidConfig, errors.New("pattern names must not be empty"), id)
			return
		}
	}

	store := s.analyzer.Store()
	store.Replace(cfg)
	s.logger.Info("configuration replaced over http", "request_id", id, "version", store.Version())
	c.JSON(http.StatusOK, ConfigResponse{Version: store.Version(), Config: store.Snapshot()})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: Version})
}
