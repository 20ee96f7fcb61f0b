// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/services/dojo/adapters"
	"github.com/AleutianAI/PatternDojo/services/dojo/config"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules/multilang"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules/native"
)

// DefaultRegistry returns a rule registry holding every built-in provider:
// the eight native rules followed by the three multi-language rules.
func DefaultRegistry(logger *logging.Logger, opts ...adapters.Option) *rules.Registry {
	reg := rules.NewRegistry(logger)
	for _, p := range native.All() {
		reg.Register(p)
	}
	for _, p := range multilang.All(adapters.NewDefaultRegistry(logger, opts...)) {
		reg.Register(p)
	}
	return reg
}

// NewDefault builds an Analyzer over DefaultRegistry and a store holding cfg.
func NewDefault(cfg config.AnalysisConfig, logger *logging.Logger, opts ...adapters.Option) *Analyzer {
	return New(DefaultRegistry(logger, opts...), config.NewStore(cfg, logger), logger)
}
