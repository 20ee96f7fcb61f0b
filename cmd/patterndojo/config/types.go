// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"runtime"

	"github.com/AleutianAI/PatternDojo/pkg/logging"
	dojoconfig "github.com/AleutianAI/PatternDojo/services/dojo/config"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// Config is the contents of .patterndojo.yaml.
type Config struct {
	// Enabled turns analysis off when false.
	Enabled bool `yaml:"enabled"`

	// Patterns names the providers to run, in order.
	Patterns []string `yaml:"patterns" validate:"omitempty,max=64,dive,required,max=128"`

	// Severity is the default severity and the failing exit threshold.
	Severity string `yaml:"severity" validate:"required,severity"`

	// PatternSeverities overrides severities by violation code.
	PatternSeverities map[string]string `yaml:"pattern_severities,omitempty" validate:"omitempty,dive,keys,required,endkeys,severity"`

	// Ignore lists path substrings that are never analyzed.
	Ignore []string `yaml:"ignore,omitempty" validate:"omitempty,dive,required"`

	Analyze AnalyzeConfig `yaml:"analyze"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// AnalyzeConfig holds defaults for the analyze and watch commands.
type AnalyzeConfig struct {
	// Workers bounds parallel file analysis. 0 means NumCPU.
	Workers int `yaml:"workers" validate:"gte=0,lte=256"`

	// Include keeps only files matching these globs.
	Include []string `yaml:"include,omitempty"`

	// Exclude skips files and directories matching these globs.
	Exclude []string `yaml:"exclude,omitempty"`

	// MaxFileSize skips larger files, in bytes.
	MaxFileSize int64 `yaml:"max_file_size" validate:"gte=0"`

	// Debounce is the watch command's quiet period, e.g. "300ms".
	Debounce string `yaml:"debounce" validate:"omitempty,duration"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

// ServerConfig holds defaults for the serve command.
type ServerConfig struct {
	Addr            string `yaml:"addr" validate:"omitempty,hostname_port"`
	MaxContentBytes int    `yaml:"max_content_bytes" validate:"gte=0"`
}

// Default returns the configuration written by patterndojo init.
func Default() Config {
	analysis := dojoconfig.Default()
	return Config{
		Enabled:           analysis.Enabled,
		Patterns:          analysis.Patterns,
		Severity:          analysis.Severity.String(),
		PatternSeverities: map[string]string{},
		Ignore:            []string{"node_modules", "dist/", ".min.js"},
		Analyze: AnalyzeConfig{
			Workers:     runtime.NumCPU(),
			Exclude:     []string{".git", "node_modules", "vendor"},
			MaxFileSize: 1024 * 1024,
			Debounce:    "300ms",
		},
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8088", MaxContentBytes: 10 * 1024 * 1024},
	}
}

// Analysis converts the file settings into an analysis configuration.
func (c Config) Analysis() (dojoconfig.AnalysisConfig, error) {
	sev, err := rules.ParseSeverity(c.Severity)
	if err != nil {
		return dojoconfig.AnalysisConfig{}, fmt.Errorf("severity: %w", err)
	}

	overrides := make(map[string]rules.Severity, len(c.PatternSeverities))
	for code, name := range c.PatternSeverities {
		s, err := rules.ParseSeverity(name)
		if err != nil {
			return dojoconfig.AnalysisConfig{}, fmt.Errorf("pattern_severities[%s]: %w", code, err)
		}
		overrides[code] = s
	}

	return dojoconfig.AnalysisConfig{
		Enabled:           c.Enabled,
		Patterns:          append([]string(nil), c.Patterns...),
		Severity:          sev,
		PatternSeverities: overrides,
		Ignore:            append([]string(nil), c.Ignore...),
	}, nil
}

// LogLevel returns the parsed logging level, Info when unset.
func (c Config) LogLevel() logging.Level {
	if c.Logging.Level == "" {
		return logging.LevelInfo
	}
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.LevelInfo
	}
	return level
}
