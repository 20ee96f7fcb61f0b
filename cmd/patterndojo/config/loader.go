// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads .patterndojo.yaml for the patterndojo CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

// FileName is the per-project configuration file.
const FileName = ".patterndojo.yaml"

// EnvLogLevel overrides logging.level.
const EnvLogLevel = "PATTERNDOJO_LOG_LEVEL"

var (
	// ErrInvalidConfig wraps validation and parse failures.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigExists is returned by WriteDefault when the file is present.
	ErrConfigExists = errors.New("configuration file already exists")
)

// configValidate is the validator instance for Config. Initialized in init()
// with the severity and duration rules.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("severity", validateSeverity)
	_ = configValidate.RegisterValidation("duration", validateDuration)
}

func validateSeverity(fl validator.FieldLevel) bool {
	_, err := rules.ParseSeverity(fl.Field().String())
	return err == nil
}

func validateDuration(fl validator.FieldLevel) bool {
	_, err := time.ParseDuration(fl.Field().String())
	return err == nil
}

// Validate checks c against its validate tags.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Candidates returns the paths Load searches, in order: FileName in dir,
// then ~/.patterndojo/config.yaml.
func Candidates(dir string) []string {
	paths := []string{filepath.Join(dir, FileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".patterndojo", "config.yaml"))
	}
	return paths
}

// Load reads the first candidate file that exists. When none exists the
// defaults are returned with an empty path. Environment overrides are
// applied in both cases.
func Load(dir string) (Config, string, error) {
	for _, path := range Candidates(dir) {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, "", fmt.Errorf("stat %s: %w", path, err)
		}
		cfg, err := LoadFile(path)
		return cfg, path, err
	}

	cfg := Default()
	applyEnv(&cfg)
	return cfg, "", nil
}

// LoadFile reads one configuration file. Keys missing from the file keep
// their default values; unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to dir/FileName. An
// existing file is only replaced when force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("marshal default config: %w", err)
	}
	header := "# Pattern Dojo configuration. See `patterndojo rules` for pattern names.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func applyEnv(cfg *Config) {
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
}
