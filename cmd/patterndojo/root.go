// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	clicfg "github.com/AleutianAI/PatternDojo/cmd/patterndojo/config"
	"github.com/AleutianAI/PatternDojo/pkg/logging"
	"github.com/AleutianAI/PatternDojo/pkg/ux"
	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	dojoconfig "github.com/AleutianAI/PatternDojo/services/dojo/config"
)

// Version is the patterndojo release.
const Version = "0.1.0"

// app holds the state shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	logJSON    bool
	logDir     string
	output     string

	cfg       clicfg.Config
	cfgSource string
	logger    *logging.Logger
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Close()
	}

	code := exitCode(err)
	if code == ExitError && err != nil {
		a.initOutput()
		ux.Error(err.Error())
	}
	return code
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "patterndojo",
		Short: "Detect design-pattern anti-patterns in source code",
		Long: `patterndojo statically detects structural design-pattern problems:
badly built Singletons, repeated instantiation that wants a Factory, unmatched
subscriptions, long conditional chains, deep inheritance, heavy type
coercion, bloated interfaces and repeated expensive calls.

Violations can be silenced inline with:
  // pattern-dojo-disable-next-line
  // pattern-dojo-disable`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Configuration file (default: "+clicfg.FileName+" in the target directory)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	pf.StringVar(&a.logDir, "log-dir", "", "Also write JSON logs to this directory")
	pf.StringVar(&a.output, "output", "", "Output style: full, minimal, machine (default: detected)")

	root.AddCommand(
		a.analyzeCmd(),
		a.watchCmd(),
		a.rulesCmd(),
		a.serveCmd(),
		a.initCmd(),
	)
	return root
}

// prepare loads configuration for target and builds the logger. It must be
// called at the start of every RunE.
func (a *app) prepare(target string) error {
	if a.configPath != "" {
		cfg, err := clicfg.LoadFile(a.configPath)
		if err != nil {
			return err
		}
		a.cfg, a.cfgSource = cfg, a.configPath
	} else {
		dir := target
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			dir = filepath.Dir(target)
		}
		cfg, source, err := clicfg.Load(dir)
		if err != nil {
			return err
		}
		a.cfg, a.cfgSource = cfg, source
	}

	level := a.cfg.LogLevel()
	if a.logLevel != "" {
		parsed, err := logging.ParseLevel(a.logLevel)
		if err != nil {
			return err
		}
		level = parsed
	}
	logDir := a.cfg.Logging.Dir
	if a.logDir != "" {
		logDir = a.logDir
	}

	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  logDir,
		Service: "patterndojo",
		JSON:    a.logJSON || a.cfg.Logging.JSON,
		Output:  a.stderr,
	})

	a.initOutput()

	if a.cfgSource != "" {
		a.logger.Debug("configuration loaded", "path", a.cfgSource)
	}
	return nil
}

// initOutput points the ux helpers at the command's writers and picks the
// output personality. Writers that are not files get machine output.
func (a *app) initOutput() {
	ux.SetOutput(a.stdout, a.stderr)
	_, isFile := a.stdout.(*os.File)
	switch {
	case a.output != "":
		ux.SetPersonalityLevel(ux.ParsePersonalityLevel(a.output))
	case isFile:
		ux.InitPersonality()
	default:
		ux.SetPersonalityLevel(ux.PersonalityMachine)
	}
}

// analysisConfig converts the loaded file settings, replacing the pattern
// list when patterns is non-empty.
func (a *app) analysisConfig(patterns []string) (dojoconfig.AnalysisConfig, error) {
	return analysisFrom(a.cfg, patterns)
}

func analysisFrom(fileCfg clicfg.Config, patterns []string) (dojoconfig.AnalysisConfig, error) {
	cfg, err := fileCfg.Analysis()
	if err != nil {
		return cfg, err
	}
	if len(patterns) > 0 {
		cfg.Patterns = patterns
	}
	return cfg, nil
}

func (a *app) newAnalyzer(cfg dojoconfig.AnalysisConfig) *analyzer.Analyzer {
	return analyzer.NewDefault(cfg, a.logger)
}

func (a *app) closeAnalyzer(an *analyzer.Analyzer) {
	if err := an.Close(); err != nil {
		a.logger.Warn("dispose providers failed", "error", err)
	}
}

// colorOutput reports whether text output to stdout should be styled.
func (a *app) colorOutput() bool {
	f, ok := a.stdout.(*os.File)
	return ok && ux.IsTerminal(f) && ux.ShouldShowColors()
}
