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
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/report"
	"github.com/AleutianAI/PatternDojo/services/dojo/rules"
)

type analyzeFlags struct {
	patterns    []string
	json        bool
	includes    []string
	excludes    []string
	workers     int
	failOn      string
	maxFileSize int64
	showClean   bool
}

func (a *app) analyzeCmd() *cobra.Command {
	var f analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Analyze files or directories for pattern violations",
		Long: `Analyze source files and report design-pattern violations.

Exit codes:
  0  No violation at or above the failing severity
  1  At least one violation at or above the failing severity
  2  Configuration, usage or file errors`,
		Example: `  patterndojo analyze src/
  patterndojo analyze --patterns singleton,factory --json .
  patterndojo analyze --fail-on error --exclude "**/generated/*.ts" .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return a.runAnalyze(cmd, args, f)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&f.patterns, "patterns", "p", nil, "Patterns to run (default: from configuration)")
	flags.BoolVar(&f.json, "json", false, "Write the report as JSON")
	flags.StringSliceVarP(&f.includes, "include", "i", nil, "Only analyze files matching these globs")
	flags.StringSliceVarP(&f.excludes, "exclude", "e", nil, "Skip files and directories matching these globs")
	flags.IntVarP(&f.workers, "workers", "w", 0, "Parallel workers (default: from configuration)")
	flags.StringVar(&f.failOn, "fail-on", "", "Lowest severity that fails the run: error, warning, information")
	flags.Int64Var(&f.maxFileSize, "max-file-size", 0, "Skip files larger than this many bytes")
	flags.BoolVar(&f.showClean, "show-clean", false, "List files without violations")
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, targets []string, f analyzeFlags) error {
	if err := a.prepare(targets[0]); err != nil {
		return err
	}

	cfg, err := a.analysisConfig(f.patterns)
	if err != nil {
		return err
	}
	threshold := cfg.Severity
	if f.failOn != "" {
		if threshold, err = rules.ParseSeverity(f.failOn); err != nil {
			return fmt.Errorf("--fail-on: %w", err)
		}
	}

	opts := collectOptions{
		Includes:    a.cfg.Analyze.Include,
		Excludes:    a.cfg.Analyze.Exclude,
		MaxFileSize: a.cfg.Analyze.MaxFileSize,
	}
	if len(f.includes) > 0 {
		opts.Includes = f.includes
	}
	if len(f.excludes) > 0 {
		opts.Excludes = append(append([]string(nil), opts.Excludes...), f.excludes...)
	}
	if f.maxFileSize > 0 {
		opts.MaxFileSize = f.maxFileSize
	}

	files, err := collectFiles(targets, opts)
	if err != nil {
		return err
	}

	workers := f.workers
	if workers <= 0 {
		workers = a.cfg.Analyze.Workers
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	a.logger.Info("analysis started", "files", len(files), "workers", workers, "patterns", len(cfg.Patterns))

	an := a.newAnalyzer(cfg)
	if err := an.Start(cmd.Context()); err != nil {
		return err
	}
	defer a.closeAnalyzer(an)

	rep, err := analyzeFiles(cmd.Context(), an, files, workers)
	if err != nil {
		return err
	}

	a.logger.Info("analysis finished",
		"analyzed", rep.Summary.Analyzed,
		"violations", rep.Summary.Violations,
		"suppressed", rep.Summary.Suppressed,
		"failed", rep.Summary.Failed,
		"duration_ms", rep.DurationMS)

	if err := a.writeReport(rep, f.json, f.showClean); err != nil {
		return err
	}

	switch {
	case rep.Exceeds(threshold):
		return &exitError{code: ExitViolations}
	case rep.Summary.Failed > 0:
		return &exitError{code: ExitError}
	}
	return nil
}

// analyzeFiles analyzes files on a bounded pool of workers. Read and analysis
// failures are recorded per file; only cancellation aborts the run.
func analyzeFiles(ctx context.Context, an *analyzer.Analyzer, files []string, workers int) (*report.Report, error) {
	rep := report.New()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := document.Open(path)
			if err != nil {
				rep.AddError(path, err)
				return nil
			}
			res, err := an.Analyze(gctx, doc)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				rep.AddError(path, err)
				return nil
			}
			rep.Add(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	rep.Finish()
	return rep, nil
}

func (a *app) writeReport(rep *report.Report, asJSON, showClean bool) error {
	if asJSON {
		return rep.WriteJSON(a.stdout)
	}
	return rep.WriteText(a.stdout, report.TextOptions{
		Color:     a.colorOutput(),
		ShowClean: showClean,
	})
}
