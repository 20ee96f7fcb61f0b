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
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	clicfg "github.com/AleutianAI/PatternDojo/cmd/patterndojo/config"
	"github.com/AleutianAI/PatternDojo/pkg/ux"
	"github.com/AleutianAI/PatternDojo/services/dojo/analyzer"
	"github.com/AleutianAI/PatternDojo/services/dojo/document"
	"github.com/AleutianAI/PatternDojo/services/dojo/report"
	"github.com/AleutianAI/PatternDojo/services/dojo/watcher"
)

func (a *app) watchCmd() *cobra.Command {
	var (
		debounce time.Duration
		patterns []string
	)
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-analyze files as they change",
		Long: `Analyze a directory, then re-analyze each supported file when it changes.
Editing the configuration file in the watched tree reloads it in place.
Stops on Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return a.runWatch(cmd, target, debounce, patterns)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before re-analyzing (default: from configuration)")
	cmd.Flags().StringSliceVarP(&patterns, "patterns", "p", nil, "Patterns to run (default: from configuration)")
	return cmd
}

func (a *app) runWatch(cmd *cobra.Command, target string, debounce time.Duration, patterns []string) error {
	if err := a.prepare(target); err != nil {
		return err
	}
	cfg, err := a.analysisConfig(patterns)
	if err != nil {
		return err
	}
	if debounce <= 0 && a.cfg.Analyze.Debounce != "" {
		if debounce, err = time.ParseDuration(a.cfg.Analyze.Debounce); err != nil {
			return fmt.Errorf("analyze.debounce: %w", err)
		}
	}

	an := a.newAnalyzer(cfg)
	ctx := cmd.Context()
	if err := an.Start(ctx); err != nil {
		return err
	}
	defer a.closeAnalyzer(an)

	files, err := collectFiles([]string{target}, collectOptions{
		Includes:    a.cfg.Analyze.Include,
		Excludes:    a.cfg.Analyze.Exclude,
		MaxFileSize: a.cfg.Analyze.MaxFileSize,
	})
	if err != nil {
		return err
	}
	workers := a.cfg.Analyze.Workers
	if workers <= 0 {
		workers = 1
	}
	rep, err := analyzeFiles(ctx, an, files, workers)
	if err != nil {
		return err
	}
	if err := a.writeReport(rep, false, false); err != nil {
		return err
	}

	opts := watcher.DefaultOptions()
	if debounce > 0 {
		opts.Debounce = debounce
	}
	opts.Ignore = cfg.Ignore
	opts.Logger = a.logger
	opts.Filter = func(path string) bool {
		return document.LanguageForPath(path) != "" || filepath.Base(path) == clicfg.FileName
	}

	w, err := watcher.New(target, a.onChanges(an, patterns), opts)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	ux.Box("Watching", fmt.Sprintf("%s\nCtrl+C to stop", w.Root()))
	<-ctx.Done()
	a.logger.Info("watch stopped", "root", w.Root())
	return nil
}

// onChanges returns the watcher handler. Source changes are re-analyzed and
// printed; a changed configuration file replaces the analyzer's settings.
func (a *app) onChanges(an *analyzer.Analyzer, patterns []string) watcher.Handler {
	return func(ctx context.Context, changes []watcher.Change) {
		rep := report.New()
		for _, ch := range changes {
			if filepath.Base(ch.Path) == clicfg.FileName {
				if ch.Op != watcher.OpRemove {
					a.reloadConfig(an, ch.Path, patterns)
				}
				continue
			}
			if ch.Op == watcher.OpRemove || ch.Op == watcher.OpRename {
				ux.FileStatus(ch.Path, ux.IconPending, "removed")
				continue
			}

			doc, err := document.Open(ch.Path)
			if err != nil {
				rep.AddError(ch.Path, err)
				continue
			}
			res, err := an.Analyze(ctx, doc)
			if err != nil {
				rep.AddError(ch.Path, err)
				continue
			}
			rep.Add(res)
		}

		if len(rep.Results) == 0 && len(rep.Errors) == 0 {
			return
		}
		rep.Finish()
		if err := a.writeReport(rep, false, true); err != nil {
			a.logger.Warn("write report failed", "error", err)
		}
	}
}

func (a *app) reloadConfig(an *analyzer.Analyzer, path string, patterns []string) {
	fileCfg, err := clicfg.LoadFile(path)
	if err != nil {
		ux.Warning(fmt.Sprintf("configuration not reloaded: %v", err))
		return
	}
	cfg, err := analysisFrom(fileCfg, patterns)
	if err != nil {
		ux.Warning(fmt.Sprintf("configuration not reloaded: %v", err))
		return
	}
	an.Store().Replace(cfg)
	a.cfg = fileCfg
	ux.Success("Configuration reloaded")
	a.logger.Info("configuration reloaded", "path", path, "version", an.Store().Version())
}
