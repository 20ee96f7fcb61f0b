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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/PatternDojo/pkg/ux"
	"github.com/AleutianAI/PatternDojo/services/dojo/server"
	"github.com/AleutianAI/PatternDojo/services/dojo/telemetry"
)

type serveFlags struct {
	addr            string
	metricsExporter string
	traceExporter   string
	otlpEndpoint    string
}

func (a *app) serveCmd() *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over HTTP",
		Long: `Start the HTTP API:

  POST /v1/analyze   analyze one document
  GET  /v1/rules     list detectors and codes
  GET  /v1/config    current configuration
  PUT  /v1/config    replace the configuration
  GET  /health
  GET  /metrics      when the Prometheus exporter is enabled`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.addr, "addr", "", "Listen address (default: from configuration)")
	flags.StringVar(&f.metricsExporter, "metrics-exporter", "", "Metrics exporter: prometheus, stdout, none")
	flags.StringVar(&f.traceExporter, "trace-exporter", "", "Trace exporter: otlp, stdout, none")
	flags.StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for traces")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, f serveFlags) error {
	if err := a.prepare("."); err != nil {
		return err
	}
	cfg, err := a.analysisConfig(nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = Version
	if f.metricsExporter != "" {
		tcfg.MetricExporter = f.metricsExporter
	}
	if f.traceExporter != "" {
		tcfg.TraceExporter = f.traceExporter
	}
	if f.otlpEndpoint != "" {
		tcfg.OTLPEndpoint = f.otlpEndpoint
	}
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			a.logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	scfg := server.DefaultConfig()
	if a.cfg.Server.Addr != "" {
		scfg.Addr = a.cfg.Server.Addr
	}
	if a.cfg.Server.MaxContentBytes > 0 {
		scfg.MaxContentBytes = a.cfg.Server.MaxContentBytes
	}
	if f.addr != "" {
		scfg.Addr = f.addr
	}
	if tcfg.MetricExporter == telemetry.ExporterPrometheus {
		scfg.MetricsHandler = telemetry.MetricsHandler()
	}

	an := a.newAnalyzer(cfg)
	if err := an.Start(ctx); err != nil {
		return err
	}
	defer a.closeAnalyzer(an)

	srv := server.New(an, scfg, a.logger)
	ux.Success(fmt.Sprintf("Serving on %s", scfg.Addr))
	return srv.Run(ctx)
}
