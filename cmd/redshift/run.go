package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-redshift/internal/metrics"
	"github.com/cwbudde/algo-redshift/internal/workflow"
)

var flagJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline described by the config",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	report, err := execute(cmd.Context())
	if err != nil {
		return err
	}

	return printReport(cmd, report, flagJSON)
}

// execute runs the workflow for the current cfg, with the Redis blob cache
// and the metrics endpoint when they are enabled.
func execute(ctx context.Context) (*workflow.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	blob, closeBlob, err := workflow.NewBlobCache(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting blob cache: %w", err)
	}
	defer closeBlob()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)

		srv := metrics.NewServer(cfg.Metrics.Addr, reg)
		errc := srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			if err := <-errc; err != nil {
				slog.Warn("metrics server failed", "error", err)
			}
		}()
		slog.Info("serving metrics", "addr", cfg.Metrics.Addr)
	}

	r := workflow.New(cfg,
		workflow.WithMetrics(m),
		workflow.WithFetcher(workflow.NewFetcher(cfg, blob, m)),
	)

	return r.Run(ctx)
}
