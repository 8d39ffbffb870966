package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-redshift/internal/config"
	"github.com/cwbudde/algo-redshift/internal/logging"
	"github.com/cwbudde/algo-redshift/internal/workflow"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	// cfg is loaded before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "redshift",
	Short:        "Estimate spectral redshifts by cross-correlation and template matching",
	SilenceUsage: true,
	Long: `redshift removes the continuum of an observed spectrum, cross-correlates it
against a rest-frame template over a redshift grid and sweeps a template
library for the best chi-squared fit.

Settings come from a YAML file (--config) with REDSHIFT_* environment
overrides; command flags override both.`,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML config file")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format (text, json)")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	if flagLogLevel != "" {
		c.Logging.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		c.Logging.Format = flagLogFormat
	}
	logging.SetupWriter(cmd.ErrOrStderr(), c.Logging.Level, c.Logging.Format)

	cfg = c

	return nil
}

// Execute is called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printReport(cmd *cobra.Command, r *workflow.Report, asJSON bool) error {
	if !asJSON {
		return r.WriteText(cmd.OutOrStdout())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(r)
}
