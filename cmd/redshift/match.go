package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-redshift/internal/config"
)

var (
	flagRedshifts  string
	flagMatchZMin  float64
	flagMatchZMax  float64
	flagMatchZStep float64
	flagResampler  string
	flagWorkers    int
	flagMatchRaw   bool
	flagMatchOut   bool
)

var matchCmd = &cobra.Command{
	Use:   "match <observed> <manifest>",
	Short: "Find the best-fitting template and redshift by chi-squared",
	Long: `Sweeps every template listed in the YAML manifest over the trial
redshifts and reports the pair with the lowest reduced chi-squared.
--z takes an explicit comma separated list and wins over the range flags.`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	f := matchCmd.Flags()
	f.StringVar(&flagRedshifts, "z", "", "comma separated trial redshifts")
	f.Float64Var(&flagMatchZMin, "zmin", 0, "lowest trial redshift")
	f.Float64Var(&flagMatchZMax, "zmax", 1, "highest trial redshift")
	f.Float64Var(&flagMatchZStep, "zstep", 0.01, "redshift step")
	f.StringVar(&flagResampler, "resampler", "", "resampling method (linear, spline, flux)")
	f.IntVar(&flagWorkers, "workers", 0, "concurrent evaluations (0 uses GOMAXPROCS)")
	f.BoolVar(&flagMatchRaw, "raw", false, "skip continuum removal")
	f.BoolVar(&flagMatchOut, "json", false, "print the report as JSON")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	t := &cfg.Template
	if flags.Changed("z") {
		zs, err := config.ParseFloatList(flagRedshifts)
		if err != nil {
			return err
		}
		t.Redshifts = zs
	}
	if flags.Changed("zmin") {
		t.ZMin = flagMatchZMin
	}
	if flags.Changed("zmax") {
		t.ZMax = flagMatchZMax
	}
	if flags.Changed("zstep") {
		t.ZStep = flagMatchZStep
	}
	if flags.Changed("resampler") {
		t.Resampler = flagResampler
	}
	if flags.Changed("workers") {
		t.Workers = flagWorkers
	}
	t.Enabled = true

	cfg.Data.Observed = args[0]
	cfg.Data.Library = args[1]
	cfg.Data.Template = ""
	cfg.Xcorr.Enabled = false
	if flagMatchRaw {
		cfg.Continuum.Enabled = false
	}

	report, err := execute(cmd.Context())
	if err != nil {
		return err
	}

	return printReport(cmd, report, flagMatchOut)
}
