package main

import (
	"github.com/spf13/cobra"
)

var (
	flagZMin     float64
	flagZMax     float64
	flagZStep    float64
	flagMethod   string
	flagRaw      bool
	flagXcorrOut bool
)

var xcorrCmd = &cobra.Command{
	Use:   "xcorr <observed> <template>",
	Short: "Cross-correlate a spectrum against a template over a redshift grid",
	Args:  cobra.ExactArgs(2),
	RunE:  runXcorr,
}

func init() {
	f := xcorrCmd.Flags()
	f.Float64Var(&flagZMin, "zmin", 0, "lowest trial redshift")
	f.Float64Var(&flagZMax, "zmax", 1, "highest trial redshift")
	f.Float64Var(&flagZStep, "zstep", 0.001, "redshift step")
	f.StringVar(&flagMethod, "method", "grid", "correlation method (grid, fft)")
	f.BoolVar(&flagRaw, "raw", false, "skip continuum removal")
	f.BoolVar(&flagXcorrOut, "json", false, "print the report as JSON")
	rootCmd.AddCommand(xcorrCmd)
}

func runXcorr(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	x := &cfg.Xcorr
	if flags.Changed("zmin") {
		x.ZMin = flagZMin
	}
	if flags.Changed("zmax") {
		x.ZMax = flagZMax
	}
	if flags.Changed("zstep") {
		x.ZStep = flagZStep
	}
	if flags.Changed("method") {
		x.Method = flagMethod
	}
	x.Enabled = true

	cfg.Data.Observed = args[0]
	cfg.Data.Template = args[1]
	cfg.Data.Library = ""
	cfg.Template.Enabled = false
	if flagRaw {
		cfg.Continuum.Enabled = false
	}

	report, err := execute(cmd.Context())
	if err != nil {
		return err
	}

	return printReport(cmd, report, flagXcorrOut)
}
