package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-redshift/measure/continuum"
	"github.com/cwbudde/algo-redshift/specio"
	"github.com/cwbudde/algo-redshift/spectrum"
)

var (
	flagRegions   []string
	flagFamily    string
	flagDegree    int
	flagNormalize bool
)

var continuumCmd = &cobra.Command{
	Use:   "continuum <file>",
	Short: "Remove the continuum of a spectrum and write CSV to stdout",
	Long: `Fits a continuum over the given line-free regions and writes the
continuum-subtracted (or, with --normalize, continuum-divided) spectrum as
CSV. Without --region the config regions are used, and without those the
full wavelength range.`,
	Args: cobra.ExactArgs(1),
	RunE: runContinuum,
}

func init() {
	f := continuumCmd.Flags()
	f.StringArrayVar(&flagRegions, "region", nil, "line-free region lo:hi in the file's unit (repeatable)")
	f.StringVar(&flagFamily, "family", "", "model family (linear, polynomial, chebyshev, legendre)")
	f.IntVar(&flagDegree, "degree", 0, "model degree")
	f.BoolVar(&flagNormalize, "normalize", false, "divide by the continuum instead of subtracting it")
	rootCmd.AddCommand(continuumCmd)
}

func runContinuum(cmd *cobra.Command, args []string) error {
	s, err := specio.ReadFile(args[0])
	if err != nil {
		return err
	}

	c := cfg.Continuum
	if cmd.Flags().Changed("family") {
		c.Family = flagFamily
	}
	if cmd.Flags().Changed("degree") {
		c.Degree = flagDegree
	}

	family, err := continuum.ParseFamily(c.Family)
	if err != nil {
		return err
	}

	regions := c.Regions
	if len(flagRegions) > 0 {
		if regions, err = parseRegions(flagRegions); err != nil {
			return err
		}
	}
	if len(regions) == 0 {
		regions = []spectrum.Region{s.Range()}
	}

	opts := []continuum.Option{
		continuum.WithFamily(family),
		continuum.WithDegree(c.Degree),
		continuum.WithWeights(c.Weighted),
		continuum.WithSigmaClip(c.ClipSigma, c.ClipRounds),
	}

	remove := continuum.Subtract
	if flagNormalize {
		remove = continuum.Normalize
	}

	out, _, err := remove(s, regions, opts...)
	if err != nil {
		return err
	}

	return specio.WriteCSV(cmd.OutOrStdout(), out)
}

func parseRegions(specs []string) ([]spectrum.Region, error) {
	out := make([]spectrum.Region, 0, len(specs))
	for _, spec := range specs {
		lo, hi, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("region %q: want lo:hi", spec)
		}

		low, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", spec, err)
		}
		high, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", spec, err)
		}

		r, err := spectrum.NewRegion(low, high)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, nil
}
