package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-redshift/internal/workflow"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>...",
	Short: "Download spectra into the local cache and print their paths",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	blob, closeBlob, err := workflow.NewBlobCache(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting blob cache: %w", err)
	}
	defer closeBlob()

	f := workflow.NewFetcher(cfg, blob, nil)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tBYTES\tPATH")
	for _, u := range args {
		res, err := f.Get(ctx, u)
		if err != nil {
			_ = tw.Flush()
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", res.Source, res.Bytes, res.Path)
	}

	return tw.Flush()
}
