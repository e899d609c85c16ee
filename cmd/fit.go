package cmd

import (
	"fmt"
	"os"

	"github.com/andresmejia3/growthlapse/internal/chart"
	"github.com/andresmejia3/growthlapse/internal/pipeline"
	"github.com/spf13/cobra"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit and chart the masks already in the mask directory",
	Long:  "Skips photo preparation. Useful for trying different --drop sets against the same masks.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		for _, i := range opts.Drop {
			if i < 0 {
				return fmt.Errorf("invalid drop index %d: must be >= 0", i)
			}
		}
		if _, err := os.Stat(opts.MasksDir); err != nil {
			return fmt.Errorf("mask directory unavailable (run prepare first): %w", err)
		}

		sink, err := chart.NewSink(opts.Sink, opts.PlotDir, opts.Viewer)
		if err != nil {
			return err
		}
		analyses, err := pipeline.Analyze(cmd.Context(), opts.pipelineConfig(), sink)
		if err != nil {
			return err
		}

		count := 0
		if len(analyses) > 0 {
			count = analyses[0].Series.Len()
		}
		printReport(os.Stdout, count, analyses)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fitCmd)
}
