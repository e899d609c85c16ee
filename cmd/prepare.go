package cmd

import (
	"fmt"
	"os"

	"github.com/andresmejia3/growthlapse/internal/pipeline"
	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Regenerate edited photos and masks without fitting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if err := validateOptions(&opts); err != nil {
			return err
		}
		n, err := pipeline.Prepare(cmd.Context(), opts.pipelineConfig())
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✅ Prepared %d photos into %s and %s\n", n, opts.EditedDir, opts.MasksDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prepareCmd)
}
