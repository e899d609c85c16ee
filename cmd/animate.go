package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresmejia3/growthlapse/internal/animate"
	"github.com/spf13/cobra"
)

var (
	animateOut        string
	animateDelay      int
	animateSmallWidth int
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Assemble the edited photos and masks into animated GIF previews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if animateDelay < 1 {
			return fmt.Errorf("invalid delay %d: must be >= 1", animateDelay)
		}
		if err := os.MkdirAll(animateOut, 0755); err != nil {
			return err
		}

		jobs := []struct {
			dir   string
			name  string
			width int
		}{
			{opts.EditedDir, "animated.gif", 0},
			{opts.MasksDir, "animated_threshold.gif", 0},
		}
		if animateSmallWidth > 0 {
			jobs = append(jobs, struct {
				dir   string
				name  string
				width int
			}{opts.EditedDir, "animated_small.gif", animateSmallWidth})
		}

		for _, job := range jobs {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			out := filepath.Join(animateOut, job.name)
			n, err := animate.Build(job.dir, out, animate.Options{DelayCS: animateDelay, Width: job.width})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "🎞️  Wrote %s (%d frames)\n", out, n)
		}
		return nil
	},
}

func init() {
	animateCmd.Flags().StringVarP(&animateOut, "out", "o", ".", "Directory for the GIFs")
	animateCmd.Flags().IntVar(&animateDelay, "delay", animate.DefaultOptions.DelayCS, "Delay between frames in hundredths of a second")
	animateCmd.Flags().IntVar(&animateSmallWidth, "small-width", 274, "Width of animated_small.gif (0 to skip it)")
	rootCmd.AddCommand(animateCmd)
}
