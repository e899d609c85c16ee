package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/growthlapse/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetDB    bool
	resetFiles bool
	resetPlots bool
	resetYes   bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset state (run history, edited photos and masks, charts)",
	Long:  "Clears generated data. By default, it resets everything. Use flags to clear specific components. Raw photos are never touched.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		// If no flags are set, default to clearing EVERYTHING
		if !resetDB && !resetFiles && !resetPlots {
			resetDB = true
			resetFiles = true
			resetPlots = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetDB {
			if DB == nil {
				fmt.Println("⏭️  No database configured, skipping history.")
			} else if confirm(reader, "⚠️  Are you sure you want to DROP the run history tables?") {
				fmt.Println("🗑️  Clearing Database...")
				if err := DB.Reset(cmd.Context()); err != nil {
					return fmt.Errorf("failed to reset database: %w", err)
				}
			}
		}

		if resetFiles {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete everything in %s and %s?", opts.EditedDir, opts.MasksDir)) {
				fmt.Println("🗑️  Clearing Edited Photos and Masks...")
				clearDir(opts.EditedDir)
				clearDir(opts.MasksDir)
			}
		}

		if resetPlots {
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete %s?", opts.PlotDir)) {
				fmt.Println("🗑️  Clearing Charts...")
				removeDir(opts.PlotDir)
			}
		}

		fmt.Println("✨ Reset Complete.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetDB, "history", false, "Clear the PostgreSQL run history")
	resetCmd.Flags().BoolVar(&resetFiles, "files", false, "Clear edited photos and masks")
	resetCmd.Flags().BoolVar(&resetPlots, "plots", false, "Clear rendered charts")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	if resetYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func clearDir(path string) {
	if err := utils.ClearDir(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to clear %s: %v\n", path, err)
	}
}

func removeDir(path string) {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
