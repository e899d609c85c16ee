package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/andresmejia3/growthlapse/internal/series"
	"github.com/spf13/cobra"
)

var errNoDatabase = errors.New("no database configured (use --db or POSTGRES_HOST)")

var historyCmd = &cobra.Command{
	Use:   "history [run_id]",
	Short: "List recorded runs, or show the samples of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		if DB == nil {
			return errNoDatabase
		}
		if len(args) == 0 {
			return runHistory(cmd.Context())
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run ID %q: %w", args[0], err)
		}
		return runShow(cmd.Context(), id)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(ctx context.Context) error {
	runs, err := DB.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tPHOTOS\tDROPPED\tDOUBLING 2D\tDOUBLING 3D\tCREATED")
	fmt.Fprintln(w, "--\t------\t-------\t-----------\t-----------\t-------")

	for _, r := range runs {
		doubling := map[string]string{series.Label2D: "-", series.Label3D: "-"}
		for _, a := range r.Analyses {
			doubling[a.Series.Label] = fmtHours(a.Fit.DoublingHours)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.PhotoCount, joinInts(r.Dropped),
			doubling[series.Label2D], doubling[series.Label3D],
			r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runShow(ctx context.Context, id int64) error {
	fits, err := DB.GetFits(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", id, err)
	}
	if len(fits) == 0 {
		return fmt.Errorf("run %d not found", id)
	}

	for _, dim := range []string{series.Label2D, series.Label3D} {
		f, ok := fits[dim]
		if !ok {
			continue
		}
		s, err := DB.GetSeries(ctx, id, dim)
		if err != nil {
			return fmt.Errorf("failed to load %s samples: %w", dim, err)
		}

		fmt.Printf("\n%s fit: slope %.5f/h, intercept %.4f, doubling %s\n", dim, f.Slope, f.Intercept, fmtHours(f.DoublingHours))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FILE\tHOURS\tVALUE")
		for i := range s.X {
			fmt.Fprintf(w, "%s\t%d\t%.1f\n", s.Files[i], s.X[i], s.Y[i])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "-"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
