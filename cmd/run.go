package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/growthlapse/internal/animate"
	"github.com/andresmejia3/growthlapse/internal/chart"
	"github.com/andresmejia3/growthlapse/internal/pipeline"
	"github.com/andresmejia3/growthlapse/internal/schedule"
	"github.com/andresmejia3/growthlapse/internal/store"
)

// runPipeline orchestrates a whole run: prepare outputs, fit, chart, record.
func runPipeline(ctx context.Context, opts Options) error {
	if err := validateOptions(&opts); err != nil {
		return err
	}
	sink, err := chart.NewSink(opts.Sink, opts.PlotDir, opts.Viewer)
	if err != nil {
		return err
	}

	var rec pipeline.Recorder
	if DB != nil {
		rec = DB
	}

	fmt.Fprintf(os.Stderr, "📷 Processing photos from %s\n", opts.PhotosDir)
	report, err := pipeline.Run(ctx, opts.pipelineConfig(), sink, rec)
	if err != nil {
		return err
	}

	printReport(os.Stdout, report.PhotoCount, report.Analyses)
	if report.RunID != 0 {
		fmt.Fprintf(os.Stderr, "🗄️  Recorded as run %d\n", report.RunID)
	}

	fmt.Println("\nYou might now want to run:")
	for _, hint := range animate.Hints(opts.EditedDir, opts.MasksDir) {
		fmt.Println(hint)
	}
	fmt.Println("(or: growthlapse animate)")
	return nil
}

func (o Options) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		PhotosDir: o.PhotosDir,
		EditedDir: o.EditedDir,
		MasksDir:  o.MasksDir,
		Drop:      o.Drop,
		Schedule:  schedule.Schedule{FirstHour: o.FirstHour, LastHour: o.LastHour},
	}
}

// validateOptions ensures all CLI arguments are valid before touching any directory.
func validateOptions(opts *Options) error {
	info, err := os.Stat(opts.PhotosDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("photos directory %s does not exist", opts.PhotosDir)
		}
		return fmt.Errorf("unable to access photos directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("photos path %s is not a directory", opts.PhotosDir)
	}
	if opts.EditedDir == opts.PhotosDir || opts.MasksDir == opts.PhotosDir {
		return fmt.Errorf("output directories must differ from the photos directory, they are cleared on every run")
	}
	if opts.EditedDir == opts.MasksDir {
		return fmt.Errorf("edited and mask directories must be different")
	}
	for _, i := range opts.Drop {
		if i < 0 {
			return fmt.Errorf("invalid drop index %d: must be >= 0", i)
		}
	}
	if opts.FirstHour < 0 || opts.LastHour > 23 || opts.FirstHour > opts.LastHour {
		return fmt.Errorf("invalid schedule hours %d-%d", opts.FirstHour, opts.LastHour)
	}
	return nil
}

func printReport(out io.Writer, photoCount int, analyses []store.Analysis) {
	fmt.Fprintf(out, "\n📊 %d scheduled photos\n", photoCount)
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DIMENSION\tSAMPLES\tSLOPE (1/h)\tINTERCEPT\tR²\tDOUBLING")
	fmt.Fprintln(w, "---------\t-------\t-----------\t---------\t--\t--------")
	for _, a := range analyses {
		fmt.Fprintf(w, "%s\t%d\t%.5f\t%.4f\t%.3f\t%s\n",
			a.Series.Label, a.Series.Len(), a.Fit.Slope, a.Fit.Intercept, a.Fit.RSquared, fmtHours(a.Fit.DoublingHours))
	}
	w.Flush()
}

func fmtHours(h float64) string {
	if math.IsInf(h, 1) || math.IsNaN(h) {
		return "never"
	}
	return fmt.Sprintf("%.1fh", h)
}
