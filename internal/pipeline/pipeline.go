// Package pipeline runs the growth analysis end to end:
// clear outputs -> select photos -> transform -> extract -> fit -> chart.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andresmejia3/growthlapse/internal/chart"
	"github.com/andresmejia3/growthlapse/internal/fit"
	"github.com/andresmejia3/growthlapse/internal/imaging"
	"github.com/andresmejia3/growthlapse/internal/log"
	"github.com/andresmejia3/growthlapse/internal/schedule"
	"github.com/andresmejia3/growthlapse/internal/series"
	"github.com/andresmejia3/growthlapse/internal/store"
	"github.com/andresmejia3/growthlapse/internal/types"
	"github.com/andresmejia3/growthlapse/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Config points the pipeline at its three working directories.
type Config struct {
	PhotosDir string
	EditedDir string
	MasksDir  string

	// Drop holds zero-based positions in the sorted mask listing to leave out.
	Drop     []int
	Schedule schedule.Schedule

	// Progress receives the progress bar; nil means stderr.
	Progress io.Writer
}

// Recorder persists a finished run. *store.Store satisfies it.
type Recorder interface {
	RecordRun(ctx context.Context, run store.Run) (int64, error)
}

// Report is what a run produced.
type Report struct {
	RunID      int64 // 0 when the run was not recorded
	PhotoCount int
	Analyses   []store.Analysis // 2D first, then 3D
}

// Prepare clears the output directories and regenerates an edited photo and
// a mask for every scheduled raw photo. It returns the number of photos processed.
func Prepare(ctx context.Context, cfg Config) (int, error) {
	for _, dir := range []string{cfg.EditedDir, cfg.MasksDir} {
		if err := utils.ClearDir(dir); err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", dir, err)
		}
	}

	names, err := utils.SortedNames(cfg.PhotosDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list photos: %w", err)
	}
	chosen := cfg.Schedule.Select(names)
	log.Infow("selected photos", "dir", cfg.PhotosDir, "total", len(names), "scheduled", len(chosen))
	if len(chosen) == 0 {
		return 0, fmt.Errorf("no photos in %s match the capture schedule", cfg.PhotosDir)
	}

	out := cfg.Progress
	if out == nil {
		out = os.Stderr
	}
	bar := progressbar.NewOptions(len(chosen),
		progressbar.OptionSetDescription("🌱 Preparing"),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
	)

	for _, name := range chosen {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		bar.Describe("modifying: " + name)
		log.Debugf("modifying %s", name)

		err := imaging.ProcessFile(
			filepath.Join(cfg.PhotosDir, name),
			filepath.Join(cfg.EditedDir, name),
			filepath.Join(cfg.MasksDir, name),
		)
		if err != nil {
			return 0, err
		}
		bar.Add(1)
	}
	bar.Finish()
	fmt.Fprintln(out)

	return len(chosen), nil
}

// Analyze builds the 2D and 3D series from the masks, fits both and shows
// one chart per dimension on sink (2D first). A nil sink skips charting.
func Analyze(ctx context.Context, cfg Config, sink chart.Sink) ([]store.Analysis, error) {
	flat, volume, err := series.ExtractBoth(cfg.MasksDir, utils.IndexSet(cfg.Drop))
	if err != nil {
		return nil, fmt.Errorf("failed to extract growth series: %w", err)
	}

	var analyses []store.Analysis
	for _, s := range []types.GrowthSeries{flat, volume} {
		f, err := fit.Fit(s)
		if err != nil {
			return nil, fmt.Errorf("failed to fit %s series: %w", s.Label, err)
		}
		log.Infow("fitted growth", "dimension", s.Label, "samples", s.Len(),
			"slope", f.Slope, "intercept", f.Intercept, "r2", f.RSquared)
		analyses = append(analyses, store.Analysis{Series: s, Fit: f})
	}

	if sink == nil {
		return analyses, nil
	}
	for _, a := range analyses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := chart.Chart(a.Series, a.Fit, a.Series.Label)
		if err != nil {
			return nil, err
		}
		if err := sink.Show(ctx, "growth_"+a.Series.Label, p); err != nil {
			return nil, err
		}
	}
	return analyses, nil
}

// Run performs the full pipeline and, when rec is not nil, records the result.
func Run(ctx context.Context, cfg Config, sink chart.Sink, rec Recorder) (Report, error) {
	count, err := Prepare(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	analyses, err := Analyze(ctx, cfg, sink)
	if err != nil {
		return Report{}, err
	}

	report := Report{PhotoCount: count, Analyses: analyses}
	if rec == nil {
		return report, nil
	}

	id, err := rec.RecordRun(ctx, store.Run{
		PhotosDir:  cfg.PhotosDir,
		MasksDir:   cfg.MasksDir,
		PhotoCount: count,
		Dropped:    cfg.Drop,
		Analyses:   analyses,
	})
	if err != nil {
		return report, fmt.Errorf("failed to record run: %w", err)
	}
	report.RunID = id
	return report, nil
}
