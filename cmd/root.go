package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andresmejia3/growthlapse/internal/chart"
	"github.com/andresmejia3/growthlapse/internal/log"
	"github.com/andresmejia3/growthlapse/internal/store"
	"github.com/andresmejia3/growthlapse/internal/utils"
	"github.com/spf13/cobra"
)

// Options holds shared configuration for the pipeline commands
type Options struct {
	PhotosDir string
	EditedDir string
	MasksDir  string
	Drop      []int
	FirstHour int
	LastHour  int
	Sink      string
	PlotDir   string
	Viewer    string
}

var (
	// DB is the optional result store; nil when no database is configured
	DB *store.Store
	// dbURL is the connection string
	dbURL string
	debug bool
	opts  Options
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "growthlapse",
	Short:   "Estimate exponential growth from timelapse photos",
	Long:    "Crops and thresholds scheduled timelapse photos, turns the masks into a growth series and fits an exponential to it (2D area and 3D volume). Run without a subcommand to do everything.",
	Version: Version, // This enables the --version flag
	Args:    cobra.NoArgs,
	// Errors are shown once, in the error box, by Execute
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.Init(debug); err != nil {
			return err
		}

		url := resolveDBURL(dbURL)
		if url == "" {
			return nil
		}
		// Use the command's context (which will be cancellable) for the connection
		var err error
		DB, err = store.New(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if DB != nil {
			// Use Background here because the main context might be cancelled already (due to Ctrl+C)
			DB.Close(context.Background())
			DB = nil
		}
		log.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runPipeline(cmd.Context(), opts)
	},
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.ShowError("Run aborted", err, nil)
		stop()
		os.Exit(1)
	}
}

// resolveDBURL prefers the --db flag and otherwise builds a connection string
// from the POSTGRES_* environment. An empty result disables the result store.
func resolveDBURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")
	name := os.Getenv("POSTGRES_DB")
	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}
	if name == "" {
		name = "growthlapse"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbURL, "db", "", "PostgreSQL connection string for run history (default: built from POSTGRES_* env, disabled if unset)")
	pf.BoolVar(&debug, "debug", false, "Enable human-readable debug logging")

	pf.StringVarP(&opts.PhotosDir, "photos", "p", "photos", "Directory of raw timestamped photos")
	pf.StringVar(&opts.EditedDir, "edited", "photos_edited", "Output directory for cropped and resized photos (cleared every run)")
	pf.StringVar(&opts.MasksDir, "masks", "photos_threshold", "Output directory for thresholded masks (cleared every run)")
	pf.IntSliceVar(&opts.Drop, "drop", []int{3, 9}, "Zero-based positions in the sorted mask listing to leave out of the series")
	pf.IntVar(&opts.FirstHour, "first-hour", 6, "Earliest capture hour on the schedule (inclusive)")
	pf.IntVar(&opts.LastHour, "last-hour", 20, "Latest capture hour on the schedule (inclusive)")
	pf.StringVarP(&opts.Sink, "sink", "s", chart.KindWindow, "Where charts go: window (blocks until closed) or file")
	pf.StringVar(&opts.PlotDir, "plot-dir", "plots", "Directory for rendered charts")
	pf.StringVar(&opts.Viewer, "viewer", chart.DefaultViewer, "Image viewer used by the window sink")
}
