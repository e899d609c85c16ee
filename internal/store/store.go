package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andresmejia3/growthlapse/internal/types"
	"github.com/jackc/pgx/v5"
)

// Store manages the PostgreSQL connection holding the history of growth runs.
type Store struct {
	conn *pgx.Conn
}

// Run is one recorded pipeline run.
type Run struct {
	ID         int64
	PhotosDir  string
	MasksDir   string
	PhotoCount int   // Photos that passed the capture schedule
	Dropped    []int // Mask positions excluded from the series
	CreatedAt  time.Time
	Analyses   []Analysis
}

// Analysis pairs a series with its fit. The series label is the dimension.
type Analysis struct {
	Series types.GrowthSeries
	Fit    types.FitResult
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the necessary tables if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS growth_runs (
			id BIGSERIAL PRIMARY KEY,
			photos_dir TEXT NOT NULL,
			masks_dir TEXT NOT NULL,
			photo_count INT NOT NULL,
			dropped INT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS growth_fits (
			run_id BIGINT REFERENCES growth_runs(id) ON DELETE CASCADE,
			dimension TEXT NOT NULL,
			slope DOUBLE PRECISION NOT NULL,
			intercept DOUBLE PRECISION NOT NULL,
			r_squared DOUBLE PRECISION NOT NULL,
			doubling_hours DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, dimension)
		);
		CREATE TABLE IF NOT EXISTS growth_samples (
			run_id BIGINT REFERENCES growth_runs(id) ON DELETE CASCADE,
			dimension TEXT NOT NULL,
			position INT NOT NULL,
			filename TEXT NOT NULL,
			hours BIGINT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, dimension, position)
		);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// RecordRun saves a run with all of its series and fits in one transaction
// and returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	dropped := run.Dropped
	if dropped == nil {
		dropped = []int{}
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO growth_runs (photos_dir, masks_dir, photo_count, dropped)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, run.PhotosDir, run.MasksDir, run.PhotoCount, dropped).Scan(&id)
	if err != nil {
		return 0, err
	}

	for _, a := range run.Analyses {
		_, err := tx.Exec(ctx, `
			INSERT INTO growth_fits (run_id, dimension, slope, intercept, r_squared, doubling_hours)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, id, a.Series.Label, a.Fit.Slope, a.Fit.Intercept, a.Fit.RSquared, a.Fit.DoublingHours)
		if err != nil {
			return 0, fmt.Errorf("failed to save %s fit: %w", a.Series.Label, err)
		}

		rows := make([][]any, a.Series.Len())
		for i := range a.Series.X {
			filename := ""
			if i < len(a.Series.Files) {
				filename = a.Series.Files[i]
			}
			rows[i] = []any{id, a.Series.Label, i, filename, a.Series.X[i], a.Series.Y[i]}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"growth_samples"},
			[]string{"run_id", "dimension", "position", "filename", "hours", "value"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save %s samples: %w", a.Series.Label, err)
		}
	}

	return id, tx.Commit(ctx)
}

// ListRuns returns every recorded run, oldest first, with fits but without samples.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, photos_dir, masks_dir, photo_count, dropped, created_at
		FROM growth_runs
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Run, error) {
		var r Run
		err := row.Scan(&r.ID, &r.PhotosDir, &r.MasksDir, &r.PhotoCount, &r.Dropped, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, err
	}

	for i := range runs {
		fits, err := s.GetFits(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		for _, dim := range sortedKeys(fits) {
			runs[i].Analyses = append(runs[i].Analyses, Analysis{
				Series: types.GrowthSeries{Label: dim},
				Fit:    fits[dim],
			})
		}
	}
	return runs, nil
}

// GetFits returns the fits of a run keyed by dimension.
func (s *Store) GetFits(ctx context.Context, runID int64) (map[string]types.FitResult, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT dimension, slope, intercept, r_squared, doubling_hours
		FROM growth_fits
		WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fits := make(map[string]types.FitResult)
	for rows.Next() {
		var dim string
		var f types.FitResult
		if err := rows.Scan(&dim, &f.Slope, &f.Intercept, &f.RSquared, &f.DoublingHours); err != nil {
			return nil, err
		}
		fits[dim] = f
	}
	return fits, rows.Err()
}

// GetSeries reloads the samples of one dimension of a run.
func (s *Store) GetSeries(ctx context.Context, runID int64, dimension string) (types.GrowthSeries, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT filename, hours, value
		FROM growth_samples
		WHERE run_id = $1 AND dimension = $2
		ORDER BY position ASC
	`, runID, dimension)
	if err != nil {
		return types.GrowthSeries{}, err
	}
	defer rows.Close()

	series := types.GrowthSeries{Label: dimension}
	for rows.Next() {
		var name string
		var x int64
		var y float64
		if err := rows.Scan(&name, &x, &y); err != nil {
			return types.GrowthSeries{}, err
		}
		series.Files = append(series.Files, name)
		series.X = append(series.X, x)
		series.Y = append(series.Y, y)
	}
	return series, rows.Err()
}

// Reset drops all application tables to clear the database state.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS growth_samples CASCADE;
		DROP TABLE IF EXISTS growth_fits CASCADE;
		DROP TABLE IF EXISTS growth_runs CASCADE;
	`)
	return err
}

func sortedKeys(m map[string]types.FitResult) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
