package discover

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/netseed/internal/plugin"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a run id has no stored record.
var ErrNotFound = errors.New("not found")

// Run is one persisted reconciliation run.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	TargetCount  int       `json:"target_count"`
	CreatedCount int       `json:"created_count"`
	UpdatedCount int       `json:"updated_count"`
	SkippedCount int       `json:"skipped_count"`
	ErrorCount   int       `json:"error_count"`
	Report       *Report   `json:"report,omitempty"`
}

// RunRepository persists run history.
type RunRepository interface {
	// Create inserts a run record. If run.ID is empty, a UUID is generated.
	Create(ctx context.Context, run *Run) error

	// Get returns a single run, including its full report.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, newest first, without their reports.
	List(ctx context.Context, limit int) ([]Run, error)
}

// Compile-time interface guard.
var _ RunRepository = (*SQLiteRunRepository)(nil)

// SQLiteRunRepository implements RunRepository against the discover_runs table.
type SQLiteRunRepository struct {
	db *sql.DB
}

// NewSQLiteRunRepository creates a RunRepository. The discover_runs table
// must already exist (created by this module's migrations).
func NewSQLiteRunRepository(db *sql.DB) *SQLiteRunRepository {
	return &SQLiteRunRepository{db: db}
}

// migrations returns the discover module's schema, applied through the shared store.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create discover_runs",
			Up: func(tx *sql.Tx) error {
				_, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS discover_runs (
						id            TEXT PRIMARY KEY,
						started_at    DATETIME NOT NULL,
						finished_at   DATETIME NOT NULL,
						target_count  INTEGER NOT NULL,
						created_count INTEGER NOT NULL,
						updated_count INTEGER NOT NULL,
						skipped_count INTEGER NOT NULL,
						error_count   INTEGER NOT NULL,
						report        TEXT NOT NULL
					)
				`)
				return err
			},
		},
	}
}

func (r *SQLiteRunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO discover_runs (
			id, started_at, finished_at, target_count,
			created_count, updated_count, skipped_count, error_count, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.TargetCount,
		run.CreatedCount, run.UpdatedCount, run.SkippedCount, run.ErrorCount,
		string(reportJSON),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepository) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, target_count,
			created_count, updated_count, skipped_count, error_count, report
		FROM discover_runs WHERE id = ?`, id)

	var run Run
	var reportJSON string
	err := row.Scan(
		&run.ID, &run.StartedAt, &run.FinishedAt, &run.TargetCount,
		&run.CreatedCount, &run.UpdatedCount, &run.SkippedCount, &run.ErrorCount,
		&reportJSON,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run %q: %w", id, err)
	}

	var report Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("decode run %q report: %w", id, err)
	}
	run.Report = &report
	return &run, nil
}

func (r *SQLiteRunRepository) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, target_count,
			created_count, updated_count, skipped_count, error_count
		FROM discover_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID, &run.StartedAt, &run.FinishedAt, &run.TargetCount,
			&run.CreatedCount, &run.UpdatedCount, &run.SkippedCount, &run.ErrorCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
