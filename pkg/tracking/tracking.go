// pkg/tracking/tracking.go
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/pipeline"
)

// RunStore keeps a local history of pipeline runs in SQLite so operators
// can inspect past executions without digging through logs.
type RunStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// RunRecord is one row of the run history.
type RunRecord struct {
	RunID             string    `db:"run_id" json:"run_id"`
	Status            string    `db:"status" json:"status"`
	StartedAt         time.Time `db:"started_at" json:"started_at"`
	EndedAt           time.Time `db:"ended_at" json:"ended_at"`
	DurationMS        int64     `db:"duration_ms" json:"duration_ms"`
	SourcesProcessed  int       `db:"sources_processed" json:"sources_processed"`
	TotalRawRecords   int       `db:"total_raw_records" json:"total_raw_records"`
	TotalValidRecords int       `db:"total_valid_records" json:"total_valid_records"`
	TotalErrors       int       `db:"total_errors" json:"total_errors"`
	Summary           string    `db:"summary" json:"summary"`
}

// Open creates or opens the run-history database at the given path.
func Open(path string, logger *zap.Logger) (*RunStore, error) {
	if path == "" {
		return nil, errors.New("tracking database path cannot be empty")
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tracking database %s: %w", path, err)
	}

	s := &RunStore{db: db, logger: logger}
	if err := s.ensureTable(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *RunStore) ensureTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS pipeline_runs (
			run_id              TEXT PRIMARY KEY,
			status              TEXT NOT NULL,
			started_at          TIMESTAMP NOT NULL,
			ended_at            TIMESTAMP NOT NULL,
			duration_ms         INTEGER NOT NULL,
			sources_processed   INTEGER NOT NULL,
			total_raw_records   INTEGER NOT NULL,
			total_valid_records INTEGER NOT NULL,
			total_errors        INTEGER NOT NULL,
			summary             TEXT NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create pipeline_runs table: %w", err)
	}
	return nil
}

// SaveRun records a finished run, summary JSON included.
func (s *RunStore) SaveRun(ctx context.Context, run *pipeline.PipelineRun) error {
	summary, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}

	insertSQL := `
		INSERT INTO pipeline_runs (
			run_id, status, started_at, ended_at, duration_ms,
			sources_processed, total_raw_records, total_valid_records,
			total_errors, summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, insertSQL,
		run.RunID,
		string(run.Status),
		run.StartTime,
		run.EndTime,
		run.Duration.Milliseconds(),
		run.SourcesProcessed,
		run.TotalRawRecords,
		run.TotalValidRecords,
		run.TotalErrors,
		string(summary),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}

	s.logger.Info("Run saved to history",
		zap.String("runID", run.RunID),
		zap.String("status", string(run.Status)))
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	records := make([]RunRecord, 0, limit)
	err := s.db.SelectContext(ctx, &records,
		`SELECT * FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return records, nil
}

// Close releases the underlying database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}
