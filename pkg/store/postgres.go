// pkg/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// Postgres persists artifacts as rows in a pipeline_artifacts table, one
// bytea body per (stage, source, run-timestamp) triple.
type Postgres struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgres creates the store and ensures the artifacts table exists.
func NewPostgres(db *sqlx.DB, logger *zap.Logger) (*Postgres, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	p := &Postgres{db: db, logger: logger}
	if err := p.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to setup artifacts table: %w", err)
	}
	return p, nil
}

func (p *Postgres) ensureTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS pipeline_artifacts (
			artifact_id TEXT PRIMARY KEY,
			stage       TEXT NOT NULL,
			source_name TEXT NOT NULL,
			body        BYTEA NOT NULL,
			row_count   INTEGER NOT NULL,
			created_at  TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := p.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create pipeline_artifacts: %w", err)
	}

	p.logger.Info("Ensured pipeline_artifacts table exists")
	return nil
}

// Write encodes and stores the batch, returning its artifact ID.
func (p *Postgres) Write(ctx context.Context, batch model.Batch, stage Stage, sourceName string) (string, error) {
	data, dropped, err := EncodeBatch(batch)
	if err != nil {
		return "", err
	}
	if dropped > 0 {
		p.logger.Warn("Dropped rows with incomplete identity fields",
			zap.String("source", sourceName),
			zap.String("stage", string(stage)),
			zap.Int("dropped", dropped))
	}

	id := artifactID(stage, sourceName, time.Now())
	rows := batch.Len() - dropped

	insertSQL := `
		INSERT INTO pipeline_artifacts (artifact_id, stage, source_name, body, row_count)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := p.db.ExecContext(ctx, insertSQL, id, string(stage), sourceName, data, rows); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", id, err)
	}

	p.logger.Info("Artifact written",
		zap.String("artifact", id),
		zap.String("stage", string(stage)),
		zap.String("source", sourceName),
		zap.Int("rows", rows),
		zap.Int("bytes", len(data)))
	return id, nil
}

// Read loads and decodes an artifact by ID.
func (p *Postgres) Read(ctx context.Context, artifactID string) (model.Batch, error) {
	var body []byte
	err := p.db.GetContext(ctx, &body,
		`SELECT body FROM pipeline_artifacts WHERE artifact_id = $1`, artifactID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Batch{}, fmt.Errorf("artifact %s: %w", artifactID, ErrNotFound)
	}
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to read artifact %s: %w", artifactID, err)
	}
	if len(body) == 0 {
		return model.Batch{}, fmt.Errorf("artifact %s: %w", artifactID, ErrEmpty)
	}

	batch, err := DecodeBatch(body)
	if err != nil {
		return model.Batch{}, fmt.Errorf("artifact %s: %w", artifactID, err)
	}

	p.logger.Info("Artifact read",
		zap.String("artifact", artifactID),
		zap.Int("rows", batch.Len()))
	return batch, nil
}

// List returns artifact IDs for a stage, newest last. An empty sourceName
// matches every source.
func (p *Postgres) List(ctx context.Context, stage Stage, sourceName string) ([]string, error) {
	query := `SELECT artifact_id FROM pipeline_artifacts WHERE stage = $1 ORDER BY artifact_id`
	args := []interface{}{string(stage)}
	if sourceName != "" {
		query = `SELECT artifact_id FROM pipeline_artifacts WHERE stage = $1 AND source_name = $2 ORDER BY artifact_id`
		args = append(args, sourceName)
	}

	ids := make([]string, 0)
	if err := p.db.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s artifacts: %w", stage, err)
	}
	return ids, nil
}
