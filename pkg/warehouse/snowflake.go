// pkg/warehouse/snowflake.go
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/config"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/schema"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/store"
)

// Snowflake loads processed artifacts into an analytical Snowflake table.
// Artifacts are fetched from the artifact store and appended row by row in
// a single transaction per load job.
type Snowflake struct {
	db      *sqlx.DB
	store   store.ArtifactStore
	cfg     *config.SnowflakeConfig
	logger  *zap.Logger
	timeout time.Duration
}

// NewSnowflake creates a Snowflake warehouse client.
func NewSnowflake(db *sqlx.DB, artifacts store.ArtifactStore, cfg *config.SnowflakeConfig, logger *zap.Logger) (*Snowflake, error) {
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}
	if artifacts == nil {
		return nil, errors.New("artifact store cannot be nil")
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Snowflake{
		db:      db,
		store:   artifacts,
		cfg:     cfg,
		logger:  logger,
		timeout: timeout,
	}, nil
}

// fullTableName returns the qualified analytical table name.
func (s *Snowflake) fullTableName() string {
	return fmt.Sprintf("%s.%s.%s", s.cfg.Database, s.cfg.Schema, s.cfg.Table)
}

// EnsureSchema creates the dataset and table if they do not exist. Safe to
// call before every load.
func (s *Snowflake) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	schemaSQL := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s.%s", s.cfg.Database, s.cfg.Schema)
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema %s.%s: %w", s.cfg.Database, s.cfg.Schema, err)
	}

	cols := make([]string, 0, len(schema.WarehouseColumns))
	for _, col := range schema.WarehouseColumns {
		cols = append(cols, fmt.Sprintf("%s %s", col.Name, col.Type))
	}
	tableSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.fullTableName(), strings.Join(cols, ", "))
	if _, err := s.db.ExecContext(ctx, tableSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.fullTableName(), err)
	}

	s.logger.Info("Ensured warehouse schema exists",
		zap.String("table", s.fullTableName()),
		zap.String("version", schema.Version))
	return nil
}

// BulkLoad appends every row of the named artifact to the analytical table
// and returns the load job ID.
func (s *Snowflake) BulkLoad(ctx context.Context, artifactID, sourceName string) (string, error) {
	batch, err := s.store.Read(ctx, artifactID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch artifact for load: %w", err)
	}

	jobID := uuid.New().String()
	loadedAt := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin load transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := make([]string, len(schema.WarehouseColumns))
	names := make([]string, len(schema.WarehouseColumns))
	for i, col := range schema.WarehouseColumns {
		placeholders[i] = "?"
		names[i] = col.Name
	}
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.fullTableName(), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PreparexContext(ctx, insertSQL)
	if err != nil {
		return "", fmt.Errorf("failed to prepare load statement: %w", err)
	}
	defer stmt.Close()

	for i := range batch.Records {
		if _, err := stmt.ExecContext(ctx, rowArgs(&batch.Records[i], loadedAt)...); err != nil {
			return "", fmt.Errorf("failed to load row %d of %s: %w", i+1, artifactID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit load of %s: %w", artifactID, err)
	}

	s.logger.Info("Bulk load completed",
		zap.String("jobID", jobID),
		zap.String("artifact", artifactID),
		zap.String("source", sourceName),
		zap.Int("rowsLoaded", batch.Len()),
		zap.String("table", s.fullTableName()))
	return jobID, nil
}

// rowArgs renders a record in warehouse column order.
func rowArgs(rec *model.Employee, loadedAt time.Time) []interface{} {
	var hireDate interface{}
	if !rec.HireDate.IsZero() {
		hireDate = rec.HireDate.Format("2006-01-02")
	}

	var maskedAt interface{}
	if rec.MaskedAt != nil {
		maskedAt = *rec.MaskedAt
	}

	return []interface{}{
		rec.EmployeeID,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		optArg(rec.Phone),
		optArg(rec.SSN),
		rec.Department,
		rec.Position,
		optArg(rec.Salary),
		hireDate,
		optArg(rec.StreetAddress),
		optArg(rec.City),
		optArg(rec.State),
		optArg(rec.ZipCode),
		optArg(rec.ManagerID),
		optArg(rec.PerformanceRating),
		loadedAt,
		rec.DataSource,
		maskedAt,
		rec.IsMasked,
	}
}

func optArg(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Query runs ad-hoc SQL against the warehouse; an empty query selects a
// sample of recent rows.
func (s *Snowflake) Query(ctx context.Context, query string) ([]model.RecordMap, error) {
	if query == "" {
		query = fmt.Sprintf("SELECT * FROM %s LIMIT 100", s.fullTableName())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouse: %w", err)
	}
	defer rows.Close()

	results := make([]model.RecordMap, 0)
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse row: %w", err)
		}
		results = append(results, model.RecordMap(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warehouse rows: %w", err)
	}

	s.logger.Info("Warehouse query executed", zap.Int("rows", len(results)))
	return results, nil
}

// DescribeTable returns current metadata for the analytical table.
func (s *Snowflake) DescribeTable(ctx context.Context) (*TableInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	info := &TableInfo{Table: s.cfg.Table}

	metaSQL := fmt.Sprintf(`
		SELECT ROW_COUNT, BYTES, CREATED, LAST_ALTERED
		FROM %s.INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
	`, s.cfg.Database)

	var rowCount, bytes sql.NullInt64
	var created, modified sql.NullTime
	err := s.db.QueryRowxContext(ctx, metaSQL, s.cfg.Schema, s.cfg.Table).
		Scan(&rowCount, &bytes, &created, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s does not exist", s.fullTableName())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", s.fullTableName(), err)
	}

	info.RowCount = rowCount.Int64
	info.Bytes = bytes.Int64
	info.CreatedAt = created.Time
	info.ModifiedAt = modified.Time

	colSQL := fmt.Sprintf(`
		SELECT COLUMN_NAME, DATA_TYPE
		FROM %s.INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`, s.cfg.Database)

	rows, err := s.db.QueryxContext(ctx, colSQL, s.cfg.Schema, s.cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", s.fullTableName(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		info.Schema = append(info.Schema, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column metadata: %w", err)
	}

	return info, nil
}
