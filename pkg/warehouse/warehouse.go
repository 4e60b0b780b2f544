// pkg/warehouse/warehouse.go
package warehouse

import (
	"context"
	"time"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// ColumnInfo describes one column of the analytical table.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableInfo is a point-in-time description of the analytical table.
type TableInfo struct {
	Table      string       `json:"table_id"`
	RowCount   int64        `json:"num_rows"`
	Bytes      int64        `json:"num_bytes"`
	CreatedAt  time.Time    `json:"created"`
	ModifiedAt time.Time    `json:"modified"`
	Schema     []ColumnInfo `json:"schema"`
}

// Warehouse is the analytical store the pipeline loads processed artifacts
// into. Loads are append-only and schema-additive; nothing here ever drops
// or rewrites existing data.
type Warehouse interface {
	// EnsureSchema idempotently creates the dataset and table against the
	// fixed, versioned field list.
	EnsureSchema(ctx context.Context) error

	// BulkLoad appends the rows of a processed artifact to the table and
	// returns a load job ID.
	BulkLoad(ctx context.Context, artifactID, sourceName string) (string, error)

	// Query runs ad-hoc SQL against the table; an empty query selects a
	// sample of recent rows. Results come back as open maps because
	// arbitrary projections have no fixed record shape.
	Query(ctx context.Context, query string) ([]model.RecordMap, error)

	// DescribeTable returns current table metadata.
	DescribeTable(ctx context.Context) (*TableInfo, error)
}
