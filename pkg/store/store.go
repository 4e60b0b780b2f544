// pkg/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// Stage identifies which side of processing an artifact belongs to.
type Stage string

const (
	StageRaw       Stage = "raw"
	StageProcessed Stage = "processed"
)

// Sentinel errors returned by artifact reads.
var (
	ErrNotFound = errors.New("artifact not found")
	ErrEmpty    = errors.New("artifact is empty")
)

// ArtifactStore persists batches as versioned columnar artifacts. Artifact
// IDs embed stage, source name and a second-resolution timestamp, so they
// are unique per (stage, source, run) and sort chronologically.
type ArtifactStore interface {
	// Write persists the batch and returns the artifact ID. Rows with
	// empty identity fields are dropped before persistence; writing a
	// batch with no surviving rows fails loudly.
	Write(ctx context.Context, batch model.Batch, stage Stage, sourceName string) (string, error)

	// Read loads a previously written artifact. Missing artifacts return
	// ErrNotFound, zero-length ones ErrEmpty.
	Read(ctx context.Context, artifactID string) (model.Batch, error)

	// List returns artifact IDs for a stage, optionally filtered by
	// source name ("" matches all sources).
	List(ctx context.Context, stage Stage, sourceName string) ([]string, error)
}

// artifactID builds the canonical artifact name for a batch written now.
func artifactID(stage Stage, sourceName string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%s.json", stage, sourceName, now.Format("20060102_150405"))
}
