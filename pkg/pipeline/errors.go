// pkg/pipeline/errors.go
package pipeline

import (
	"fmt"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/store"
)

// The pipeline distinguishes failures by which boundary they crossed.
// Validation problems are never errors: they travel as result values with
// issue lists. Everything below is an I/O-boundary failure with the
// offending source (and artifact, where one exists) attached.

// ExtractionError reports a source that could not deliver its batch.
// Fatal to the whole run: the source list and record counts are fixed
// inputs known before the run starts.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for source %q: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StorageError reports an artifact write or read failure. Fatal for both
// stages: raw data is the system's source of truth, and a processed batch
// that cannot be persisted cannot be loaded either.
type StorageError struct {
	Source   string
	Stage    store.Stage
	Artifact string
	Err      error
}

func (e *StorageError) Error() string {
	if e.Artifact != "" {
		return fmt.Sprintf("%s storage failed for source %q (artifact %s): %v", e.Stage, e.Source, e.Artifact, e.Err)
	}
	return fmt.Sprintf("%s storage failed for source %q: %v", e.Stage, e.Source, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// WarehouseError reports a bulk-load or schema-provisioning failure.
// Schema provisioning aborts the run; per-source load failures are
// collected and the remaining sources keep loading.
type WarehouseError struct {
	Source   string
	Artifact string
	Err      error
}

func (e *WarehouseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("warehouse schema provisioning failed: %v", e.Err)
	}
	return fmt.Sprintf("warehouse load failed for source %q (artifact %s): %v", e.Source, e.Artifact, e.Err)
}

func (e *WarehouseError) Unwrap() error { return e.Err }
