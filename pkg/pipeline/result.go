// pkg/pipeline/result.go
package pipeline

import (
	"time"
)

// SourceState tracks how far a source progressed through its chain.
type SourceState string

const (
	StatePending            SourceState = "pending"
	StateExtracted          SourceState = "extracted"
	StateRawPersisted       SourceState = "raw_persisted"
	StateValidated          SourceState = "validated"
	StateMasked             SourceState = "masked"
	StateProcessedPersisted SourceState = "processed_persisted"

	// Terminal states.
	StateLoaded         SourceState = "loaded"
	StateSkippedInvalid SourceState = "skipped_invalid"
	StateFailed         SourceState = "failed"
)

// SourceResult captures the outcome of one source's chain through the
// pipeline. It is owned by the worker processing the source and handed to
// the run aggregate exactly once, when the chain reaches a terminal state.
type SourceResult struct {
	Source            string
	State             SourceState
	RawCount          int
	ValidCount        int
	RawArtifact       string
	ProcessedArtifact string
	LoadJobID         string
	Issues            []string
	LoadErr           error
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// newSourceResult initializes a result for a source chain starting now.
func newSourceResult(source string) *SourceResult {
	return &SourceResult{
		Source:    source,
		State:     StatePending,
		StartTime: time.Now(),
	}
}

// complete stamps the terminal state and duration.
func (r *SourceResult) complete(state SourceState) {
	r.State = state
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// Skipped reports whether the source was skipped as schema-invalid.
func (r *SourceResult) Skipped() bool {
	return r.State == StateSkippedInvalid
}
