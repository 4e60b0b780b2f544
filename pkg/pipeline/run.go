// pkg/pipeline/run.go
package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/validator"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/warehouse"
)

// Status is the terminal status of a pipeline run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial_failure"
	StatusFailed  Status = "failed"
)

// PipelineRun is the aggregate state of one execution across all sources.
// It is exclusively owned by the runner while the run is in flight (every
// mutation goes through the lock, one mutation per completed source) and
// read-only once Run returns.
type PipelineRun struct {
	mu sync.Mutex

	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status"`

	// Duration is kept native for callers; the summary serializes it as
	// seconds so the operator-facing JSON stays readable.
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`

	SourcesProcessed  int `json:"sources_processed"`
	TotalRawRecords   int `json:"total_raw_records"`
	TotalValidRecords int `json:"total_valid_records"`
	TotalErrors       int `json:"total_errors"`

	ArtifactsWritten []string          `json:"files_uploaded"`
	SkippedSources   []string          `json:"skipped_sources,omitempty"`
	LoadFailures     map[string]string `json:"load_failures,omitempty"`
	LoadJobs         map[string]string `json:"load_jobs,omitempty"`

	ValidationSummary validator.Summary    `json:"validation_summary"`
	WarehouseInfo     *warehouse.TableInfo `json:"warehouse_info,omitempty"`

	// Error carries the fatal error message for failed runs so the
	// partial statistics remain interpretable on their own.
	Error string `json:"error,omitempty"`
}

// newPipelineRun creates the aggregate for a run starting now.
func newPipelineRun() *PipelineRun {
	return &PipelineRun{
		RunID:            uuid.New().String(),
		StartTime:        time.Now(),
		ArtifactsWritten: make([]string, 0),
		SkippedSources:   make([]string, 0),
		LoadFailures:     make(map[string]string),
		LoadJobs:         make(map[string]string),
	}
}

// addResult folds one completed source chain into the aggregate.
func (p *PipelineRun) addResult(res *SourceResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.SourcesProcessed++
	p.TotalRawRecords += res.RawCount
	p.TotalValidRecords += res.ValidCount

	if res.RawArtifact != "" {
		p.ArtifactsWritten = append(p.ArtifactsWritten, res.RawArtifact)
	}
	if res.ProcessedArtifact != "" {
		p.ArtifactsWritten = append(p.ArtifactsWritten, res.ProcessedArtifact)
	}
	if res.Skipped() {
		p.SkippedSources = append(p.SkippedSources, res.Source)
	}
	if res.LoadErr != nil {
		p.LoadFailures[res.Source] = res.LoadErr.Error()
	}
	if res.LoadJobID != "" {
		p.LoadJobs[res.Source] = res.LoadJobID
	}
}

// complete freezes the run with its terminal status.
func (p *PipelineRun) complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.EndTime = time.Now()
	p.Duration = p.EndTime.Sub(p.StartTime)
	p.DurationSeconds = p.Duration.Seconds()

	switch {
	case len(p.LoadFailures) > 0 || len(p.SkippedSources) > 0:
		p.Status = StatusPartial
	default:
		p.Status = StatusSuccess
	}
}

// fail freezes the run after an unrecoverable error, keeping whatever
// statistics accumulated before the failure.
func (p *PipelineRun) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.EndTime = time.Now()
	p.Duration = p.EndTime.Sub(p.StartTime)
	p.DurationSeconds = p.Duration.Seconds()
	p.Status = StatusFailed
	p.Error = err.Error()
}
