// pkg/pipeline/runner.go
package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/cleaner"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/masker"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/source"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/store"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/validator"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/warehouse"
)

// Runner drives the full pipeline: for each configured source it runs
// extract → raw persist → validate → mask → processed persist → warehouse
// load, with one worker per source and a single aggregation point for the
// run-level statistics. Source chains touch disjoint artifact names, so
// they share no record-level state.
type Runner struct {
	sources          []source.Source
	artifacts        store.ArtifactStore
	warehouse        warehouse.Warehouse
	validator        *validator.Validator
	masker           *masker.Masker
	cleaner          *cleaner.Cleaner
	logger           *zap.Logger
	recordsPerSource int
	workerCount      int
	normalize        bool
}

// NewRunner creates a pipeline runner. Client handles are passed in
// explicitly; the runner holds no process-wide state.
func NewRunner(
	sources []source.Source,
	artifacts store.ArtifactStore,
	wh warehouse.Warehouse,
	v *validator.Validator,
	m *masker.Masker,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		sources:          sources,
		artifacts:        artifacts,
		warehouse:        wh,
		validator:        v,
		masker:           m,
		logger:           logger,
		recordsPerSource: 50,
		workerCount:      len(sources),
	}
}

// WithRecordsPerSource sets how many records each source is asked for.
func (r *Runner) WithRecordsPerSource(count int) *Runner {
	if count > 0 {
		r.recordsPerSource = count
	}
	return r
}

// WithWorkerCount bounds the number of source chains in flight at once.
// Zero keeps the default of one worker per source.
func (r *Runner) WithWorkerCount(count int) *Runner {
	if count > 0 {
		r.workerCount = count
	}
	return r
}

// WithNormalization enables the cleaning step between raw persistence and
// validation.
func (r *Runner) WithNormalization(c *cleaner.Cleaner) *Runner {
	r.cleaner = c
	r.normalize = c != nil
	return r
}

// Run executes the full pipeline across all sources and returns the run
// summary. On an unrecoverable error the summary is still returned with
// its partial statistics and failed status, alongside the error itself.
func (r *Runner) Run(ctx context.Context) (*PipelineRun, error) {
	run := newPipelineRun()
	r.logger.Info("Starting pipeline run",
		zap.String("runID", run.RunID),
		zap.Int("sources", len(r.sources)),
		zap.Int("recordsPerSource", r.recordsPerSource),
		zap.Int("workers", r.workerCount))

	// Schema provisioning failures abort the run before any source work.
	if err := r.warehouse.EnsureSchema(ctx); err != nil {
		whErr := &WarehouseError{Err: err}
		run.fail(whErr)
		return run, whErr
	}

	results := make([]*SourceResult, len(r.sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount)

	for i, src := range r.sources {
		i, src := i, src
		g.Go(func() error {
			res, err := r.processSource(gctx, src)
			results[i] = res
			return err
		})
	}

	fatalErr := g.Wait()

	// Single aggregation point: fold completed chains into the run.
	for _, res := range results {
		if res == nil {
			continue
		}
		run.addResult(res)
	}

	run.ValidationSummary = r.validator.Summary()
	run.TotalErrors = run.ValidationSummary.TotalErrors

	if fatalErr != nil {
		run.fail(fatalErr)
		r.logger.Error("Pipeline run failed",
			zap.String("runID", run.RunID),
			zap.Int("sourcesProcessed", run.SourcesProcessed),
			zap.Error(fatalErr))
		return run, fatalErr
	}

	// Table metadata is best-effort: a lookup failure leaves the field
	// empty rather than failing a run whose data work already finished.
	if info, err := r.warehouse.DescribeTable(ctx); err != nil {
		r.logger.Warn("Could not get warehouse table info", zap.Error(err))
	} else {
		run.WarehouseInfo = info
	}

	run.complete()
	r.logger.Info("Pipeline run completed",
		zap.String("runID", run.RunID),
		zap.String("status", string(run.Status)),
		zap.Int("sourcesProcessed", run.SourcesProcessed),
		zap.Int("totalRawRecords", run.TotalRawRecords),
		zap.Int("totalValidRecords", run.TotalValidRecords),
		zap.Int("totalErrors", run.TotalErrors),
		zap.Int("artifactsWritten", len(run.ArtifactsWritten)),
		zap.Duration("duration", run.Duration))
	return run, nil
}

// processSource drives one source through the whole chain. A nil error
// with a terminal result means the chain ended in Loaded, SkippedInvalid
// or a collected load failure; a non-nil error is fatal to the run.
func (r *Runner) processSource(ctx context.Context, src source.Source) (*SourceResult, error) {
	name := src.Name()
	logger := r.logger.With(zap.String("source", name))
	res := newSourceResult(name)

	// Extract.
	batch, err := src.Extract(ctx, r.recordsPerSource)
	if err != nil {
		res.complete(StateFailed)
		return res, &ExtractionError{Source: name, Err: err}
	}
	if batch.Len() < r.recordsPerSource {
		logger.Warn("Source returned fewer records than requested",
			zap.Int("requested", r.recordsPerSource),
			zap.Int("returned", batch.Len()))
	}
	res.RawCount = batch.Len()
	res.State = StateExtracted

	// Persist raw. Raw artifacts are the source of truth; losing one
	// cannot be silently ignored.
	rawID, err := r.artifacts.Write(ctx, batch, store.StageRaw, name)
	if err != nil {
		res.complete(StateFailed)
		return res, &StorageError{Source: name, Stage: store.StageRaw, Err: err}
	}
	res.RawArtifact = rawID
	res.State = StateRawPersisted

	// Processing works from the persisted artifact, not the in-memory
	// batch, so what gets validated is exactly what was stored.
	working, err := r.artifacts.Read(ctx, rawID)
	if err != nil {
		res.complete(StateFailed)
		return res, &StorageError{Source: name, Stage: store.StageRaw, Artifact: rawID, Err: err}
	}

	if r.normalize {
		working, _ = r.cleaner.NormalizeBatch(working)
	}

	// Validate. Failures here are data, not errors: the source is
	// skipped, its raw artifact stays stored, and the run moves on.
	valid, issues := r.validator.Validate(working)
	if !valid {
		logger.Warn("Validation failed, skipping source", zap.Int("issues", len(issues)))
		for _, issue := range issues {
			logger.Warn("Validation issue", zap.String("issue", issue))
		}
		res.Issues = issues
		res.complete(StateSkippedInvalid)
		return res, nil
	}
	res.State = StateValidated

	// Mask.
	masked := r.masker.Mask(working)
	res.State = StateMasked

	// Persist processed.
	procID, err := r.artifacts.Write(ctx, masked, store.StageProcessed, name)
	if err != nil {
		res.complete(StateFailed)
		return res, &StorageError{Source: name, Stage: store.StageProcessed, Err: err}
	}
	res.ProcessedArtifact = procID
	res.ValidCount = masked.Len()
	res.State = StateProcessedPersisted

	// Load. Per-source load failures are collected; the other sources
	// keep loading.
	jobID, err := r.warehouse.BulkLoad(ctx, procID, name)
	if err != nil {
		res.LoadErr = &WarehouseError{Source: name, Artifact: procID, Err: err}
		logger.Error("Warehouse load failed", zap.Error(res.LoadErr))
		res.complete(StateFailed)
		return res, nil
	}
	res.LoadJobID = jobID
	res.complete(StateLoaded)

	logger.Info("Source chain completed",
		zap.String("state", string(res.State)),
		zap.Int("rawRecords", res.RawCount),
		zap.Int("validRecords", res.ValidCount),
		zap.String("loadJobID", res.LoadJobID),
		zap.Duration("duration", res.Duration))
	return res, nil
}
