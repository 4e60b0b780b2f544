package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/cleaner"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/masker"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/source"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/store"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/validator"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/warehouse"
)

var batchColumns = []string{
	"employee_id", "first_name", "last_name", "email", "phone", "ssn",
	"department", "position", "salary", "hire_date", "street_address",
	"city", "state", "zip_code", "manager_id", "performance_rating",
	"data_source",
}

// fakeSource returns a canned batch or error.
type fakeSource struct {
	name  string
	batch model.Batch
	err   error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Extract(ctx context.Context, count int) (model.Batch, error) {
	if f.err != nil {
		return model.Batch{}, f.err
	}
	return f.batch.Clone(), nil
}

// fakeWarehouse records loads and can fail per source.
type fakeWarehouse struct {
	mu        sync.Mutex
	ensureErr error
	loadErrs  map[string]error
	describeE error
	loaded    []string
}

func (f *fakeWarehouse) EnsureSchema(ctx context.Context) error { return f.ensureErr }

func (f *fakeWarehouse) BulkLoad(ctx context.Context, artifactID, sourceName string) (string, error) {
	if err := f.loadErrs[sourceName]; err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, artifactID)
	return "job-" + sourceName, nil
}

func (f *fakeWarehouse) Query(ctx context.Context, query string) ([]model.RecordMap, error) {
	return nil, nil
}

func (f *fakeWarehouse) DescribeTable(ctx context.Context) (*warehouse.TableInfo, error) {
	if f.describeE != nil {
		return nil, f.describeE
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return &warehouse.TableInfo{Table: "EMPLOYEE_RECORDS", RowCount: int64(len(f.loaded))}, nil
}

// failingStore delegates to a real store but fails writes for one stage.
type failingStore struct {
	store.ArtifactStore
	failStage store.Stage
	err       error
}

func (f *failingStore) Write(ctx context.Context, batch model.Batch, stage store.Stage, sourceName string) (string, error) {
	if stage == f.failStage {
		return "", f.err
	}
	return f.ArtifactStore.Write(ctx, batch, stage, sourceName)
}

func makeBatch(sourceName string, n int) model.Batch {
	batch := model.NewBatch(sourceName, batchColumns)
	for i := 0; i < n; i++ {
		batch.Records = append(batch.Records, model.Employee{
			EmployeeID: fmt.Sprintf("EMP%06d", i+1),
			FirstName:  "Jordan",
			LastName:   "Lee",
			Email:      fmt.Sprintf("jordan.lee%d@%s.example.com", i+1, sourceName),
			Department: "Engineering",
			Position:   "Developer",
			HireDate:   time.Date(2020, 5, 10, 0, 0, 0, 0, time.UTC),
			DataSource: sourceName,
			Phone:      model.StringPtr("555-867-5309"),
			SSN:        model.StringPtr("123-45-6789"),
			Salary:     model.StringPtr("90000"),
		})
	}
	return batch
}

func newTestRunner(sources []source.Source, artifacts store.ArtifactStore, wh warehouse.Warehouse) *Runner {
	logger := zap.NewNop()
	return NewRunner(sources, artifacts, wh, validator.New(logger), masker.New("test_salt", logger), logger)
}

func TestRunAllSourcesSucceed(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{
		&fakeSource{name: "faker", batch: makeBatch("faker", 50)},
		&fakeSource{name: "api", batch: makeBatch("api", 50)},
		&fakeSource{name: "csv", batch: makeBatch("csv", 50)},
	}

	run, err := newTestRunner(sources, artifacts, wh).WithRecordsPerSource(50).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, run.Status)
	assert.Equal(t, 3, run.SourcesProcessed)
	assert.Equal(t, 150, run.TotalRawRecords)
	assert.Equal(t, 150, run.TotalValidRecords)
	assert.Zero(t, run.TotalErrors)
	assert.Len(t, run.ArtifactsWritten, 6)
	assert.Empty(t, run.SkippedSources)
	assert.Empty(t, run.LoadFailures)
	assert.Len(t, run.LoadJobs, 3)
	assert.Len(t, wh.loaded, 3)
	require.NotNil(t, run.WarehouseInfo)
	assert.False(t, run.EndTime.IsZero())
	assert.NotEmpty(t, run.RunID)
}

func TestRunLoadsMaskedArtifacts(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{&fakeSource{name: "faker", batch: makeBatch("faker", 5)}}

	_, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, wh.loaded, 1)
	loaded, err := artifacts.Read(context.Background(), wh.loaded[0])
	require.NoError(t, err)
	for i := range loaded.Records {
		assert.True(t, loaded.Records[i].IsMasked)
		assert.NotEqual(t, "123-45-6789", *loaded.Records[i].SSN)
	}
}

func TestRunSkipsInvalidSource(t *testing.T) {
	bad := makeBatch("api", 50)
	bad.Records[0].Email = "not-an-email"

	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{
		&fakeSource{name: "faker", batch: makeBatch("faker", 50)},
		&fakeSource{name: "api", batch: bad},
		&fakeSource{name: "csv", batch: makeBatch("csv", 50)},
	}

	run, err := newTestRunner(sources, artifacts, wh).WithRecordsPerSource(50).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, run.Status)
	assert.Equal(t, 3, run.SourcesProcessed)
	assert.Equal(t, 150, run.TotalRawRecords)
	assert.Equal(t, 100, run.TotalValidRecords)
	assert.Equal(t, 1, run.TotalErrors)
	assert.Equal(t, []string{"api"}, run.SkippedSources)
	// Raw artifacts for all three sources, processed for the two valid.
	assert.Len(t, run.ArtifactsWritten, 5)
	assert.Len(t, wh.loaded, 2)

	// The skipped source's raw batch stays stored for inspection.
	ids, err := artifacts.List(context.Background(), store.StageRaw, "api")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	ids, err = artifacts.List(context.Background(), store.StageProcessed, "api")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRunExtractionFailureIsFatal(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{
		&fakeSource{name: "faker", batch: makeBatch("faker", 10)},
		&fakeSource{name: "api", err: errors.New("connection refused")},
	}

	run, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, "api", extractionErr.Source)

	assert.Equal(t, StatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
}

func TestRunRawPersistFailureIsFatal(t *testing.T) {
	artifacts := &failingStore{
		ArtifactStore: store.NewMemory(zap.NewNop()),
		failStage:     store.StageRaw,
		err:           errors.New("disk full"),
	}
	wh := &fakeWarehouse{}
	sources := []source.Source{&fakeSource{name: "faker", batch: makeBatch("faker", 10)}}

	run, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.Error(t, err)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "faker", storageErr.Source)
	assert.Equal(t, store.StageRaw, storageErr.Stage)

	assert.Equal(t, StatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
	assert.Empty(t, wh.loaded)
}

func TestRunProcessedPersistFailureIsFatal(t *testing.T) {
	artifacts := &failingStore{
		ArtifactStore: store.NewMemory(zap.NewNop()),
		failStage:     store.StageProcessed,
		err:           errors.New("disk full"),
	}
	wh := &fakeWarehouse{}
	sources := []source.Source{&fakeSource{name: "faker", batch: makeBatch("faker", 10)}}

	run, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.Error(t, err)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, store.StageProcessed, storageErr.Stage)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Empty(t, wh.loaded)

	// The raw artifact survives the failure for later reprocessing.
	ids, listErr := artifacts.List(context.Background(), store.StageRaw, "faker")
	require.NoError(t, listErr)
	assert.Len(t, ids, 1)
}

func TestRunLoadFailureIsCollected(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{loadErrs: map[string]error{"api": errors.New("load rejected")}}
	sources := []source.Source{
		&fakeSource{name: "faker", batch: makeBatch("faker", 20)},
		&fakeSource{name: "api", batch: makeBatch("api", 20)},
		&fakeSource{name: "csv", batch: makeBatch("csv", 20)},
	}

	run, err := newTestRunner(sources, artifacts, wh).WithRecordsPerSource(20).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, run.Status)
	assert.Equal(t, 3, run.SourcesProcessed)
	require.Contains(t, run.LoadFailures, "api")
	assert.Contains(t, run.LoadFailures["api"], "load rejected")
	assert.Len(t, run.LoadJobs, 2)
	assert.Len(t, wh.loaded, 2)
	// The processed artifact of the failed load remains available.
	assert.Len(t, run.ArtifactsWritten, 6)
}

func TestRunSchemaProvisioningFailureAbortsRun(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{ensureErr: errors.New("insufficient privileges")}
	sources := []source.Source{&fakeSource{name: "faker", batch: makeBatch("faker", 10)}}

	run, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, StatusFailed, run.Status)
	assert.Zero(t, run.SourcesProcessed)
	ids, _ := artifacts.List(context.Background(), store.StageRaw, "")
	assert.Empty(t, ids)
}

func TestRunDescribeFailureTolerated(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{describeE: errors.New("metadata unavailable")}
	sources := []source.Source{&fakeSource{name: "faker", batch: makeBatch("faker", 10)}}

	run, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, run.Status)
	assert.Nil(t, run.WarehouseInfo)
}

func TestRunWithNormalization(t *testing.T) {
	messy := makeBatch("faker", 5)
	messy.Records[0].Email = "  JORDAN.LEE1@faker.example.com "

	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{&fakeSource{name: "faker", batch: messy}}

	r := newTestRunner(sources, artifacts, wh).WithNormalization(cleaner.New(zap.NewNop()))
	run, err := r.Run(context.Background())
	require.NoError(t, err)

	// Without normalization the padded email would fail validation.
	assert.Equal(t, StatusSuccess, run.Status)
	assert.Empty(t, run.SkippedSources)
}

func TestRunSummarySerializesDurationAsSeconds(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{&fakeSource{name: "faker", batch: makeBatch("faker", 5)}}

	run, err := newTestRunner(sources, artifacts, wh).Run(context.Background())
	require.NoError(t, err)

	data, err := json.Marshal(run)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &summary))

	seconds, ok := summary["duration_seconds"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, seconds, 0.0)
	assert.InDelta(t, run.Duration.Seconds(), seconds, 0.001)
	// The native nanosecond value stays out of the summary.
	assert.NotContains(t, summary, "duration")
}

func TestRunWorkerLimit(t *testing.T) {
	artifacts := store.NewMemory(zap.NewNop())
	wh := &fakeWarehouse{}
	sources := []source.Source{
		&fakeSource{name: "a", batch: makeBatch("a", 10)},
		&fakeSource{name: "b", batch: makeBatch("b", 10)},
		&fakeSource{name: "c", batch: makeBatch("c", 10)},
		&fakeSource{name: "d", batch: makeBatch("d", 10)},
	}

	run, err := newTestRunner(sources, artifacts, wh).WithWorkerCount(2).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, run.SourcesProcessed)
	assert.Equal(t, StatusSuccess, run.Status)
}
