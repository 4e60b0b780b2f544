package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

func sampleBatch(n int) model.Batch {
	batch := model.NewBatch("hr_system", []string{
		"employee_id", "first_name", "last_name", "email", "phone", "ssn",
		"department", "position", "salary", "hire_date", "city",
		"data_source",
	})
	for i := 0; i < n; i++ {
		batch.Records = append(batch.Records, model.Employee{
			EmployeeID: fmt.Sprintf("EMP%06d", i+1),
			FirstName:  "Maria",
			LastName:   "Garcia",
			Email:      fmt.Sprintf("maria%d@example.com", i+1),
			Department: "Finance",
			Position:   "Analyst",
			HireDate:   time.Date(2022, 7, 4, 0, 0, 0, 0, time.UTC),
			DataSource: "hr_system",
			Phone:      model.StringPtr("555-123-4567"),
			Salary:     model.StringPtr("72000"),
			City:       model.StringPtr("Austin"),
		})
	}
	return batch
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	batch := sampleBatch(3)
	batch.Records[1].Phone = nil
	batch.Records[1].SSN = nil

	data, dropped, err := EncodeBatch(batch)
	require.NoError(t, err)
	assert.Zero(t, dropped)

	decoded, err := DecodeBatch(data)
	require.NoError(t, err)
	assert.Equal(t, batch.Source, decoded.Source)
	require.Len(t, decoded.Records, 3)

	assert.Equal(t, batch.Records[0].EmployeeID, decoded.Records[0].EmployeeID)
	assert.Equal(t, batch.Records[0].Email, decoded.Records[0].Email)
	assert.Equal(t, *batch.Records[0].Salary, *decoded.Records[0].Salary)
	assert.Equal(t, *batch.Records[0].City, *decoded.Records[0].City)
	assert.Nil(t, decoded.Records[1].Phone)
	assert.Nil(t, decoded.Records[1].SSN)
	assert.True(t, decoded.HasColumn("hire_date"))
	assert.False(t, decoded.HasColumn("is_masked"))
}

func TestEncodeTruncatesHireDateToDay(t *testing.T) {
	batch := sampleBatch(1)
	batch.Records[0].HireDate = time.Date(2022, 7, 4, 13, 45, 12, 0, time.UTC)

	data, _, err := EncodeBatch(batch)
	require.NoError(t, err)

	decoded, err := DecodeBatch(data)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 7, 4, 0, 0, 0, 0, time.UTC), decoded.Records[0].HireDate)
}

func TestEncodeRoundTripsMaskingProvenance(t *testing.T) {
	batch := sampleBatch(1)
	maskedAt := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)
	batch.Records[0].MaskedAt = &maskedAt
	batch.Records[0].IsMasked = true
	batch.AddColumn("masked_at")
	batch.AddColumn("is_masked")

	data, _, err := EncodeBatch(batch)
	require.NoError(t, err)

	decoded, err := DecodeBatch(data)
	require.NoError(t, err)
	assert.True(t, decoded.Records[0].IsMasked)
	require.NotNil(t, decoded.Records[0].MaskedAt)
	assert.True(t, maskedAt.Equal(*decoded.Records[0].MaskedAt))
}

func TestEncodeDropsRowsWithIncompleteIdentity(t *testing.T) {
	batch := sampleBatch(3)
	batch.Records[1].Email = ""

	data, dropped, err := EncodeBatch(batch)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	decoded, err := DecodeBatch(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Records, 2)
}

func TestEncodeFailsWhenNoRowsSurvive(t *testing.T) {
	batch := sampleBatch(2)
	batch.Records[0].EmployeeID = ""
	batch.Records[1].LastName = ""

	_, dropped, err := EncodeBatch(batch)
	require.Error(t, err)
	assert.Equal(t, 2, dropped)
	assert.Contains(t, err.Error(), "hr_system")
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"format":"rowwise/v7","rows":0}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported artifact format")
}

func TestDecodeRejectsNegativeRowCount(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"format":"columnar/v1","source":"hr_system","rows":-1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid artifact row count")
}

func TestMemoryWriteReadList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())

	id, err := m.Write(ctx, sampleBatch(5), StageRaw, "hr_system")
	require.NoError(t, err)
	assert.Regexp(t, `^raw/hr_system_\d{8}_\d{6}\.json$`, id)

	batch, err := m.Read(ctx, id)
	require.NoError(t, err)
	assert.Len(t, batch.Records, 5)

	ids, err := m.List(ctx, StageRaw, "hr_system")
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)

	// Other stages and sources stay out of the listing.
	ids, err = m.List(ctx, StageProcessed, "hr_system")
	require.NoError(t, err)
	assert.Empty(t, ids)
	ids, err = m.List(ctx, StageRaw, "payroll")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryIDsUniqueWithinSameSecond(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(zap.NewNop())

	first, err := m.Write(ctx, sampleBatch(1), StageRaw, "hr_system")
	require.NoError(t, err)
	second, err := m.Write(ctx, sampleBatch(1), StageRaw, "hr_system")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestMemoryReadUnknownArtifact(t *testing.T) {
	m := NewMemory(zap.NewNop())

	_, err := m.Read(context.Background(), "raw/nope_20240101_000000.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
