package cleaner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

func messyBatch() model.Batch {
	batch := model.NewBatch("hr_system", []string{
		"employee_id", "first_name", "last_name", "email",
		"department", "position", "hire_date", "data_source",
	})
	batch.Records = append(batch.Records, model.Employee{
		EmployeeID: " EMP000001 ",
		FirstName:  "Dana ",
		LastName:   "White",
		Email:      "  Dana.White@Example.COM ",
		Department: "Legal",
		Position:   "Counsel",
		HireDate:   time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC),
		DataSource: "hr_system",
	})
	return batch
}

func TestNormalizeBatch(t *testing.T) {
	cleaned, ops := New(zap.NewNop()).NormalizeBatch(messyBatch())

	require.Len(t, cleaned.Records, 1)
	assert.Equal(t, "EMP000001", cleaned.Records[0].EmployeeID)
	assert.Equal(t, "Dana", cleaned.Records[0].FirstName)
	assert.Equal(t, "dana.white@example.com", cleaned.Records[0].Email)

	require.Len(t, ops, 3)
	byField := make(map[string]Operation)
	for _, op := range ops {
		byField[op.Field] = op
	}
	assert.Equal(t, "email_normalization", byField["email"].Name)
	assert.Equal(t, "  Dana.White@Example.COM ", byField["email"].OriginalValue)
	assert.Equal(t, "whitespace_trim", byField["employee_id"].Name)
	assert.Equal(t, "whitespace_trim", byField["first_name"].Name)
}

func TestNormalizeBatchDoesNotMutateInput(t *testing.T) {
	batch := messyBatch()

	_, _ = New(zap.NewNop()).NormalizeBatch(batch)

	assert.Equal(t, " EMP000001 ", batch.Records[0].EmployeeID)
	assert.Equal(t, "  Dana.White@Example.COM ", batch.Records[0].Email)
}

func TestNormalizeCleanBatchIsNoOp(t *testing.T) {
	batch := messyBatch()
	batch.Records[0] = model.Employee{
		EmployeeID: "EMP000001",
		FirstName:  "Dana",
		LastName:   "White",
		Email:      "dana.white@example.com",
		Department: "Legal",
		Position:   "Counsel",
		HireDate:   time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC),
		DataSource: "hr_system",
	}

	cleaned, ops := New(zap.NewNop()).NormalizeBatch(batch)
	assert.Empty(t, ops)
	assert.Equal(t, batch.Records[0], cleaned.Records[0])
}
