package validator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

var allColumns = []string{
	"employee_id", "first_name", "last_name", "email", "phone", "ssn",
	"department", "position", "salary", "hire_date", "street_address",
	"city", "state", "zip_code", "manager_id", "performance_rating",
	"data_source",
}

func validRecord(i int) model.Employee {
	return model.Employee{
		EmployeeID: fmt.Sprintf("EMP%06d", i+1),
		FirstName:  "Alice",
		LastName:   "Smith",
		Email:      fmt.Sprintf("alice.smith%d@example.com", i+1),
		Department: "Engineering",
		Position:   "Developer",
		HireDate:   time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC),
		DataSource: "test",
		Salary:     model.StringPtr("85000"),
	}
}

func validBatch(n int) model.Batch {
	batch := model.NewBatch("test", allColumns)
	for i := 0; i < n; i++ {
		batch.Records = append(batch.Records, validRecord(i))
	}
	return batch
}

func TestValidateCleanBatch(t *testing.T) {
	v := New(zap.NewNop())

	valid, issues := v.Validate(validBatch(10))
	assert.True(t, valid)
	assert.Empty(t, issues)
}

func TestValidateEmptyBatch(t *testing.T) {
	v := New(zap.NewNop())

	valid, issues := v.Validate(model.NewBatch("test", allColumns))
	assert.False(t, valid)
	require.Len(t, issues, 1)
	assert.Equal(t, "empty batch", issues[0])
}

func TestValidateMissingRequiredColumnsShortCircuits(t *testing.T) {
	batch := validBatch(3)
	batch.Columns = []string{"employee_id", "first_name", "last_name"}
	// Record-level problems must not be reported when columns are missing.
	batch.Records[0].Email = "broken"

	v := New(zap.NewNop())
	valid, issues := v.Validate(batch)
	assert.False(t, valid)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "missing required columns")
	assert.Contains(t, issues[0], "email")
	assert.Contains(t, issues[0], "hire_date")
}

func TestValidateCollectsAllViolations(t *testing.T) {
	batch := validBatch(5)
	batch.Records[1].Email = "not-an-email"
	batch.Records[3].Salary = model.StringPtr("-100")
	batch.Records[4].HireDate = time.Now().Add(48 * time.Hour)

	v := New(zap.NewNop())
	valid, issues := v.Validate(batch)
	assert.False(t, valid)
	require.Len(t, issues, 3)
	assert.Contains(t, issues[0], "Row 2: email: invalid email format")
	assert.Contains(t, issues[1], "Row 4: salary: value must be greater than or equal to 0")
	assert.Contains(t, issues[2], "Row 5: hire_date: hire date cannot be in the future")
}

func TestValidateNullRequiredFieldCountedPerColumn(t *testing.T) {
	batch := validBatch(4)
	batch.Records[0].FirstName = ""
	batch.Records[2].FirstName = ""

	v := New(zap.NewNop())
	valid, issues := v.Validate(batch)
	assert.False(t, valid)
	require.Len(t, issues, 1)
	assert.Equal(t, "column first_name contains 2 null values in a required field", issues[0])
}

func TestValidateDuplicateEmployeeIDs(t *testing.T) {
	batch := validBatch(5)
	batch.Records[2].EmployeeID = batch.Records[0].EmployeeID
	batch.Records[4].EmployeeID = batch.Records[0].EmployeeID

	v := New(zap.NewNop())
	valid, issues := v.Validate(batch)
	assert.False(t, valid)
	require.Len(t, issues, 1)
	assert.Equal(t, "duplicate employee_id values found: 2 cases", issues[0])
}

func TestValidateLengthBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *model.Employee)
		want   string
	}{
		{
			name:   "employee_id too short",
			mutate: func(e *model.Employee) { e.EmployeeID = "EMP1" },
			want:   "employee_id: length must be between 6 and 10 characters",
		},
		{
			name:   "employee_id too long",
			mutate: func(e *model.Employee) { e.EmployeeID = "EMP00000001" },
			want:   "employee_id: length must be between 6 and 10 characters",
		},
		{
			name:   "first_name too short",
			mutate: func(e *model.Employee) { e.FirstName = "A" },
			want:   "first_name: length must be between 2 and 50 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := validBatch(1)
			tt.mutate(&batch.Records[0])

			v := New(zap.NewNop())
			valid, issues := v.Validate(batch)
			assert.False(t, valid)
			require.Len(t, issues, 1)
			assert.Equal(t, "Row 1: "+tt.want, issues[0])
		})
	}
}

func TestValidateNonNumericSalary(t *testing.T) {
	batch := validBatch(1)
	batch.Records[0].Salary = model.StringPtr("lots")

	v := New(zap.NewNop())
	valid, issues := v.Validate(batch)
	assert.False(t, valid)
	require.Len(t, issues, 1)
	assert.Equal(t, "Row 1: salary: value is not numeric", issues[0])
}

func TestValidateMaskedSalaryExempt(t *testing.T) {
	batch := validBatch(1)
	batch.Records[0].Salary = model.StringPtr("TOKEN_AB12CD34")
	batch.Records[0].IsMasked = true

	v := New(zap.NewNop())
	valid, issues := v.Validate(batch)
	assert.True(t, valid)
	assert.Empty(t, issues)
}

func TestSummaryAggregatesAcrossSources(t *testing.T) {
	v := New(zap.NewNop())

	hr := validBatch(3)
	hr.Source = "hr"
	hr.Records[0].Email = "bad"
	hr.Records[1].Email = "worse"
	_, _ = v.Validate(hr)

	payroll := validBatch(2)
	payroll.Source = "payroll"
	payroll.Records[0].Salary = model.StringPtr("-1")
	_, _ = v.Validate(payroll)

	s := v.Summary()
	assert.Equal(t, 3, s.TotalErrors)
	assert.Equal(t, 2, s.ErrorsBySource["hr"])
	assert.Equal(t, 1, s.ErrorsBySource["payroll"])

	require.NotEmpty(t, s.CommonErrors)
	// Row positions are stripped, so the two email issues group together.
	assert.Equal(t, "email: invalid email format", s.CommonErrors[0].Error)
	assert.Equal(t, 2, s.CommonErrors[0].Count)
}

func TestSummaryEmpty(t *testing.T) {
	s := New(zap.NewNop()).Summary()
	assert.Zero(t, s.TotalErrors)
	assert.Empty(t, s.ErrorsBySource)
	assert.Empty(t, s.CommonErrors)
}
