// pkg/validator/validator.go
package validator

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/schema"
)

// Validator checks batches against the employee field-spec list and keeps a
// best-effort log of every issue it has seen, grouped by source, for the
// run-level summary.
type Validator struct {
	logger *zap.Logger

	mu             sync.Mutex
	issuesBySource map[string][]string
}

// New creates a validator.
func New(logger *zap.Logger) *Validator {
	return &Validator{
		logger:         logger,
		issuesBySource: make(map[string][]string),
	}
}

// Validate checks every record of the batch against the schema and returns
// whether the batch is schema-valid together with the full ordered issue
// list. It never fails fast within a record set: all violations are
// collected, each annotated with its 1-based row position. The only
// short-circuit is the missing-required-columns check, which makes
// per-record validation pointless.
func (v *Validator) Validate(batch model.Batch) (bool, []string) {
	v.logger.Info("Starting batch validation",
		zap.String("source", batch.Source),
		zap.Int("records", batch.Len()))

	if batch.IsEmpty() {
		issues := []string{"empty batch"}
		v.record(batch.Source, issues)
		return false, issues
	}

	var issues []string

	// Cheap failure path: if required columns never arrived there is no
	// point inspecting individual records.
	if missing := v.missingColumns(batch); len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("missing required columns: [%s]", strings.Join(missing, ", ")))
		v.record(batch.Source, issues)
		return false, issues
	}

	// Null values in required fields are reported as a distinct violation
	// kind with a per-column count, not as a type mismatch.
	issues = append(issues, v.nullColumnIssues(batch)...)

	// Per-record constraint checks. Null required fields were already
	// counted above, so only present values are constrained here.
	for i := range batch.Records {
		rec := &batch.Records[i]
		for _, spec := range schema.Employee {
			_, present := spec.Value(rec)
			if !present || spec.Check == nil {
				continue
			}
			for _, violation := range spec.Check(rec) {
				issues = append(issues, fmt.Sprintf("Row %d: %s", i+1, violation))
			}
		}
	}

	// Duplicate employee IDs are an aggregate property of the batch.
	if dups := countDuplicateIDs(batch); dups > 0 {
		issues = append(issues, fmt.Sprintf("duplicate employee_id values found: %d cases", dups))
	}

	if len(issues) == 0 {
		v.logger.Info("Validation completed without issues", zap.String("source", batch.Source))
		return true, nil
	}

	v.logger.Warn("Validation found problems",
		zap.String("source", batch.Source),
		zap.Int("issueCount", len(issues)))
	v.record(batch.Source, issues)
	return false, issues
}

// missingColumns returns required fields absent from the batch column set.
func (v *Validator) missingColumns(batch model.Batch) []string {
	var missing []string
	for _, name := range schema.RequiredFields() {
		if !batch.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// nullColumnIssues counts null values per required column.
func (v *Validator) nullColumnIssues(batch model.Batch) []string {
	var issues []string
	for _, spec := range schema.Employee {
		if !spec.Required {
			continue
		}
		nulls := 0
		for i := range batch.Records {
			if _, present := spec.Value(&batch.Records[i]); !present {
				nulls++
			}
		}
		if nulls > 0 {
			issues = append(issues, fmt.Sprintf("column %s contains %d null values in a required field", spec.Name, nulls))
		}
	}
	return issues
}

// countDuplicateIDs returns the number of records whose employee_id repeats
// an earlier occurrence, matching a duplicated-row count rather than the
// number of distinct offending IDs.
func countDuplicateIDs(batch model.Batch) int {
	seen := make(map[string]bool, batch.Len())
	dups := 0
	for i := range batch.Records {
		id := batch.Records[i].EmployeeID
		if id == "" {
			continue
		}
		if seen[id] {
			dups++
		}
		seen[id] = true
	}
	return dups
}

// record appends issues to the per-source validation log.
func (v *Validator) record(source string, issues []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.issuesBySource[source] = append(v.issuesBySource[source], issues...)
}
