// pkg/cleaner/operations.go
package cleaner

import (
	"strings"
	"time"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// Operation records a single normalization performed on a field, kept for
// audit so a cleaned value can always be traced back to what arrived.
type Operation struct {
	Source        string
	RowIdentifier string
	Field         string
	Name          string
	Reason        string
	OriginalValue string
	NewValue      string
	CleanedAt     time.Time
}

// fieldOperation normalizes one field of a record and reports what changed.
type fieldOperation struct {
	apply func(rec *model.Employee, source, rowID string) []Operation
}

// operations is the fixed normalization set, applied in order.
var operations = []fieldOperation{
	{apply: normalizeEmail},
	{apply: trimField("employee_id", func(r *model.Employee) *string { return &r.EmployeeID })},
	{apply: trimField("first_name", func(r *model.Employee) *string { return &r.FirstName })},
	{apply: trimField("last_name", func(r *model.Employee) *string { return &r.LastName })},
}

// normalizeEmail lowercases and trims the address.
func normalizeEmail(rec *model.Employee, source, rowID string) []Operation {
	original := rec.Email
	normalized := strings.ToLower(strings.TrimSpace(original))
	if normalized == original {
		return nil
	}
	rec.Email = normalized
	return []Operation{{
		Source:        source,
		RowIdentifier: rowID,
		Field:         "email",
		Name:          "email_normalization",
		Reason:        "case_and_whitespace",
		OriginalValue: original,
		NewValue:      normalized,
		CleanedAt:     time.Now(),
	}}
}

func trimField(field string, get func(r *model.Employee) *string) func(rec *model.Employee, source, rowID string) []Operation {
	return func(rec *model.Employee, source, rowID string) []Operation {
		target := get(rec)
		original := *target
		trimmed := strings.TrimSpace(original)
		if trimmed == original {
			return nil
		}
		*target = trimmed
		return []Operation{{
			Source:        source,
			RowIdentifier: rowID,
			Field:         field,
			Name:          "whitespace_trim",
			Reason:        "leading_trailing_whitespace",
			OriginalValue: original,
			NewValue:      trimmed,
			CleanedAt:     time.Now(),
		}}
	}
}
