// pkg/schema/schema.go
package schema

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// FieldType tags the primitive type of a field.
type FieldType string

const (
	TypeString    FieldType = "string"
	TypeNumeric   FieldType = "numeric"
	TypeDate      FieldType = "date"
	TypeBool      FieldType = "bool"
	TypeTimestamp FieldType = "timestamp"
)

// FieldSpec describes one field of the employee schema: its name, type tag,
// whether it is required, and the constraint applied to present values.
// The spec list is built once at startup; validation iterates it rather
// than doing any runtime introspection.
type FieldSpec struct {
	Name     string
	Type     FieldType
	Required bool

	// Value extracts the field from a record and reports whether a
	// non-null value is present.
	Value func(e *model.Employee) (string, bool)

	// Check returns constraint violations for a present value.
	// It is never called for absent values.
	Check func(e *model.Employee) []string
}

// emailPattern matches RFC-shaped addresses; case normalization is the
// cleaner's job, not the validator's.
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Employee is the versioned field-spec list shared by the validator and the
// warehouse DDL. Order matters: issues are reported in schema order.
var Employee = buildEmployeeSchema()

// RequiredFields returns the names of all required fields in schema order.
func RequiredFields() []string {
	names := make([]string, 0, len(Employee))
	for _, spec := range Employee {
		if spec.Required {
			names = append(names, spec.Name)
		}
	}
	return names
}

func buildEmployeeSchema() []FieldSpec {
	return []FieldSpec{
		{
			Name:     "employee_id",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.EmployeeID, e.EmployeeID != "" },
			Check:    lengthCheck("employee_id", func(e *model.Employee) string { return e.EmployeeID }, 6, 10),
		},
		{
			Name:     "first_name",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.FirstName, e.FirstName != "" },
			Check:    lengthCheck("first_name", func(e *model.Employee) string { return e.FirstName }, 2, 50),
		},
		{
			Name:     "last_name",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.LastName, e.LastName != "" },
			Check:    lengthCheck("last_name", func(e *model.Employee) string { return e.LastName }, 1, 50),
		},
		{
			Name:     "email",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.Email, e.Email != "" },
			Check: func(e *model.Employee) []string {
				if !emailPattern.MatchString(e.Email) {
					return []string{"email: invalid email format"}
				}
				return nil
			},
		},
		{
			Name:     "department",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.Department, e.Department != "" },
		},
		{
			Name:     "position",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.Position, e.Position != "" },
		},
		{
			Name:     "hire_date",
			Type:     TypeDate,
			Required: true,
			Value: func(e *model.Employee) (string, bool) {
				if e.HireDate.IsZero() {
					return "", false
				}
				return e.HireDate.Format("2006-01-02"), true
			},
			Check: func(e *model.Employee) []string {
				if e.HireDate.After(time.Now()) {
					return []string{"hire_date: hire date cannot be in the future"}
				}
				return nil
			},
		},
		{
			Name:     "data_source",
			Type:     TypeString,
			Required: true,
			Value:    func(e *model.Employee) (string, bool) { return e.DataSource, e.DataSource != "" },
		},
		{
			Name:  "phone",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.Phone }),
		},
		{
			Name:  "ssn",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.SSN }),
		},
		{
			Name:  "salary",
			Type:  TypeNumeric,
			Value: optionalValue(func(e *model.Employee) *string { return e.Salary }),
			Check: func(e *model.Employee) []string {
				// Masked salaries are opaque tokens and are exempt.
				if e.IsMasked {
					return nil
				}
				v, present, err := e.SalaryValue()
				if !present {
					return nil
				}
				if err != nil {
					return []string{"salary: value is not numeric"}
				}
				if v < 0 {
					return []string{"salary: value must be greater than or equal to 0"}
				}
				return nil
			},
		},
		{
			Name:  "street_address",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.StreetAddress }),
		},
		{
			Name:  "city",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.City }),
		},
		{
			Name:  "state",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.State }),
		},
		{
			Name:  "zip_code",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.ZipCode }),
		},
		{
			Name:  "manager_id",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.ManagerID }),
		},
		{
			Name:  "performance_rating",
			Type:  TypeString,
			Value: optionalValue(func(e *model.Employee) *string { return e.PerformanceRating }),
		},
	}
}

func optionalValue(get func(e *model.Employee) *string) func(e *model.Employee) (string, bool) {
	return func(e *model.Employee) (string, bool) {
		v := get(e)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}

func lengthCheck(field string, get func(e *model.Employee) string, min, max int) func(e *model.Employee) []string {
	return func(e *model.Employee) []string {
		n := len(get(e))
		if n < min || n > max {
			return []string{fmt.Sprintf("%s: length must be between %d and %d characters", field, min, max)}
		}
		return nil
	}
}
