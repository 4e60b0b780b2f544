// pkg/model/adapter.go
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordMap is the open-map shape of a record at the source boundary.
// Connectors that read loosely typed input (CSV headers, JSON payloads)
// build RecordMaps and convert them into typed Employee records here;
// nothing past the source boundary handles open maps.
type RecordMap map[string]interface{}

// Date layouts accepted from upstream sources, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// ToEmployee converts an open-map record into a typed Employee.
// Unknown keys are ignored; type coercion failures are returned as errors
// so the caller can decide whether to drop the row or fail the extract.
func (r RecordMap) ToEmployee() (Employee, error) {
	var emp Employee
	var err error

	emp.EmployeeID = coerceString(r["employee_id"])
	emp.FirstName = coerceString(r["first_name"])
	emp.LastName = coerceString(r["last_name"])
	emp.Email = coerceString(r["email"])
	emp.Department = coerceString(r["department"])
	emp.Position = coerceString(r["position"])
	emp.DataSource = coerceString(r["data_source"])

	if raw, ok := r["hire_date"]; ok && raw != nil {
		emp.HireDate, err = coerceDate(raw)
		if err != nil {
			return emp, fmt.Errorf("hire_date: %w", err)
		}
	}

	emp.Phone = coerceOptionalString(r["phone"])
	emp.SSN = coerceOptionalString(r["ssn"])
	emp.Salary = coerceOptionalString(r["salary"])
	emp.StreetAddress = coerceOptionalString(r["street_address"])
	emp.City = coerceOptionalString(r["city"])
	emp.State = coerceOptionalString(r["state"])
	emp.ZipCode = coerceOptionalString(r["zip_code"])
	emp.ManagerID = coerceOptionalString(r["manager_id"])
	emp.PerformanceRating = coerceOptionalString(r["performance_rating"])

	return emp, nil
}

// coerceString renders any scalar as a string; nil becomes "".
func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// Whole numbers render without a decimal point so that CSV and
		// JSON sources agree on salary and zip_code representations.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func coerceOptionalString(v interface{}) *string {
	if v == nil {
		return nil
	}
	s := coerceString(v)
	if s == "" {
		return nil
	}
	return &s
}

func coerceDate(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date value %q", s)
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
