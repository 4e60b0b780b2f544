// pkg/model/employee.go
package model

import (
	"strconv"
	"time"
)

// Employee represents a single employee record as it moves through the
// pipeline. Required fields are plain values; optional fields are pointers
// so that an absent value is distinguishable from an empty one.
//
// Salary is carried as a string because delimited sources deliver it as
// text and the masker replaces it with an opaque token in place. The
// validator enforces that an unmasked salary parses as a non-negative
// number.
type Employee struct {
	EmployeeID string    `json:"employee_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   string    `json:"position"`
	HireDate   time.Time `json:"hire_date"`
	DataSource string    `json:"data_source"`

	Phone             *string `json:"phone,omitempty"`
	SSN               *string `json:"ssn,omitempty"`
	Salary            *string `json:"salary,omitempty"`
	StreetAddress     *string `json:"street_address,omitempty"`
	City              *string `json:"city,omitempty"`
	State             *string `json:"state,omitempty"`
	ZipCode           *string `json:"zip_code,omitempty"`
	ManagerID         *string `json:"manager_id,omitempty"`
	PerformanceRating *string `json:"performance_rating,omitempty"`

	// Masking provenance, stamped by the masker.
	MaskedAt *time.Time `json:"masked_at,omitempty"`
	IsMasked bool       `json:"is_masked,omitempty"`
}

// SalaryValue parses the salary field as a float.
// The second return value reports whether a salary is present at all.
func (e *Employee) SalaryValue() (float64, bool, error) {
	if e.Salary == nil || *e.Salary == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(*e.Salary, 64)
	if err != nil {
		return 0, true, err
	}
	return v, true, nil
}

// Clone returns a deep copy of the employee record.
func (e Employee) Clone() Employee {
	c := e
	c.Phone = cloneString(e.Phone)
	c.SSN = cloneString(e.SSN)
	c.Salary = cloneString(e.Salary)
	c.StreetAddress = cloneString(e.StreetAddress)
	c.City = cloneString(e.City)
	c.State = cloneString(e.State)
	c.ZipCode = cloneString(e.ZipCode)
	c.ManagerID = cloneString(e.ManagerID)
	c.PerformanceRating = cloneString(e.PerformanceRating)
	if e.MaskedAt != nil {
		t := *e.MaskedAt
		c.MaskedAt = &t
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr is a convenience helper for building optional fields.
func StringPtr(s string) *string {
	return &s
}
