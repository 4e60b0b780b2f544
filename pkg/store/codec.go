// pkg/store/codec.go
package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/schema"
)

// The artifact format is a self-describing columnar envelope: a schema
// header naming each column and its type, followed by one value vector per
// column. Nulls are explicit so optional fields round-trip exactly.

const envelopeFormat = "columnar/v1"

type envelopeColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type envelope struct {
	Format  string               `json:"format"`
	Source  string               `json:"source"`
	Rows    int                  `json:"rows"`
	Schema  []envelopeColumn     `json:"schema"`
	Columns map[string][]*string `json:"columns"`
}

// columnCodec binds a column name to its typed accessors on Employee.
type columnCodec struct {
	name string
	typ  schema.FieldType
	get  func(e *model.Employee) *string
	set  func(e *model.Employee, v string) error
}

const dateLayout = "2006-01-02"

var columnCodecs = buildColumnCodecs()

// identityColumns must be non-empty strings in every persisted row.
var identityColumns = []string{"employee_id", "first_name", "last_name", "email"}

// EncodeBatch serializes a batch into the columnar envelope. Rows whose
// identity fields are empty are dropped first; the number of dropped rows
// is returned. An encode that would persist zero rows fails instead of
// writing a garbage artifact.
func EncodeBatch(batch model.Batch) ([]byte, int, error) {
	kept, dropped := filterIdentityRows(batch)
	if len(kept.Records) == 0 {
		return nil, dropped, fmt.Errorf("no rows with complete identity fields to persist for source %q", batch.Source)
	}

	env := envelope{
		Format:  envelopeFormat,
		Source:  kept.Source,
		Rows:    len(kept.Records),
		Columns: make(map[string][]*string),
	}

	for _, codec := range columnCodecs {
		if !kept.HasColumn(codec.name) {
			continue
		}
		env.Schema = append(env.Schema, envelopeColumn{Name: codec.name, Type: string(codec.typ)})
		vector := make([]*string, len(kept.Records))
		for i := range kept.Records {
			vector[i] = codec.get(&kept.Records[i])
		}
		env.Columns[codec.name] = vector
	}

	data, err := json.Marshal(env)
	if err != nil {
		return nil, dropped, fmt.Errorf("failed to encode artifact: %w", err)
	}
	return data, dropped, nil
}

// DecodeBatch parses a columnar envelope back into a batch.
func DecodeBatch(data []byte) (model.Batch, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return model.Batch{}, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if env.Format != envelopeFormat {
		return model.Batch{}, fmt.Errorf("unsupported artifact format %q", env.Format)
	}
	if env.Rows < 0 {
		return model.Batch{}, fmt.Errorf("invalid artifact row count %d", env.Rows)
	}

	batch := model.Batch{
		Source:  env.Source,
		Columns: make([]string, 0, len(env.Schema)),
		Records: make([]model.Employee, env.Rows),
	}

	for _, col := range env.Schema {
		batch.Columns = append(batch.Columns, col.Name)
		codec := codecFor(col.Name)
		if codec == nil {
			continue
		}
		vector := env.Columns[col.Name]
		for i := 0; i < env.Rows && i < len(vector); i++ {
			if vector[i] == nil {
				continue
			}
			if err := codec.set(&batch.Records[i], *vector[i]); err != nil {
				return model.Batch{}, fmt.Errorf("column %s row %d: %w", col.Name, i+1, err)
			}
		}
	}

	return batch, nil
}

// filterIdentityRows drops rows missing any identity field.
func filterIdentityRows(batch model.Batch) (model.Batch, int) {
	out := model.Batch{
		Source:  batch.Source,
		Columns: batch.Columns,
		Records: make([]model.Employee, 0, len(batch.Records)),
	}
	dropped := 0
	for i := range batch.Records {
		rec := &batch.Records[i]
		if rec.EmployeeID == "" || rec.FirstName == "" || rec.LastName == "" || rec.Email == "" {
			dropped++
			continue
		}
		out.Records = append(out.Records, batch.Records[i])
	}
	return out, dropped
}

func codecFor(name string) *columnCodec {
	for i := range columnCodecs {
		if columnCodecs[i].name == name {
			return &columnCodecs[i]
		}
	}
	return nil
}

func buildColumnCodecs() []columnCodec {
	codecs := []columnCodec{
		requiredString("employee_id", func(e *model.Employee) *string { return &e.EmployeeID }),
		requiredString("first_name", func(e *model.Employee) *string { return &e.FirstName }),
		requiredString("last_name", func(e *model.Employee) *string { return &e.LastName }),
		requiredString("email", func(e *model.Employee) *string { return &e.Email }),
		requiredString("department", func(e *model.Employee) *string { return &e.Department }),
		requiredString("position", func(e *model.Employee) *string { return &e.Position }),
		requiredString("data_source", func(e *model.Employee) *string { return &e.DataSource }),
		{
			// hire_date is serialized date-only regardless of what the
			// source delivered.
			name: "hire_date",
			typ:  schema.TypeDate,
			get: func(e *model.Employee) *string {
				if e.HireDate.IsZero() {
					return nil
				}
				v := e.HireDate.Format(dateLayout)
				return &v
			},
			set: func(e *model.Employee, v string) error {
				t, err := time.Parse(dateLayout, v)
				if err != nil {
					return err
				}
				e.HireDate = t
				return nil
			},
		},
		optionalString("phone", func(e *model.Employee) **string { return &e.Phone }),
		optionalString("ssn", func(e *model.Employee) **string { return &e.SSN }),
		{
			name: "salary",
			typ:  schema.TypeNumeric,
			get:  func(e *model.Employee) *string { return e.Salary },
			set: func(e *model.Employee, v string) error {
				e.Salary = &v
				return nil
			},
		},
		optionalString("street_address", func(e *model.Employee) **string { return &e.StreetAddress }),
		optionalString("city", func(e *model.Employee) **string { return &e.City }),
		optionalString("state", func(e *model.Employee) **string { return &e.State }),
		optionalString("zip_code", func(e *model.Employee) **string { return &e.ZipCode }),
		optionalString("manager_id", func(e *model.Employee) **string { return &e.ManagerID }),
		optionalString("performance_rating", func(e *model.Employee) **string { return &e.PerformanceRating }),
		{
			name: "masked_at",
			typ:  schema.TypeTimestamp,
			get: func(e *model.Employee) *string {
				if e.MaskedAt == nil {
					return nil
				}
				v := e.MaskedAt.Format(time.RFC3339Nano)
				return &v
			},
			set: func(e *model.Employee, v string) error {
				t, err := time.Parse(time.RFC3339Nano, v)
				if err != nil {
					return err
				}
				e.MaskedAt = &t
				return nil
			},
		},
		{
			name: "is_masked",
			typ:  schema.TypeBool,
			get: func(e *model.Employee) *string {
				v := strconv.FormatBool(e.IsMasked)
				return &v
			},
			set: func(e *model.Employee, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return err
				}
				e.IsMasked = b
				return nil
			},
		},
	}
	return codecs
}

func requiredString(name string, get func(e *model.Employee) *string) columnCodec {
	return columnCodec{
		name: name,
		typ:  schema.TypeString,
		get: func(e *model.Employee) *string {
			v := *get(e)
			if v == "" {
				return nil
			}
			return &v
		},
		set: func(e *model.Employee, v string) error {
			*get(e) = v
			return nil
		},
	}
}

func optionalString(name string, get func(e *model.Employee) **string) columnCodec {
	return columnCodec{
		name: name,
		typ:  schema.TypeString,
		get:  func(e *model.Employee) *string { return *get(e) },
		set: func(e *model.Employee, v string) error {
			*get(e) = &v
			return nil
		},
	}
}
