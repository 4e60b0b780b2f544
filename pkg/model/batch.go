// pkg/model/batch.go
package model

// Batch is an ordered collection of employee records from a single source.
// Columns lists the field names the source actually produced, so that a
// missing column can be told apart from a column full of nulls.
type Batch struct {
	Source  string
	Columns []string
	Records []Employee
}

// NewBatch creates an empty batch for the given source with the standard
// column set.
func NewBatch(source string, columns []string) Batch {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return Batch{
		Source:  source,
		Columns: cols,
		Records: make([]Employee, 0),
	}
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// IsEmpty reports whether the batch contains no records.
func (b Batch) IsEmpty() bool {
	return len(b.Records) == 0
}

// HasColumn reports whether the batch carries the named column.
func (b Batch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column name if it is not already present.
func (b *Batch) AddColumn(name string) {
	if !b.HasColumn(name) {
		b.Columns = append(b.Columns, name)
	}
}

// Clone returns a deep copy of the batch. Stages that transform records
// work on a clone so the input batch is never mutated.
func (b Batch) Clone() Batch {
	out := Batch{
		Source:  b.Source,
		Columns: make([]string, len(b.Columns)),
		Records: make([]Employee, len(b.Records)),
	}
	copy(out.Columns, b.Columns)
	for i, rec := range b.Records {
		out.Records[i] = rec.Clone()
	}
	return out
}
