// pkg/source/source.go
package source

import (
	"context"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// Source produces a batch of raw employee records on request. A source may
// return fewer records than requested; that is logged, not an error. Every
// record carries the source's data_source tag.
type Source interface {
	// Name identifies the source; it partitions the artifact namespace.
	Name() string

	// Extract produces up to count raw records.
	Extract(ctx context.Context, count int) (model.Batch, error)
}

// Columns is the standard column set produced by the bundled connectors.
var Columns = []string{
	"employee_id",
	"first_name",
	"last_name",
	"email",
	"phone",
	"ssn",
	"department",
	"position",
	"salary",
	"hire_date",
	"street_address",
	"city",
	"state",
	"zip_code",
	"manager_id",
	"performance_rating",
	"data_source",
}

var departments = []string{"Engineering", "Marketing", "Sales", "HR", "Finance", "Operations"}

var positions = []string{"Manager", "Senior", "Junior", "Lead", "Associate", "Director"}

var ratings = []string{"Excellent", "Good", "Satisfactory", "Needs Improvement"}
