// pkg/cleaner/cleaner.go
package cleaner

import (
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// Cleaner normalizes raw batches before re-validation. The validator
// reports on values exactly as it receives them, so any normalization
// (lowercased emails, trimmed whitespace) has to happen in a separate step
// like this one, and only when the pipeline opts in.
type Cleaner struct {
	logger *zap.Logger
}

// New creates a Cleaner.
func New(logger *zap.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// NormalizeBatch applies the normalization operations to a copy of the
// batch and returns it together with the record of every change made.
// The input batch is never mutated.
func (c *Cleaner) NormalizeBatch(batch model.Batch) (model.Batch, []Operation) {
	cleaned := batch.Clone()
	var ops []Operation

	for i := range cleaned.Records {
		rec := &cleaned.Records[i]
		rowID := rec.EmployeeID

		for _, op := range operations {
			ops = append(ops, op.apply(rec, batch.Source, rowID)...)
		}
	}

	if len(ops) > 0 {
		c.logger.Info("Batch normalization applied changes",
			zap.String("source", batch.Source),
			zap.Int("operations", len(ops)))
		for _, op := range ops {
			c.logger.Debug("Cleaning operation",
				zap.String("source", op.Source),
				zap.String("row", op.RowIdentifier),
				zap.String("field", op.Field),
				zap.String("operation", op.Name),
				zap.String("original", op.OriginalValue),
				zap.String("new", op.NewValue))
		}
	}

	return cleaned, ops
}
