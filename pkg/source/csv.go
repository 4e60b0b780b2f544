// pkg/source/csv.go
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// sampleSeed keeps CSV sampling reproducible across runs.
const sampleSeed = 42

// CSV extracts employee records from a delimited file. When the file does
// not exist yet, a sample file is generated in place so local runs work
// out of the box.
type CSV struct {
	name       string
	path       string
	sampleRows int
	logger     *zap.Logger
}

// NewCSV creates the file extractor.
func NewCSV(name, path string, logger *zap.Logger) *CSV {
	if name == "" {
		name = "csv"
	}
	return &CSV{
		name:       name,
		path:       path,
		sampleRows: 100,
		logger:     logger,
	}
}

// Name implements Source.
func (c *CSV) Name() string { return c.name }

// Extract implements Source. If the file holds more rows than requested, a
// fixed-seed sample keeps the selection stable between runs; fewer rows
// than requested is logged and returned as-is.
func (c *CSV) Extract(ctx context.Context, count int) (model.Batch, error) {
	c.logger.Info("Extracting records from CSV",
		zap.String("source", c.name),
		zap.String("path", c.path),
		zap.Int("requested", count))

	if err := c.ensureSampleFile(); err != nil {
		return model.Batch{}, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to open CSV file %s: %w", c.path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to read CSV file %s: %w", c.path, err)
	}
	if len(rows) < 2 {
		return model.Batch{}, fmt.Errorf("CSV file %s has no data rows", c.path)
	}

	header := rows[0]
	records := rows[1:]

	if len(records) > count {
		rng := rand.New(rand.NewSource(sampleSeed))
		perm := rng.Perm(len(records))[:count]
		sampled := make([][]string, count)
		for i, idx := range perm {
			sampled[i] = records[idx]
		}
		records = sampled
	} else if len(records) < count {
		c.logger.Warn("CSV contains fewer records than requested",
			zap.String("source", c.name),
			zap.Int("available", len(records)),
			zap.Int("requested", count))
	}

	batch := model.NewBatch(c.name, header)
	for i, row := range records {
		rec := make(model.RecordMap, len(header))
		for j, col := range header {
			if j < len(row) && row[j] != "" {
				rec[col] = row[j]
			}
		}
		emp, err := rec.ToEmployee()
		if err != nil {
			return model.Batch{}, fmt.Errorf("CSV row %d: %w", i+2, err)
		}
		// The file may predate the source; the extractor owns the tag.
		emp.DataSource = c.name
		batch.Records = append(batch.Records, emp)
	}
	batch.AddColumn("data_source")

	c.logger.Info("CSV extraction completed",
		zap.String("source", c.name),
		zap.Int("records", batch.Len()))
	return batch, nil
}

// ensureSampleFile generates a sample CSV when none exists.
func (c *CSV) ensureSampleFile() error {
	if _, err := os.Stat(c.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat CSV file %s: %w", c.path, err)
	}

	c.logger.Info("Creating sample CSV file", zap.String("path", c.path))

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", c.path, err)
		}
	}

	gen := NewSynthetic(c.name, sampleSeed, c.logger)
	batch, err := gen.Extract(context.Background(), c.sampleRows)
	if err != nil {
		return err
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("failed to create sample CSV %s: %w", c.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i := range batch.Records {
		if err := w.Write(csvRow(&batch.Records[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush sample CSV: %w", err)
	}

	c.logger.Info("Sample CSV created",
		zap.String("path", c.path),
		zap.Int("records", batch.Len()))
	return nil
}

func csvRow(rec *model.Employee) []string {
	opt := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return []string{
		rec.EmployeeID,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		opt(rec.Phone),
		opt(rec.SSN),
		rec.Department,
		rec.Position,
		opt(rec.Salary),
		rec.HireDate.Format("2006-01-02"),
		opt(rec.StreetAddress),
		opt(rec.City),
		opt(rec.State),
		opt(rec.ZipCode),
		opt(rec.ManagerID),
		opt(rec.PerformanceRating),
		rec.DataSource,
	}
}
