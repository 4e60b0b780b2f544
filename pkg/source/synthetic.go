// pkg/source/synthetic.go
package source

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Carlos", "Ana", "Luisa", "Pedro",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Silva", "Santos",
}

var streetSuffixes = []string{"St", "Ave", "Blvd", "Dr", "Ln", "Way"}

var cities = []string{
	"Springfield", "Riverside", "Franklin", "Greenville", "Bristol",
	"Clinton", "Fairview", "Salem", "Madison", "Georgetown",
}

var states = []string{"CA", "NY", "TX", "FL", "WA", "IL", "MA", "CO", "GA", "OR"}

// Synthetic generates employee records locally, the stand-in for an
// upstream HR system during development and tests.
type Synthetic struct {
	name   string
	rng    *rand.Rand
	logger *zap.Logger
}

// NewSynthetic creates a generator. A zero seed derives one from the clock.
func NewSynthetic(name string, seed int64, logger *zap.Logger) *Synthetic {
	if name == "" {
		name = "faker"
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Synthetic{
		name:   name,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Name implements Source.
func (s *Synthetic) Name() string { return s.name }

// Extract implements Source.
func (s *Synthetic) Extract(ctx context.Context, count int) (model.Batch, error) {
	s.logger.Info("Generating synthetic employee records",
		zap.String("source", s.name),
		zap.Int("requested", count))

	batch := model.NewBatch(s.name, Columns)
	for i := 0; i < count; i++ {
		batch.Records = append(batch.Records, s.generate(i))
	}

	s.logger.Info("Synthetic extraction completed",
		zap.String("source", s.name),
		zap.Int("records", batch.Len()))
	return batch, nil
}

func (s *Synthetic) generate(i int) model.Employee {
	first := firstNames[s.rng.Intn(len(firstNames))]
	last := lastNames[s.rng.Intn(len(lastNames))]

	hireDate := time.Now().AddDate(0, 0, -s.rng.Intn(3650)-1)
	salary := fmt.Sprintf("%d", 40000+s.rng.Intn(110001))

	var managerID *string
	if i > 0 {
		managerID = model.StringPtr(fmt.Sprintf("EMP%06d", s.rng.Intn(max(1, i/10))+1))
	}

	return model.Employee{
		EmployeeID:        fmt.Sprintf("EMP%06d", i+1),
		FirstName:         first,
		LastName:          last,
		Email:             fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), s.rng.Intn(1000)),
		Department:        departments[s.rng.Intn(len(departments))],
		Position:          positions[s.rng.Intn(len(positions))],
		HireDate:          hireDate,
		DataSource:        s.name,
		Phone:             model.StringPtr(fmt.Sprintf("(%03d) %03d-%04d", 200+s.rng.Intn(800), s.rng.Intn(1000), s.rng.Intn(10000))),
		SSN:               model.StringPtr(fmt.Sprintf("%03d-%02d-%04d", 100+s.rng.Intn(900), 10+s.rng.Intn(90), 1000+s.rng.Intn(9000))),
		Salary:            &salary,
		StreetAddress:     model.StringPtr(fmt.Sprintf("%d %s %s", 1+s.rng.Intn(9999), lastNames[s.rng.Intn(len(lastNames))], streetSuffixes[s.rng.Intn(len(streetSuffixes))])),
		City:              model.StringPtr(cities[s.rng.Intn(len(cities))]),
		State:             model.StringPtr(states[s.rng.Intn(len(states))]),
		ZipCode:           model.StringPtr(fmt.Sprintf("%05d", s.rng.Intn(100000))),
		ManagerID:         managerID,
		PerformanceRating: model.StringPtr(ratings[s.rng.Intn(len(ratings))]),
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
