// pkg/source/api.go
package source

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// API extracts user data from a JSONPlaceholder-shaped HTTP endpoint and
// reshapes it into employee records. The upstream exposes a fixed user
// list, so requests beyond that length cycle through it.
type API struct {
	name    string
	baseURL string
	client  *http.Client
	rng     *rand.Rand
	logger  *zap.Logger
}

// apiUser is the upstream payload shape; fields we do not use are omitted.
type apiUser struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address struct {
		Street  string `json:"street"`
		City    string `json:"city"`
		Zipcode string `json:"zipcode"`
	} `json:"address"`
}

// NewAPI creates the HTTP extractor.
func NewAPI(name, baseURL string, logger *zap.Logger) *API {
	if name == "" {
		name = "api"
	}
	return &API{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// Name implements Source.
func (a *API) Name() string { return a.name }

// Extract implements Source.
func (a *API) Extract(ctx context.Context, count int) (model.Batch, error) {
	a.logger.Info("Extracting records from API",
		zap.String("source", a.name),
		zap.Int("requested", count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/users", nil)
	if err != nil {
		return model.Batch{}, fmt.Errorf("failed to build API request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return model.Batch{}, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Batch{}, fmt.Errorf("API request failed with status %s", resp.Status)
	}

	var users []apiUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return model.Batch{}, fmt.Errorf("failed to decode API response: %w", err)
	}
	if len(users) == 0 {
		return model.Batch{}, fmt.Errorf("API returned no users")
	}

	batch := model.NewBatch(a.name, Columns)
	for i := 0; i < count; i++ {
		batch.Records = append(batch.Records, a.toEmployee(users[i%len(users)], i))
	}

	a.logger.Info("API extraction completed",
		zap.String("source", a.name),
		zap.Int("records", batch.Len()))
	return batch, nil
}

func (a *API) toEmployee(user apiUser, i int) model.Employee {
	parts := strings.Fields(user.Name)
	first := user.Name
	last := "Unknown"
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = parts[len(parts)-1]
	}

	state := user.Address.Zipcode
	if len(state) > 2 {
		state = state[:2]
	}

	var managerID *string
	if i > 0 {
		managerID = model.StringPtr(fmt.Sprintf("API%06d", a.rng.Intn(max(1, i/10))+1))
	}

	salary := fmt.Sprintf("%d", 40000+a.rng.Intn(110001))
	hireDate := time.Now().AddDate(0, 0, -a.rng.Intn(3650)-1)

	return model.Employee{
		EmployeeID:        fmt.Sprintf("API%06d", i+1),
		FirstName:         first,
		LastName:          last,
		Email:             user.Email,
		Department:        departments[a.rng.Intn(len(departments))],
		Position:          positions[a.rng.Intn(len(positions))],
		HireDate:          hireDate,
		DataSource:        a.name,
		Phone:             model.StringPtr(user.Phone),
		SSN:               model.StringPtr(fmt.Sprintf("%03d-%02d-%04d", 100+a.rng.Intn(900), 10+a.rng.Intn(90), 1000+a.rng.Intn(9000))),
		Salary:            &salary,
		StreetAddress:     model.StringPtr(user.Address.Street),
		City:              model.StringPtr(user.Address.City),
		State:             model.StringPtr(state),
		ZipCode:           model.StringPtr(user.Address.Zipcode),
		ManagerID:         managerID,
		PerformanceRating: model.StringPtr(ratings[a.rng.Intn(len(ratings))]),
	}
}
