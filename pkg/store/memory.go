// pkg/store/memory.go
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kajinmo/lightweight-etl-pipeline-to-gcp/pkg/model"
)

// Memory is an in-process artifact store used by local runs and tests.
// Artifacts survive only for the lifetime of the process.
type Memory struct {
	logger *zap.Logger

	mu       sync.Mutex
	objects  map[string][]byte
	lastTime time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory(logger *zap.Logger) *Memory {
	return &Memory{
		logger:  logger,
		objects: make(map[string][]byte),
	}
}

// Write encodes and stores the batch, returning its artifact ID.
func (m *Memory) Write(ctx context.Context, batch model.Batch, stage Stage, sourceName string) (string, error) {
	data, dropped, err := EncodeBatch(batch)
	if err != nil {
		return "", err
	}
	if dropped > 0 {
		m.logger.Warn("Dropped rows with incomplete identity fields",
			zap.String("source", sourceName),
			zap.String("stage", string(stage)),
			zap.Int("dropped", dropped))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Artifact names carry second resolution; keep them unique even when
	// two writes land within the same second.
	now := time.Now()
	if !now.After(m.lastTime) {
		now = m.lastTime.Add(time.Second)
	}
	m.lastTime = now

	id := artifactID(stage, sourceName, now)
	m.objects[id] = data

	m.logger.Info("Artifact written",
		zap.String("artifact", id),
		zap.String("stage", string(stage)),
		zap.String("source", sourceName),
		zap.Int("bytes", len(data)))
	return id, nil
}

// Read loads and decodes an artifact by ID.
func (m *Memory) Read(ctx context.Context, artifactID string) (model.Batch, error) {
	m.mu.Lock()
	data, ok := m.objects[artifactID]
	m.mu.Unlock()

	if !ok {
		return model.Batch{}, fmt.Errorf("artifact %s: %w", artifactID, ErrNotFound)
	}
	if len(data) == 0 {
		return model.Batch{}, fmt.Errorf("artifact %s: %w", artifactID, ErrEmpty)
	}
	return DecodeBatch(data)
}

// List returns matching artifact IDs in chronological (name) order.
func (m *Memory) List(ctx context.Context, stage Stage, sourceName string) ([]string, error) {
	prefix := string(stage) + "/"
	if sourceName != "" {
		prefix += sourceName + "_"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0)
	for id := range m.objects {
		if strings.HasPrefix(id, prefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
