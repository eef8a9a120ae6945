package numerator

import (
	"context"
	"sync"
)

// MockGenerator is an in-memory Generator for unit tests.
type MockGenerator struct {
	mu       sync.Mutex
	counters map[string]int64

	// Err, when set, is returned by GetNextNumber.
	Err error
}

// NewMockGenerator creates an empty in-memory generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{counters: make(map[string]int64)}
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(_ context.Context, cfg Config) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[cfg.Key()]++
	return cfg.Format(m.counters[cfg.Key()]), nil
}

// SetNextNumber implements Generator.
func (m *MockGenerator) SetNextNumber(_ context.Context, cfg Config, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[cfg.Key()] = value
	return nil
}

// Current returns the last allocated value for cfg.
func (m *MockGenerator) Current(cfg Config) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[cfg.Key()]
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
