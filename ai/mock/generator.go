package mock

import (
	"context"
	"sync"

	"github.com/poiesic/citesearch/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate returns the queued or default response.
	GenerateFunc func(ctx context.Context, systemPrompt, userPrompt string, opts ai.GenerateOptions) (string, error)

	mu        sync.Mutex
	responses []string
	callCount int
}

var _ ai.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock generator with default behavior.
// Note: returns concrete type to allow test assertions.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// QueueResponse appends a canned response. Queued responses are returned in
// order; when the queue is exhausted the last response repeats.
func (m *MockGenerator) QueueResponse(response string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, response)
	return m
}

// Generate returns the injected function's result, the next queued response,
// or "{}" when nothing is configured.
func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string, opts ai.GenerateOptions) (string, error) {
	m.mu.Lock()
	count := m.callCount
	m.callCount++
	fn := m.GenerateFunc
	var response string
	if len(m.responses) > 0 {
		idx := count
		if idx >= len(m.responses) {
			idx = len(m.responses) - 1
		}
		response = m.responses[idx]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, systemPrompt, userPrompt, opts)
	}
	if response == "" {
		response = "{}"
	}
	return response, nil
}

// CallCount returns how many times Generate has been called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears queued responses and the call counter.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = nil
	m.callCount = 0
	m.GenerateFunc = nil
}
