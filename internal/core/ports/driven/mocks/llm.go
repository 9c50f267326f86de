package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure MockLLMService implements LLMService
var _ driven.LLMService = (*MockLLMService)(nil)

// MockLLMService is a mock implementation of LLMService for testing.
// CompleteFn overrides the canned Response when set.
type MockLLMService struct {
	mu       sync.Mutex
	requests []driven.CompletionRequest

	Response   string
	Err        error
	CompleteFn func(req driven.CompletionRequest) (string, error)
}

// NewMockLLMService creates a new MockLLMService returning response
func NewMockLLMService(response string) *MockLLMService {
	return &MockLLMService{Response: response}
}

func (m *MockLLMService) Complete(ctx context.Context, req driven.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(req)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm-model"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Requests returns every completion request received
func (m *MockLLMService) Requests() []driven.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.CompletionRequest(nil), m.requests...)
}
