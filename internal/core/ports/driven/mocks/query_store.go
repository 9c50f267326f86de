package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// MockQueryStore is a mock implementation of QueryStore for testing
type MockQueryStore struct {
	mu      sync.RWMutex
	queries map[string]*domain.Query

	// SaveErr, when set, is returned by every Save call
	SaveErr error
}

// NewMockQueryStore creates a new MockQueryStore
func NewMockQueryStore() *MockQueryStore {
	return &MockQueryStore{
		queries: make(map[string]*domain.Query),
	}
}

func (m *MockQueryStore) Save(ctx context.Context, query *domain.Query) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *query
	m.queries[query.ID] = &cp
	return nil
}

func (m *MockQueryStore) Get(ctx context.Context, id string) (*domain.Query, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.queries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *MockQueryStore) List(ctx context.Context) ([]*domain.Query, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Query, 0, len(m.queries))
	for _, q := range m.queries {
		cp := *q
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockQueryStore) ListRecent(ctx context.Context, limit int) ([]*domain.Query, error) {
	all, _ := m.List(ctx)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
