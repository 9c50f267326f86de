package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing
type MockChunkStore struct {
	mu         sync.RWMutex
	byDocument map[string][]*domain.Chunk
	order      []string // document IDs in first-save order

	// SaveErr, when set, is returned by every SaveBatch call
	SaveErr error
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{
		byDocument: make(map[string][]*domain.Chunk),
	}
}

func (m *MockChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range chunks {
		if _, ok := m.byDocument[chunk.DocumentID]; !ok {
			m.order = append(m.order, chunk.DocumentID)
		}
		replaced := false
		for i, c := range m.byDocument[chunk.DocumentID] {
			if c.ID == chunk.ID {
				m.byDocument[chunk.DocumentID][i] = chunk
				replaced = true
				break
			}
		}
		if !replaced {
			m.byDocument[chunk.DocumentID] = append(m.byDocument[chunk.DocumentID], chunk)
		}
	}
	return nil
}

func (m *MockChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chunks := append([]*domain.Chunk(nil), m.byDocument[documentID]...)
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

func (m *MockChunkStore) List(ctx context.Context) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.Chunk
	for _, docID := range m.order {
		chunks := append([]*domain.Chunk(nil), m.byDocument[docID]...)
		sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
		all = append(all, chunks...)
	}
	return all, nil
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byDocument, documentID)
	for i, id := range m.order {
		if id == documentID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Helper methods for testing

func (m *MockChunkStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, chunks := range m.byDocument {
		n += len(chunks)
	}
	return n
}
