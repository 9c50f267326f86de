// Package memory holds process-local storage adapters used when no database
// is configured. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.ChunkStore    = (*ChunkStore)(nil)
	_ driven.QueryStore    = (*QueryStore)(nil)
)

// Store is the shared state behind the three stores. Documents and chunks
// share one mutex so deleting a document drops its chunks atomically.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document
	chunks    map[string][]*domain.Chunk // by document id, index order
	queries   map[string]*domain.Query
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents: make(map[string]*domain.Document),
		chunks:    make(map[string][]*domain.Chunk),
		queries:   make(map[string]*domain.Query),
	}
}

// Documents returns the document store view.
func (s *Store) Documents() *DocumentStore { return &DocumentStore{s: s} }

// Chunks returns the chunk store view.
func (s *Store) Chunks() *ChunkStore { return &ChunkStore{s: s} }

// Queries returns the query store view.
func (s *Store) Queries() *QueryStore { return &QueryStore{s: s} }

// DocumentStore implements driven.DocumentStore in memory.
type DocumentStore struct{ s *Store }

func (d *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.documents[doc.ID] = cloneDocument(doc)
	return nil
}

func (d *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	doc, ok := d.s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneDocument(doc), nil
}

func (d *DocumentStore) List(ctx context.Context) ([]*domain.Document, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	docs := make([]*domain.Document, 0, len(d.s.documents))
	for _, doc := range d.s.documents {
		docs = append(docs, cloneDocument(doc))
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

// Delete removes a document and its chunks.
func (d *DocumentStore) Delete(ctx context.Context, id string) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	if _, ok := d.s.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(d.s.documents, id)
	delete(d.s.chunks, id)
	return nil
}

func (d *DocumentStore) Count(ctx context.Context) (int, error) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return len(d.s.documents), nil
}

// ChunkStore implements driven.ChunkStore in memory.
type ChunkStore struct{ s *Store }

// SaveBatch upserts chunks by id within their document, keeping index order.
func (c *ChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	touched := make(map[string]bool)
	for _, chunk := range chunks {
		existing := c.s.chunks[chunk.DocumentID]
		replaced := false
		for i, e := range existing {
			if e.ID == chunk.ID {
				existing[i] = cloneChunk(chunk)
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, cloneChunk(chunk))
		}
		c.s.chunks[chunk.DocumentID] = existing
		touched[chunk.DocumentID] = true
	}
	for docID := range touched {
		list := c.s.chunks[docID]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Index < list[j].Index })
	}
	return nil
}

func (c *ChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return cloneChunks(c.s.chunks[documentID]), nil
}

// List returns all chunks grouped by document id, then index.
func (c *ChunkStore) List(ctx context.Context) ([]*domain.Chunk, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	ids := make([]string, 0, len(c.s.chunks))
	for id := range c.s.chunks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*domain.Chunk
	for _, id := range ids {
		out = append(out, cloneChunks(c.s.chunks[id])...)
	}
	return out, nil
}

func (c *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	delete(c.s.chunks, documentID)
	return nil
}

// QueryStore implements driven.QueryStore in memory.
type QueryStore struct{ s *Store }

func (q *QueryStore) Save(ctx context.Context, query *domain.Query) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	q.s.queries[query.ID] = cloneQuery(query)
	return nil
}

func (q *QueryStore) Get(ctx context.Context, id string) (*domain.Query, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	query, ok := q.s.queries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneQuery(query), nil
}

func (q *QueryStore) List(ctx context.Context) ([]*domain.Query, error) {
	q.s.mu.RLock()
	defer q.s.mu.RUnlock()
	out := make([]*domain.Query, 0, len(q.s.queries))
	for _, query := range q.s.queries {
		out = append(out, cloneQuery(query))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (q *QueryStore) ListRecent(ctx context.Context, limit int) ([]*domain.Query, error) {
	if limit <= 0 {
		return nil, nil
	}
	all, err := q.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func cloneDocument(doc *domain.Document) *domain.Document {
	cp := *doc
	if doc.ProcessedAt != nil {
		t := *doc.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}

func cloneChunk(chunk *domain.Chunk) *domain.Chunk {
	cp := *chunk
	if chunk.Embedding != nil {
		cp.Embedding = append([]float32(nil), chunk.Embedding...)
	}
	return &cp
}

func cloneChunks(chunks []*domain.Chunk) []*domain.Chunk {
	out := make([]*domain.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = cloneChunk(c)
	}
	return out
}

func cloneQuery(query *domain.Query) *domain.Query {
	cp := *query
	if query.Confidence != nil {
		c := *query.Confidence
		cp.Confidence = &c
	}
	if query.Sources != nil {
		cp.Sources = append([]domain.SourceCitation{}, query.Sources...)
	}
	return &cp
}
