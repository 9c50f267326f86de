package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentStore handles document persistence
type DocumentStore interface {
	// Save creates or updates a document (last writer wins)
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves all documents, most recently uploaded first
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete deletes a document (backends with foreign keys also drop its chunks)
	Delete(ctx context.Context, id string) error

	// Count returns total document count
	Count(ctx context.Context) (int, error)
}

// ChunkStore handles chunk persistence
type ChunkStore interface {
	// SaveBatch saves multiple chunks atomically
	SaveBatch(ctx context.Context, chunks []*domain.Chunk) error

	// GetByDocument retrieves all chunks for a document ordered by index
	GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)

	// List returns every stored chunk (bulk scan used for retrieval)
	List(ctx context.Context) ([]*domain.Chunk, error)

	// DeleteByDocument deletes all chunks for a document
	DeleteByDocument(ctx context.Context, documentID string) error
}

// QueryStore handles query persistence
type QueryStore interface {
	// Save creates or updates a query (last writer wins)
	Save(ctx context.Context, query *domain.Query) error

	// Get retrieves a query by ID
	Get(ctx context.Context, id string) (*domain.Query, error)

	// List returns every stored query, newest first
	List(ctx context.Context) ([]*domain.Query, error)

	// ListRecent returns up to limit queries, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.Query, error)
}
