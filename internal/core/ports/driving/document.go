package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentService manages uploaded documents
type DocumentService interface {
	// Upload stores a new document, extracts its text and schedules ingestion.
	// Extraction failures are recorded on the returned document, not returned.
	Upload(ctx context.Context, name string, data []byte) (*domain.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves all documents, most recently uploaded first
	List(ctx context.Context) ([]*domain.Document, error)

	// Delete removes a document and all of its chunks
	Delete(ctx context.Context, id string) error

	// GetChunks retrieves a document's chunks ordered by index
	GetChunks(ctx context.Context, id string) ([]*domain.Chunk, error)

	// ListChunks returns a debug view of every stored chunk
	ListChunks(ctx context.Context) (*domain.ChunkListing, error)
}

// DocumentProcessor runs the ingestion job for an uploaded document
type DocumentProcessor interface {
	// ProcessDocument chunks and embeds a document and stores its chunks.
	// Failures are recorded on the document before being returned.
	ProcessDocument(ctx context.Context, documentID string) error
}
