package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// TextExtractor pulls plain text out of uploaded file bytes.
// Failures are returned wrapped in domain.ErrExtractionFailed.
type TextExtractor interface {
	// Extract returns the text content of the file
	Extract(ctx context.Context, data []byte) (string, error)

	// SupportedTypes returns the file types this extractor handles
	SupportedTypes() []domain.FileType
}

// ExtractorRegistry maps file types to extractors
type ExtractorRegistry interface {
	// Get returns the extractor for a file type, or nil if none is registered
	Get(fileType domain.FileType) TextExtractor

	// Register registers an extractor for all of its supported types
	Register(extractor TextExtractor)

	// Extract finds the extractor for fileType and runs it.
	// Returns domain.ErrUnsupportedFormat if no extractor handles the type.
	Extract(ctx context.Context, fileType domain.FileType, data []byte) (string, error)

	// List returns all registered file types
	List() []domain.FileType
}
