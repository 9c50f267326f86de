// Package extractors turns uploaded file bytes into plain text.
package extractors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry implements ExtractorRegistry.
// A later registration for the same file type replaces the earlier one.
type Registry struct {
	mu         sync.RWMutex
	extractors map[domain.FileType]driven.TextExtractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[domain.FileType]driven.TextExtractor),
	}
}

// DefaultRegistry creates a registry with the txt, csv and pdf extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&TextExtractor{})
	r.Register(&CSVExtractor{})
	r.Register(&PDFExtractor{})
	return r
}

// Register registers an extractor for all of its supported types.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range extractor.SupportedTypes() {
		r.extractors[t] = extractor
	}
}

// Get returns the extractor for a file type, or nil.
func (r *Registry) Get(fileType domain.FileType) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.extractors[fileType]
}

// Extract runs the extractor registered for fileType.
func (r *Registry) Extract(ctx context.Context, fileType domain.FileType, data []byte) (string, error) {
	extractor := r.Get(fileType)
	if extractor == nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, fileType)
	}
	return extractor.Extract(ctx, data)
}

// List returns all registered file types.
func (r *Registry) List() []domain.FileType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]domain.FileType, 0, len(r.extractors))
	for t := range r.extractors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func extractionError(format string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrExtractionFailed, format, err)
}
