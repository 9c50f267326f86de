package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ensure statsService implements StatsService
var _ driving.StatsService = (*statsService)(nil)

type statsService struct {
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	queryStore    driven.QueryStore
	now           func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(
	documentStore driven.DocumentStore,
	chunkStore driven.ChunkStore,
	queryStore driven.QueryStore,
) driving.StatsService {
	return &statsService{
		documentStore: documentStore,
		chunkStore:    chunkStore,
		queryStore:    queryStore,
		now:           time.Now,
	}
}

// Get scans documents, chunks and queries and aggregates them
func (s *statsService) Get(ctx context.Context) (*domain.Stats, error) {
	docs, err := s.documentStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	chunks, err := s.chunkStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	queries, err := s.queryStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}

	stats := &domain.Stats{
		TotalDocuments: len(docs),
		TotalQueries:   len(queries),
		TotalChunks:    len(chunks),
	}

	for _, doc := range docs {
		if doc.Status == domain.DocumentStatusProcessed {
			stats.ProcessedDocuments++
		}
	}

	now := s.now()
	var confidenceSum float64
	var answered int
	for _, q := range queries {
		if sameDay(q.CreatedAt, now) {
			stats.QueriesToday++
		}
		// Zero-confidence answers are the empty-retrieval path and are not counted
		if q.Status == domain.QueryStatusCompleted && q.Confidence != nil && *q.Confidence > 0 {
			confidenceSum += *q.Confidence
			answered++
		}
	}
	if answered > 0 {
		stats.AvgAccuracy = int(math.Round(confidenceSum / float64(answered) * 100))
	}

	var dimensionSum int
	for _, c := range chunks {
		if c.HasEmbedding() {
			stats.ChunksWithEmbeddings++
			dimensionSum += len(c.Embedding)
		}
	}
	if stats.ChunksWithEmbeddings > 0 {
		stats.AverageEmbeddingDimension = int(math.Round(float64(dimensionSum) / float64(stats.ChunksWithEmbeddings)))
	}
	if stats.TotalChunks > 0 {
		stats.IndexingProgress = int(math.Round(float64(stats.ChunksWithEmbeddings) / float64(stats.TotalChunks) * 100))
	}

	return stats, nil
}

func sameDay(a, b time.Time) bool {
	a, b = a.Local(), b.Local()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
