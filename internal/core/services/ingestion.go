package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-rag/internal/chunker"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/runtime"
)

// Ensure IngestionService implements DocumentProcessor
var _ driving.DocumentProcessor = (*IngestionService)(nil)

// errDocumentGone marks an ingestion whose document was deleted mid-flight
var errDocumentGone = errors.New("document deleted during ingestion")

// IngestionService runs the document ingestion job:
//  1. Load the document and its extracted text
//  2. Chunk the text
//  3. Embed every chunk (in index order, or through a bounded pool)
//  4. Under the document lock, confirm the document still exists
//  5. Store the chunks and mark the document processed
type IngestionService struct {
	documentStore    driven.DocumentStore
	chunkStore       driven.ChunkStore
	lock             driven.DistributedLock
	chunker          *chunker.Chunker
	services         *runtime.Services
	embedConcurrency int
	lockTTL          time.Duration
	lockWait         time.Duration
	logger           *slog.Logger
}

// IngestionServiceConfig holds dependencies for IngestionService.
type IngestionServiceConfig struct {
	DocumentStore driven.DocumentStore
	ChunkStore    driven.ChunkStore
	Lock          driven.DistributedLock
	Chunker       *chunker.Chunker
	Services      *runtime.Services

	// EmbedConcurrency bounds parallel embedding calls per document (default 1)
	EmbedConcurrency int
	LockTTL          time.Duration
	LockWait         time.Duration
	Logger           *slog.Logger
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(cfg IngestionServiceConfig) *IngestionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := cfg.Chunker
	if c == nil {
		c = chunker.New(chunker.DefaultConfig())
	}

	concurrency := cfg.EmbedConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	lockWait := cfg.LockWait
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}

	return &IngestionService{
		documentStore:    cfg.DocumentStore,
		chunkStore:       cfg.ChunkStore,
		lock:             cfg.Lock,
		chunker:          c,
		services:         cfg.Services,
		embedConcurrency: concurrency,
		lockTTL:          lockTTL,
		lockWait:         lockWait,
		logger:           logger,
	}
}

// ProcessDocument ingests a single document.
// A document deleted before or during the job is skipped without error.
func (s *IngestionService) ProcessDocument(ctx context.Context, documentID string) error {
	startTime := time.Now()
	logger := s.logger.With("document_id", documentID)

	doc, err := s.documentStore.Get(ctx, documentID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Info("document deleted before ingestion, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if doc.Status != domain.DocumentStatusProcessing {
		logger.Info("document not awaiting ingestion, skipping", "status", doc.Status)
		return nil
	}

	logger.Info("starting ingestion", "file_name", doc.Name, "content_length", len(doc.Content))

	chunks := s.chunker.Chunk(doc.ID, doc.Name, doc.Content)

	if err := s.embedChunks(ctx, chunks); err != nil {
		return s.fail(ctx, logger, documentID, err)
	}

	err = withLock(ctx, s.lock, documentLockName(documentID), s.lockTTL, s.lockWait, func() error {
		current, err := s.documentStore.Get(ctx, documentID)
		if errors.Is(err, domain.ErrNotFound) {
			return errDocumentGone
		}
		if err != nil {
			return fmt.Errorf("failed to reload document: %w", err)
		}

		// Replace chunks from any earlier run of this job
		if err := s.chunkStore.DeleteByDocument(ctx, documentID); err != nil {
			return fmt.Errorf("failed to clear chunks: %w", err)
		}
		if len(chunks) > 0 {
			if err := s.chunkStore.SaveBatch(ctx, chunks); err != nil {
				return fmt.Errorf("failed to save chunks: %w", err)
			}
		}

		current.MarkProcessed()
		if err := s.documentStore.Save(ctx, current); err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}
		return nil
	})
	if errors.Is(err, errDocumentGone) {
		logger.Info("document deleted during ingestion, discarding chunks", "chunks", len(chunks))
		return nil
	}
	if err != nil {
		return s.fail(ctx, logger, documentID, err)
	}

	logger.Info("ingestion completed",
		"chunks", len(chunks),
		"duration_seconds", time.Since(startTime).Seconds(),
	)
	return nil
}

// embedChunks fills in every chunk's embedding. With a concurrency of 1 the
// calls run sequentially in index order; otherwise a bounded pool writes each
// result back to its own index.
func (s *IngestionService) embedChunks(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	var embedder driven.EmbeddingService
	if s.services != nil {
		embedder = s.services.EmbeddingService()
	}
	if embedder == nil {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrServiceUnavailable)
	}

	if s.embedConcurrency == 1 {
		for _, chunk := range chunks {
			if err := embedChunk(ctx, embedder, chunk); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.embedConcurrency)
	for _, chunk := range chunks {
		g.Go(func() error {
			return embedChunk(gctx, embedder, chunk)
		})
	}
	return g.Wait()
}

func embedChunk(ctx context.Context, embedder driven.EmbeddingService, chunk *domain.Chunk) error {
	vectors, err := embedder.Embed(ctx, []string{chunk.Content})
	if err != nil {
		return fmt.Errorf("chunk %d: %w", chunk.Index, err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return fmt.Errorf("chunk %d: %w: empty embedding", chunk.Index, domain.ErrEmbeddingFailed)
	}
	chunk.Embedding = vectors[0]
	return nil
}

// fail records the job error on the document and returns it.
func (s *IngestionService) fail(ctx context.Context, logger *slog.Logger, documentID string, cause error) error {
	logger.Error("ingestion failed", "error", cause)

	// The job context may already be cancelled; the failure must still land
	ctx = context.WithoutCancel(ctx)
	err := withLock(ctx, s.lock, documentLockName(documentID), s.lockTTL, s.lockWait, func() error {
		doc, err := s.documentStore.Get(ctx, documentID)
		if err != nil {
			return err
		}
		doc.MarkError(cause.Error())
		return s.documentStore.Save(ctx, doc)
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Warn("failed to record ingestion error", "error", err)
	}
	return cause
}
