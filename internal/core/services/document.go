package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/retrieval"
)

// DefaultMaxUploadBytes is the largest accepted upload (10 MiB)
const DefaultMaxUploadBytes = 10 << 20

// debugPreviewLength is the preview size in the chunk debug listing
const debugPreviewLength = 100

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService implements the DocumentService interface
type documentService struct {
	documentStore  driven.DocumentStore
	chunkStore     driven.ChunkStore
	extractors     driven.ExtractorRegistry
	taskQueue      driven.TaskQueue
	lock           driven.DistributedLock
	maxUploadBytes int64
	lockTTL        time.Duration
	lockWait       time.Duration
	logger         *slog.Logger
}

// DocumentServiceConfig holds dependencies for the document service.
type DocumentServiceConfig struct {
	DocumentStore  driven.DocumentStore
	ChunkStore     driven.ChunkStore
	Extractors     driven.ExtractorRegistry
	TaskQueue      driven.TaskQueue
	Lock           driven.DistributedLock
	MaxUploadBytes int64
	LockTTL        time.Duration
	LockWait       time.Duration
	Logger         *slog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) driving.DocumentService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = DefaultLockTTL
	}
	lockWait := cfg.LockWait
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}

	return &documentService{
		documentStore:  cfg.DocumentStore,
		chunkStore:     cfg.ChunkStore,
		extractors:     cfg.Extractors,
		taskQueue:      cfg.TaskQueue,
		lock:           cfg.Lock,
		maxUploadBytes: maxUpload,
		lockTTL:        lockTTL,
		lockWait:       lockWait,
		logger:         logger,
	}
}

// Upload validates and stores a document, extracts its text and enqueues
// the ingestion job.
func (s *documentService) Upload(ctx context.Context, name string, data []byte) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, s.maxUploadBytes)
	}

	doc := domain.NewDocument(name, int64(len(data)))
	if !doc.Type.IsSupported() {
		return nil, fmt.Errorf("%w: %q (supported: pdf, csv, txt)", domain.ErrUnsupportedFormat, doc.Type)
	}

	if err := s.documentStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	logger := s.logger.With("document_id", doc.ID, "file_name", doc.Name)

	text, err := s.extractors.Extract(ctx, doc.Type, data)
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w: no text content found", domain.ErrExtractionFailed)
	}
	if err != nil {
		logger.Warn("text extraction failed", "error", err)
		doc.MarkError(err.Error())
		if saveErr := s.documentStore.Save(ctx, doc); saveErr != nil {
			return nil, fmt.Errorf("failed to update document: %w", saveErr)
		}
		return doc, nil
	}

	doc.MarkProcessing(text)
	if err := s.documentStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	if err := s.taskQueue.Enqueue(ctx, domain.NewIngestDocumentTask(doc.ID)); err != nil {
		logger.Error("failed to enqueue ingestion", "error", err)
		doc.MarkError("failed to schedule processing")
		_ = s.documentStore.Save(ctx, doc)
		return nil, fmt.Errorf("%w: failed to enqueue ingestion: %v", domain.ErrServiceUnavailable, err)
	}

	logger.Info("document uploaded", "type", doc.Type, "size", doc.Size)
	return doc, nil
}

// Get retrieves a document by ID
func (s *documentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.documentStore.Get(ctx, id)
}

// List retrieves all documents, most recently uploaded first
func (s *documentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.documentStore.List(ctx)
}

// Delete removes a document and its chunks while holding the document lock,
// so an in-flight ingestion either finishes first or sees the document gone.
func (s *documentService) Delete(ctx context.Context, id string) error {
	if _, err := s.documentStore.Get(ctx, id); err != nil {
		return err
	}

	err := withLock(ctx, s.lock, documentLockName(id), s.lockTTL, s.lockWait, func() error {
		s.cancelPendingIngestion(ctx, id)
		if err := s.chunkStore.DeleteByDocument(ctx, id); err != nil {
			return fmt.Errorf("failed to delete chunks: %w", err)
		}
		return s.documentStore.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// cancelPendingIngestion drops ingestion tasks for the document that no
// worker has picked up yet. A task already processing sees the document
// gone when it takes the lock.
func (s *documentService) cancelPendingIngestion(ctx context.Context, documentID string) {
	tasks, err := s.taskQueue.ListTasks(ctx, driven.TaskFilter{
		Status: domain.TaskStatusPending,
		Type:   domain.TaskTypeIngestDocument,
	})
	if err != nil {
		s.logger.Warn("failed to list pending ingestion", "document_id", documentID, "error", err)
		return
	}

	for _, task := range tasks {
		if task.DocumentID() != documentID {
			continue
		}
		if err := s.taskQueue.CancelTask(ctx, task.ID); err != nil {
			s.logger.Debug("ingestion task not cancelled", "task_id", task.ID, "error", err)
			continue
		}
		s.logger.Info("pending ingestion cancelled", "document_id", documentID, "task_id", task.ID)
	}
}

// GetChunks retrieves a document's chunks ordered by index
func (s *documentService) GetChunks(ctx context.Context, id string) ([]*domain.Chunk, error) {
	if _, err := s.documentStore.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.chunkStore.GetByDocument(ctx, id)
}

// ListChunks returns a compact view of every stored chunk
func (s *documentService) ListChunks(ctx context.Context) (*domain.ChunkListing, error) {
	chunks, err := s.chunkStore.List(ctx)
	if err != nil {
		return nil, err
	}

	listing := &domain.ChunkListing{
		Total:  len(chunks),
		Chunks: make([]domain.ChunkDebugInfo, 0, len(chunks)),
	}
	for _, c := range chunks {
		if c.HasEmbedding() {
			listing.WithEmbeddings++
		}
		listing.Chunks = append(listing.Chunks, domain.ChunkDebugInfo{
			ID:              c.ID,
			DocumentID:      c.DocumentID,
			ChunkIndex:      c.Index,
			ContentPreview:  retrieval.Preview(c.Content, debugPreviewLength),
			HasEmbedding:    c.HasEmbedding(),
			EmbeddingLength: len(c.Embedding),
			Metadata:        c.Metadata,
		})
	}
	return listing, nil
}
