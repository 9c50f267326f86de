package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/retrieval"
	"github.com/custodia-labs/sercha-rag/internal/runtime"
)

// DefaultRecentQueries is the page size for recent query listings
const DefaultRecentQueries = 10

// Ensure QueryService implements the driving ports
var (
	_ driving.QueryService   = (*QueryService)(nil)
	_ driving.QueryProcessor = (*QueryService)(nil)
)

// QueryService accepts questions and runs the answering pipeline:
//  1. Embed the question
//  2. Rank every stored chunk against it
//  3. Assemble the labelled context block and source list
//  4. Generate the answer and derive confidence from retrieval quality
type QueryService struct {
	queryStore    driven.QueryStore
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	taskQueue     driven.TaskQueue
	services      *runtime.Services
	settings      domain.RAGSettings
	logger        *slog.Logger
}

// QueryServiceConfig holds dependencies for QueryService.
type QueryServiceConfig struct {
	QueryStore    driven.QueryStore
	DocumentStore driven.DocumentStore
	ChunkStore    driven.ChunkStore
	TaskQueue     driven.TaskQueue
	Services      *runtime.Services

	// Settings supplies topK, threshold and generation parameters.
	// Zero value means DefaultRAGSettings.
	Settings domain.RAGSettings
	Logger   *slog.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(cfg QueryServiceConfig) *QueryService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settings := cfg.Settings
	if settings == (domain.RAGSettings{}) {
		settings = domain.DefaultRAGSettings()
	}

	return &QueryService{
		queryStore:    cfg.QueryStore,
		documentStore: cfg.DocumentStore,
		chunkStore:    cfg.ChunkStore,
		taskQueue:     cfg.TaskQueue,
		services:      cfg.Services,
		settings:      settings,
		logger:        logger,
	}
}

// Ask stores the question in the processing state and enqueues the
// answering job.
func (s *QueryService) Ask(ctx context.Context, question string) (*domain.Query, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	query := domain.NewQuery(question)
	if err := s.queryStore.Save(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to save query: %w", err)
	}

	if err := s.taskQueue.Enqueue(ctx, domain.NewAnswerQueryTask(query.ID)); err != nil {
		s.logger.Error("failed to enqueue query", "query_id", query.ID, "error", err)
		query.Fail("failed to schedule processing")
		_ = s.queryStore.Save(ctx, query)
		return nil, fmt.Errorf("%w: failed to enqueue query: %v", domain.ErrServiceUnavailable, err)
	}

	return query, nil
}

// Get retrieves a query by ID
func (s *QueryService) Get(ctx context.Context, id string) (*domain.Query, error) {
	return s.queryStore.Get(ctx, id)
}

// ListRecent returns up to limit queries, newest first
func (s *QueryService) ListRecent(ctx context.Context, limit int) ([]*domain.Query, error) {
	if limit <= 0 {
		limit = DefaultRecentQueries
	}
	return s.queryStore.ListRecent(ctx, limit)
}

// ExampleQuestions suggests questions from the stored chunks
func (s *QueryService) ExampleQuestions(ctx context.Context) []string {
	var llm driven.LLMService
	if s.services != nil {
		llm = s.services.LLMService()
	}
	synth := NewQuestionSynthesizer(llm, s.logger)

	chunks, err := s.chunkStore.List(ctx)
	if err != nil {
		s.logger.Warn("failed to list chunks for example questions", "error", err)
		return synth.Suggest(ctx, nil)
	}
	return synth.Suggest(ctx, chunks)
}

// ProcessQuery answers a stored query.
func (s *QueryService) ProcessQuery(ctx context.Context, queryID string) error {
	startTime := time.Now()
	logger := s.logger.With("query_id", queryID)

	query, err := s.queryStore.Get(ctx, queryID)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("query not found, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get query: %w", err)
	}
	if query.Status != domain.QueryStatusProcessing {
		logger.Info("query already answered, skipping", "status", query.Status)
		return nil
	}

	answer, confidence, sources, err := s.answer(ctx, query.Question)
	if err != nil {
		logger.Error("query failed", "error", err)
		query.Fail(err.Error())
		if saveErr := s.queryStore.Save(context.WithoutCancel(ctx), query); saveErr != nil {
			logger.Warn("failed to record query error", "error", saveErr)
		}
		return err
	}

	query.Complete(answer, confidence, sources)
	if err := s.queryStore.Save(ctx, query); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	logger.Info("query answered",
		"sources", len(sources),
		"confidence", confidence,
		"duration_seconds", time.Since(startTime).Seconds(),
	)
	return nil
}

func (s *QueryService) answer(ctx context.Context, question string) (string, float64, []domain.SourceCitation, error) {
	var embedder driven.EmbeddingService
	var llm driven.LLMService
	if s.services != nil {
		embedder = s.services.EmbeddingService()
		llm = s.services.LLMService()
	}
	if embedder == nil {
		return "", 0, nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrServiceUnavailable)
	}

	queryVector, err := embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", 0, nil, err
	}

	chunks, err := s.chunkStore.List(ctx)
	if err != nil {
		return "", 0, nil, fmt.Errorf("failed to list chunks: %w", err)
	}

	ranked := retrieval.Rank(queryVector, chunks, s.settings.TopK, s.settings.SimilarityThreshold)
	if len(ranked) == 0 {
		return NoRelevantInformationAnswer, 0, nil, nil
	}

	docs, err := s.documentStore.List(ctx)
	if err != nil {
		return "", 0, nil, fmt.Errorf("failed to list documents: %w", err)
	}
	assembly := retrieval.Assemble(ranked, retrieval.IndexDocuments(docs))

	text, err := NewAnswerGenerator(llm, s.settings).Answer(ctx, question, assembly.Context)
	if err != nil {
		return "", 0, nil, err
	}

	return text, Confidence(ranked), assembly.Sources, nil
}
