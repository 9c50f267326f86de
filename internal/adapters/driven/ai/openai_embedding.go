package ai

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/openai/openai-go"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure OpenAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OpenAIEmbedding)(nil)

// OpenAIEmbedding implements EmbeddingService against the OpenAI embeddings
// API or any compatible endpoint (Ollama's /v1).
type OpenAIEmbedding struct {
	client     openai.Client
	opts       clientOptions
	model      string
	baseURL    string
	dimensions atomic.Int64
}

// Model dimensions for OpenAI embedding models
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// NewOpenAIEmbedding creates an OpenAI embedding service
func NewOpenAIEmbedding(apiKey, model, baseURL string, opts ...Option) (*OpenAIEmbedding, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return newEmbedding(apiKey, model, baseURL, opts), nil
}

// NewOllamaEmbedding creates an embedding service on Ollama's OpenAI-compatible API
func NewOllamaEmbedding(baseURL, model string, opts ...Option) (*OpenAIEmbedding, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return newEmbedding("", model, baseURL, opts), nil
}

func newEmbedding(apiKey, model, baseURL string, opts []Option) *OpenAIEmbedding {
	client, o := newClient(apiKey, baseURL, embeddingTimeout, opts)
	e := &OpenAIEmbedding{
		client:  client,
		opts:    o,
		model:   model,
		baseURL: baseURL,
	}
	e.dimensions.Store(int64(openAIModelDimensions[model]))
	return e
}

// Embed generates embeddings for multiple texts in one request
func (e *OpenAIEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.opts.wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingFailed, describe(err))
	}

	// Results carry their input index; order them to match texts.
	embeddings := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(embeddings) {
			continue
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		embeddings[d.Index] = vec
	}

	for i, vec := range embeddings {
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: no embedding returned for input %d", domain.ErrEmbeddingFailed, i)
		}
	}
	e.dimensions.Store(int64(len(embeddings[0])))

	return embeddings, nil
}

// EmbedQuery generates an embedding for a question
func (e *OpenAIEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// Dimensions returns the known or last observed embedding size
func (e *OpenAIEmbedding) Dimensions() int {
	return int(e.dimensions.Load())
}

// Model returns the model name being used
func (e *OpenAIEmbedding) Model() string {
	return e.model
}

// HealthCheck makes a tiny embedding request
func (e *OpenAIEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close is a no-op; the SDK client holds no resources
func (e *OpenAIEmbedding) Close() error {
	return nil
}
