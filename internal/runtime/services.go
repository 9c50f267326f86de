// Package runtime holds the provider clients shared by the API and the
// worker. Providers are built in the composition root and may be swapped
// while the process runs.
package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Services holds the embedding and generation providers.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// config tracks capability flags
	config *domain.RuntimeConfig

	// nil until configured
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
}

// ProviderStatus describes the configured providers
type ProviderStatus struct {
	EmbeddingAvailable bool   `json:"embedding_available"`
	EmbeddingModel     string `json:"embedding_model,omitempty"`
	LLMAvailable       bool   `json:"llm_available"`
	LLMModel           string `json:"llm_model,omitempty"`
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// LLMService returns the current LLM service (may be nil)
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llmService
}

// Status reports which providers are available and the models they use
func (s *Services) Status() ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var status ProviderStatus
	if s.embeddingService != nil {
		status.EmbeddingAvailable = true
		status.EmbeddingModel = s.embeddingService.Model()
	}
	if s.llmService != nil {
		status.LLMAvailable = true
		status.LLMModel = s.llmService.Model()
	}
	return status
}

// SetEmbeddingService replaces the embedding service, closing the old one.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService replaces the LLM service, closing the old one.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.llmService != nil {
		_ = s.llmService.Close()
	}

	s.llmService = svc
	s.config.SetLLMAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.llmService != nil {
		_ = s.llmService.Close()
		s.llmService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)

	return nil
}

// ValidateAndSetEmbedding checks connectivity before installing svc.
// A failing service is closed and the current one is kept.
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM checks connectivity before installing svc.
// A failing service is closed and the current one is kept.
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc == nil {
		s.SetLLMService(nil)
		return nil
	}

	if err := svc.Ping(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetLLMService(svc)
	return nil
}
