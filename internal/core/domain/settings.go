package domain

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"`
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RAGSettings holds the tunable retrieval and generation parameters
type RAGSettings struct {
	ChunkSize           int     `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap        int     `json:"chunk_overlap" yaml:"chunk_overlap"`
	TopK                int     `json:"top_k" yaml:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`
	Temperature         float64 `json:"temperature" yaml:"temperature"`
	MaxTokens           int     `json:"max_tokens" yaml:"max_tokens"`
	EmbedConcurrency    int     `json:"embed_concurrency" yaml:"embed_concurrency"`
}

// DefaultRAGSettings returns the tuned defaults
func DefaultRAGSettings() RAGSettings {
	return RAGSettings{
		ChunkSize:           1000,
		ChunkOverlap:        200,
		TopK:                5,
		SimilarityThreshold: 0.15,
		Temperature:         0.3,
		MaxTokens:           1000,
		EmbedConcurrency:    1,
	}
}

// Validate checks the settings are usable
func (s RAGSettings) Validate() error {
	if s.ChunkSize <= 0 || s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return ErrInvalidInput
	}
	if s.TopK <= 0 || s.MaxTokens <= 0 || s.EmbedConcurrency <= 0 {
		return ErrInvalidInput
	}
	if s.SimilarityThreshold < -1 || s.SimilarityThreshold > 1 {
		return ErrInvalidInput
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return ErrInvalidInput
	}
	return nil
}
