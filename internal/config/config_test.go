package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeAll, cfg.RunMode)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, domain.DefaultRAGSettings(), cfg.RAG)
	assert.Equal(t, domain.AIProviderOpenAI, cfg.AI.Provider)
	assert.False(t, cfg.Auth.Enabled())
	assert.Equal(t, "gpt-4o", cfg.AI.LLMModel)
	assert.Equal(t, time.Hour, cfg.Worker.TaskRetention)
	assert.Equal(t, 10*time.Minute, cfg.Worker.PurgeInterval)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RUN_MODE", "API")
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/rag")
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "ollama")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("SIMILARITY_THRESHOLD", "0.25")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("TASK_RETENTION", "2h")
	t.Setenv("WORKER_PURGE_INTERVAL", "30s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ModeAPI, cfg.RunMode)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, domain.AIProviderOllama, cfg.AI.Provider)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.InDelta(t, 0.25, cfg.RAG.SimilarityThreshold, 1e-9)
	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxLifetime)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 2*time.Hour, cfg.Worker.TaskRetention)
	assert.Equal(t, 30*time.Second, cfg.Worker.PurgeInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidNumbersKeepDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TOP_K", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
run_mode: all
server:
  port: 7000
ai:
  provider: ollama
  llm_model: llama3.2
rag:
  chunk_size: 800
  chunk_overlap: 100
  top_k: 3
  similarity_threshold: 0.2
  temperature: 0.1
  max_tokens: 500
  embed_concurrency: 2
`), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TOP_K", "7")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, domain.AIProviderOllama, cfg.AI.Provider)
	assert.Equal(t, "llama3.2", cfg.LLMSettings().Model)
	assert.Equal(t, 800, cfg.RAG.ChunkSize)
	assert.Equal(t, 7, cfg.RAG.TopK, "environment wins over file")
	assert.Equal(t, 2, cfg.RAG.EmbedConcurrency)
}

func TestLoad_YAMLFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "does-not-exist.yaml")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LLM_MODEL=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("LLM_MODEL") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.AI.LLMModel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown run mode", func(c *Config) { c.RunMode = "batch" }},
		{"unknown storage", func(c *Config) { c.Storage = "sqlite" }},
		{"memory storage split processes", func(c *Config) { c.RunMode = ModeWorker }},
		{"postgres without url", func(c *Config) { c.Storage = StoragePostgres }},
		{"unknown provider", func(c *Config) { c.AI.Provider = "gemini" }},
		{"overlap not below size", func(c *Config) { c.RAG.ChunkOverlap = c.RAG.ChunkSize }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"login without secret", func(c *Config) {
			c.Auth.AdminUsername = "admin"
			c.Auth.AdminPassword = "secret"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestProviderSettings(t *testing.T) {
	cfg := Default()
	cfg.AI.APIKey = "sk-test"
	cfg.AI.BaseURL = "http://localhost:1234/v1"

	emb := cfg.EmbeddingSettings()
	assert.Equal(t, "text-embedding-3-small", emb.Model)
	assert.Equal(t, "sk-test", emb.APIKey)
	assert.True(t, emb.IsConfigured())

	llm := cfg.LLMSettings()
	assert.Equal(t, "gpt-4o", llm.Model)
	assert.Equal(t, "http://localhost:1234/v1", llm.BaseURL)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Empty(t, splitList(""))
}
