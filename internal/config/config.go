// Package config loads process configuration from defaults, an optional
// YAML file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Run modes
const (
	ModeAPI    = "api"
	ModeWorker = "worker"
	ModeAll    = "all"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig configures the PostgreSQL pool
type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// AIConfig selects the embedding and generation providers
type AIConfig struct {
	Provider          domain.AIProvider `yaml:"provider"`
	APIKey            string            `yaml:"-"`
	BaseURL           string            `yaml:"base_url"`
	EmbeddingModel    string            `yaml:"embedding_model"`
	LLMModel          string            `yaml:"llm_model"`
	RequestsPerMinute int               `yaml:"requests_per_minute"`
}

// WorkerConfig configures background task processing
type WorkerConfig struct {
	Concurrency    int           `yaml:"concurrency"`
	DequeueTimeout int           `yaml:"dequeue_timeout"` // seconds
	PurgeInterval  time.Duration `yaml:"purge_interval"`
	TaskRetention  time.Duration `yaml:"task_retention"` // finished tasks older than this are purged
}

// AuthConfig enables operator login when both credentials are set
type AuthConfig struct {
	JWTSecret     string `yaml:"-"`
	AdminUsername string `yaml:"admin_username"`
	AdminPassword string `yaml:"-"`
}

// Enabled reports whether login and bearer checks are turned on
func (a AuthConfig) Enabled() bool {
	return a.AdminUsername != "" && a.AdminPassword != ""
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// Config is the root process configuration
type Config struct {
	RunMode  string             `yaml:"run_mode"`
	Storage  string             `yaml:"storage"`
	RedisURL string             `yaml:"redis_url"`
	Server   ServerConfig       `yaml:"server"`
	Database DatabaseConfig     `yaml:"database"`
	AI       AIConfig           `yaml:"ai"`
	RAG      domain.RAGSettings `yaml:"rag"`
	Worker   WorkerConfig       `yaml:"worker"`
	Auth     AuthConfig         `yaml:"auth"`
	Log      LogConfig          `yaml:"log"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		RunMode: ModeAll,
		Storage: StorageMemory,
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxUploadBytes: 10 << 20,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: time.Minute,
			AutoMigrate:     true,
		},
		AI: AIConfig{
			Provider:          domain.AIProviderOpenAI,
			EmbeddingModel:    "text-embedding-3-small",
			LLMModel:          "gpt-4o",
			RequestsPerMinute: 60,
		},
		RAG: domain.DefaultRAGSettings(),
		Worker: WorkerConfig{
			Concurrency:    2,
			DequeueTimeout: 5,
			PurgeInterval:  10 * time.Minute,
			TaskRetention:  time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// loaded into the environment if present; CONFIG_FILE names an optional
// YAML file applied before environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.RunMode = strings.ToLower(getEnv("RUN_MODE", c.RunMode))
	c.Storage = strings.ToLower(getEnv("STORAGE", c.Storage))
	c.RedisURL = getEnv("REDIS_URL", c.RedisURL)

	c.Server.Host = getEnv("HOST", c.Server.Host)
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.Server.MaxUploadBytes)))
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.Database.MaxIdleConns)
	c.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", c.Database.ConnMaxLifetime)
	c.Database.ConnMaxIdleTime = getEnvDuration("DB_CONN_MAX_IDLE_TIME", c.Database.ConnMaxIdleTime)
	c.Database.AutoMigrate = getEnvBool("DB_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.AI.Provider = domain.AIProvider(strings.ToLower(getEnv("AI_PROVIDER", string(c.AI.Provider))))
	c.AI.APIKey = getEnv("OPENAI_API_KEY", c.AI.APIKey)
	c.AI.BaseURL = getEnv("AI_BASE_URL", c.AI.BaseURL)
	c.AI.EmbeddingModel = getEnv("EMBEDDING_MODEL", c.AI.EmbeddingModel)
	c.AI.LLMModel = getEnv("LLM_MODEL", c.AI.LLMModel)
	c.AI.RequestsPerMinute = getEnvInt("AI_REQUESTS_PER_MINUTE", c.AI.RequestsPerMinute)

	c.RAG.ChunkSize = getEnvInt("CHUNK_SIZE", c.RAG.ChunkSize)
	c.RAG.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", c.RAG.ChunkOverlap)
	c.RAG.TopK = getEnvInt("TOP_K", c.RAG.TopK)
	c.RAG.SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", c.RAG.SimilarityThreshold)
	c.RAG.Temperature = getEnvFloat("TEMPERATURE", c.RAG.Temperature)
	c.RAG.MaxTokens = getEnvInt("MAX_TOKENS", c.RAG.MaxTokens)
	c.RAG.EmbedConcurrency = getEnvInt("EMBED_CONCURRENCY", c.RAG.EmbedConcurrency)

	c.Worker.Concurrency = getEnvInt("WORKER_CONCURRENCY", c.Worker.Concurrency)
	c.Worker.DequeueTimeout = getEnvInt("WORKER_DEQUEUE_TIMEOUT", c.Worker.DequeueTimeout)
	c.Worker.PurgeInterval = getEnvDuration("WORKER_PURGE_INTERVAL", c.Worker.PurgeInterval)
	c.Worker.TaskRetention = getEnvDuration("TASK_RETENTION", c.Worker.TaskRetention)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.AdminUsername = getEnv("ADMIN_USERNAME", c.Auth.AdminUsername)
	c.Auth.AdminPassword = getEnv("ADMIN_PASSWORD", c.Auth.AdminPassword)

	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", c.Log.Format))
}

// Validate rejects configurations the process cannot start with
func (c *Config) Validate() error {
	switch c.RunMode {
	case ModeAPI, ModeWorker, ModeAll:
	default:
		return fmt.Errorf("%w: unknown run mode %q (use api, worker or all)", domain.ErrInvalidInput, c.RunMode)
	}

	switch c.Storage {
	case StorageMemory:
		if c.RunMode != ModeAll {
			return fmt.Errorf("%w: memory storage requires RUN_MODE=all", domain.ErrInvalidInput)
		}
	case StoragePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("%w: DATABASE_URL is required for postgres storage", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q (use memory or postgres)", domain.ErrInvalidInput, c.Storage)
	}

	if !c.AI.Provider.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidProvider, c.AI.Provider)
	}

	if err := c.RAG.Validate(); err != nil {
		return fmt.Errorf("invalid rag settings: %w", err)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrInvalidInput, c.Server.Port)
	}

	if c.Auth.Enabled() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required when admin login is enabled", domain.ErrInvalidInput)
	}
	return nil
}

// EmbeddingSettings derives provider settings for the embedding client
func (c *Config) EmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider: c.AI.Provider,
		Model:    c.AI.EmbeddingModel,
		APIKey:   c.AI.APIKey,
		BaseURL:  c.AI.BaseURL,
	}
}

// LLMSettings derives provider settings for the generation client
func (c *Config) LLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: c.AI.Provider,
		Model:    c.AI.LLMModel,
		APIKey:   c.AI.APIKey,
		BaseURL:  c.AI.BaseURL,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
