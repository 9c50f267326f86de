package main

// @title           Sercha RAG API
// @version         1.0
// @description     Document question answering. Upload pdf, csv or txt files and ask questions answered from their content.

// @contact.name   Sercha OSS
// @contact.url    https://github.com/custodia-labs/sercha-rag/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/custodia-labs/sercha-rag/docs"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/auth"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/memory"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/postgres"
	memoryqueue "github.com/custodia-labs/sercha-rag/internal/adapters/driven/queue/memory"
	postgresqueue "github.com/custodia-labs/sercha-rag/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/custodia-labs/sercha-rag/internal/adapters/driven/queue/redis"
	redisadapter "github.com/custodia-labs/sercha-rag/internal/adapters/driven/redis"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/http"
	"github.com/custodia-labs/sercha-rag/internal/chunker"
	"github.com/custodia-labs/sercha-rag/internal/config"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/extractors"
	"github.com/custodia-labs/sercha-rag/internal/runtime"
	"github.com/custodia-labs/sercha-rag/internal/worker"
)

var version = "dev"

// stores groups the persistence ports selected at startup
type stores struct {
	documents driven.DocumentStore
	chunks    driven.ChunkStore
	queries   driven.QueryStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line arg overrides RUN_MODE
	if len(os.Args) > 1 {
		cfg.RunMode = os.Args[1]
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
			os.Exit(1)
		}
	}

	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("sercha-rag starting", "version", version, "mode", cfg.RunMode, "storage", cfg.Storage)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	checks := make(map[string]http.Pinger)

	// ===== Storage =====
	var (
		db  *postgres.DB
		st  stores
		err error
	)

	switch cfg.Storage {
	case config.StoragePostgres:
		logger.Info("connecting to postgres")
		db, err = postgres.Connect(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Database.AutoMigrate {
			if err := db.InitSchema(ctx); err != nil {
				return err
			}
		}
		logger.Info("postgres connected", "auto_migrate", cfg.Database.AutoMigrate)

		st = stores{
			documents: postgres.NewDocumentStore(db),
			chunks:    postgres.NewChunkStore(db),
			queries:   postgres.NewQueryStore(db),
		}
		checks["database"] = db
	default:
		memStore := memory.NewStore()
		st = stores{
			documents: memStore.Documents(),
			chunks:    memStore.Chunks(),
			queries:   memStore.Queries(),
		}
		logger.Info("using in-memory storage")
	}

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		logger.Info("connecting to redis")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected")
	}

	// ===== Task queue and lock =====
	taskQueue, queueBackend, err := newTaskQueue(redisClient, db)
	if err != nil {
		return err
	}
	defer taskQueue.Close()
	checks["queue"] = taskQueue

	lock := newLock(redisClient, db)
	logger.Info("task queue ready", "backend", queueBackend)

	// ===== AI providers =====
	runtimeConfig := domain.NewRuntimeConfig(cfg.Storage, queueBackend)
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	configureProviders(ctx, cfg, runtimeServices, logger)

	logger.Info("runtime config",
		"embedding", runtimeConfig.EmbeddingAvailable(),
		"llm", runtimeConfig.LLMAvailable(),
	)

	// ===== Services =====
	documentService := services.NewDocumentService(services.DocumentServiceConfig{
		DocumentStore:  st.documents,
		ChunkStore:     st.chunks,
		Extractors:     extractors.DefaultRegistry(),
		TaskQueue:      taskQueue,
		Lock:           lock,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		Logger:         logger,
	})

	ingestionService := services.NewIngestionService(services.IngestionServiceConfig{
		DocumentStore: st.documents,
		ChunkStore:    st.chunks,
		Lock:          lock,
		Chunker: chunker.New(chunker.Config{
			Size:    cfg.RAG.ChunkSize,
			Overlap: cfg.RAG.ChunkOverlap,
		}),
		Services:         runtimeServices,
		EmbedConcurrency: cfg.RAG.EmbedConcurrency,
		Logger:           logger,
	})

	queryService := services.NewQueryService(services.QueryServiceConfig{
		QueryStore:    st.queries,
		DocumentStore: st.documents,
		ChunkStore:    st.chunks,
		TaskQueue:     taskQueue,
		Services:      runtimeServices,
		Settings:      cfg.RAG,
		Logger:        logger,
	})

	statsService := services.NewStatsService(st.documents, st.chunks, st.queries)

	var authService driving.AuthService
	if cfg.Auth.Enabled() {
		authService, err = services.NewAuthService(auth.NewAdapter(cfg.Auth.JWTSecret), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)
		if err != nil {
			return err
		}
		logger.Info("admin login enabled", "username", cfg.Auth.AdminUsername)
	}

	// ===== Run =====
	var w *worker.Worker
	if cfg.RunMode == config.ModeWorker || cfg.RunMode == config.ModeAll {
		w = worker.NewWorker(worker.WorkerConfig{
			TaskQueue:      taskQueue,
			Documents:      ingestionService,
			Queries:        queryService,
			Logger:         logger,
			Concurrency:    cfg.Worker.Concurrency,
			DequeueTimeout: cfg.Worker.DequeueTimeout,
			PurgeInterval:  cfg.Worker.PurgeInterval,
			TaskRetention:  cfg.Worker.TaskRetention,
		})
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		defer w.Stop()
	}

	if cfg.RunMode == config.ModeWorker {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		return nil
	}

	server := http.NewServer(
		http.Config{
			Host:           cfg.Server.Host,
			Port:           cfg.Server.Port,
			Version:        version,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         logger,
		},
		authService,
		documentService,
		queryService,
		statsService,
		taskQueue,
		checks,
	)

	return server.Start(ctx)
}

// newTaskQueue prefers Redis, then PostgreSQL, then the in-process queue
func newTaskQueue(redisClient *redis.Client, db *postgres.DB) (driven.TaskQueue, string, error) {
	if redisClient != nil {
		hostname, _ := os.Hostname()
		q, err := redisqueue.NewQueue(redisClient, fmt.Sprintf("%s-%d", hostname, os.Getpid()))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create task queue: %w", err)
		}
		return q, "redis", nil
	}
	if db != nil {
		return postgresqueue.NewQueue(db.DB), "postgres", nil
	}
	return memoryqueue.NewQueue(), "memory", nil
}

// newLock mirrors the queue backend selection
func newLock(redisClient *redis.Client, db *postgres.DB) driven.DistributedLock {
	if redisClient != nil {
		return redisadapter.NewLock(redisClient)
	}
	if db != nil {
		return postgres.NewAdvisoryLock(db)
	}
	return memory.NewLock()
}

// configureProviders installs the embedding and generation clients.
// An unreachable provider is logged and left unset; dependent jobs then
// fail with a service unavailable error.
func configureProviders(ctx context.Context, cfg *config.Config, rs *runtime.Services, logger *slog.Logger) {
	factory := ai.NewFactory(cfg.AI.RequestsPerMinute)

	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	embedding, err := factory.CreateEmbeddingService(cfg.EmbeddingSettings())
	switch {
	case err != nil:
		logger.Warn("embedding provider not created", "error", err)
	case embedding == nil:
		logger.Warn("embedding provider not configured", "provider", cfg.AI.Provider)
	default:
		if err := rs.ValidateAndSetEmbedding(checkCtx, embedding); err != nil {
			logger.Warn("embedding provider unreachable", "model", cfg.AI.EmbeddingModel, "error", err)
		}
	}

	llm, err := factory.CreateLLMService(cfg.LLMSettings())
	switch {
	case err != nil:
		logger.Warn("llm provider not created", "error", err)
	case llm == nil:
		logger.Warn("llm provider not configured", "provider", cfg.AI.Provider)
	default:
		if err := rs.ValidateAndSetLLM(checkCtx, llm); err != nil {
			logger.Warn("llm provider unreachable", "model", cfg.AI.LLMModel, "error", err)
		}
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
