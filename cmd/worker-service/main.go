package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/claimstack/claimgraph/internal/classifier"
	"github.com/claimstack/claimgraph/internal/config"
	"github.com/claimstack/claimgraph/internal/extraction"
	"github.com/claimstack/claimgraph/internal/inference"
	"github.com/claimstack/claimgraph/internal/queue"
	"github.com/claimstack/claimgraph/internal/storage"
	"github.com/claimstack/claimgraph/internal/worker"
	"github.com/claimstack/claimgraph/internal/worker/domain"
	"github.com/claimstack/claimgraph/shared/logger"
	"github.com/claimstack/claimgraph/shared/postgresql"
	"github.com/claimstack/claimgraph/shared/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	// Parse command-line flags
	defaultConfigPath := os.Getenv("WORKER_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/worker-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidateWorkerConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Initialize logger
	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger.Info("Starting worker service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	// Initialize PostgreSQL client
	dbClient, err := initPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	appLogger.Info("Database connection established")

	// Initialize Redis client
	redisClient, err := initRedis(&cfg.Redis, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	appLogger.Info("Redis connection established")

	// Initialize the LLM classifier
	apiKey := cfg.Classifier.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	llm, err := classifier.NewOpenAIClient(classifier.Config{
		APIKey:            apiKey,
		Model:             cfg.Classifier.Model,
		BaseURL:           cfg.Classifier.BaseURL,
		RequestTimeout:    cfg.Classifier.RequestTimeout,
		RequestsPerSecond: cfg.Classifier.RequestsPerSecond,
		Burst:             cfg.Classifier.Burst,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}

	// Wire up job handlers
	store := queue.NewRedisStore(redisClient.GetRDB(), cfg.Redis.Namespace, appLogger.Logger)
	db := storage.NewStorage(dbClient, appLogger.Logger)

	inferenceHandler := inference.NewHandler(&inference.Config{
		Logger:     appLogger.Logger,
		Store:      store,
		Locker:     store,
		Storage:    db,
		Classifier: llm,
		MaxPairs:   cfg.Inference.MaxPairs,
		BatchSize:  cfg.Inference.BatchSize,
	})

	extractionHandler := extraction.NewHandler(&extraction.Config{
		Logger:    appLogger.Logger,
		Store:     store,
		Storage:   db,
		Extractor: llm,
	})

	workerInstance := worker.New(&worker.Config{
		Logger: appLogger.Logger,
		Store:  store,
		Handlers: map[domain.JobType]worker.Handler{
			domain.JobTypeDependencyInference: inferenceHandler,
			domain.JobTypeClaimExtraction:     extractionHandler,
		},
		DequeueTimeout: cfg.Worker.DequeueTimeout,
		ErrorBackoff:   cfg.Worker.ErrorBackoff,
	})

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerInstance.Start(ctx)

	appLogger.Info("Worker service started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	appLogger.Info("Received signal, shutting down gracefully",
		slog.String("signal", sig.String()),
	)

	cancel()

	// Give worker time to shut down gracefully
	shutdownTimeout := cfg.Worker.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		workerInstance.Stop()
		close(done)
	}()

	select {
	case <-done:
		appLogger.Info("Worker stopped gracefully")
	case <-shutdownCtx.Done():
		appLogger.Warn("Worker shutdown timeout exceeded, forcing exit")
	}

	appLogger.Info("Worker service shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	loggerCfg := &logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	}

	return logger.New(loggerCfg)
}

// initPostgreSQL initializes the PostgreSQL database client
func initPostgreSQL(cfg *config.DatabaseConfig, logger *slog.Logger) (*postgresql.Client, error) {
	dbConfig := &postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}

	return postgresql.NewClient(dbConfig, logger)
}

// initRedis initializes the Redis client
func initRedis(cfg *config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	redisConfig := &redis.Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	}

	return redis.NewClient(redisConfig, logger)
}
