package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/routeward/routeward/internal/config"
	"github.com/routeward/routeward/internal/manager"
	"github.com/routeward/routeward/internal/routefile"
	"github.com/routeward/routeward/internal/store"
	"github.com/routeward/routeward/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

// storePinger is satisfied by both store backends.
type storePinger interface {
	store.Store
	worker.Pinger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting routeward worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client (carries the mutation streams, and the route
	// documents themselves when the redis backend is selected)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize the configuration store
	routeStore := initStore(cfg, redisClient, logger)
	logger.Info("configuration store initialized", zap.String("backend", cfg.StoreBackend))

	// Initialize the mutation manager
	mgr := manager.New(routeStore, logger)

	// One-shot declarative sync before serving mutations
	if cfg.RouteFile != "" {
		if err := syncRouteFile(mgr, cfg, logger); err != nil {
			logger.Fatal("failed to sync route file", zap.Error(err))
		}
	}

	// Start worker
	w := worker.NewWorker(cfg, redisClient, mgr, logger)
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, cfg.WorkerID, cfg.StoreBackend, routeStore, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("routeward worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Stop health server
	if err := healthServer.Stop(); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	// Stop worker
	if err := w.Stop(); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	default:
		logger.Info("worker stopped gracefully")
	}
}

// initStore selects the configuration store backend.
func initStore(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) storePinger {
	if cfg.StoreBackend == config.BackendRedis {
		return store.NewRedisStore(redisClient, logger)
	}
	return store.NewAdminClient(cfg.AdminEndpoint, cfg.AdminTimeout, cfg.AdminRetryBudget, logger)
}

// syncRouteFile loads the declarative route file and replaces the target
// server's sequence with its sorted, validated form.
func syncRouteFile(mgr *manager.Manager, cfg *config.Config, logger *zap.Logger) error {
	f, err := routefile.Load(cfg.RouteFile)
	if err != nil {
		return err
	}

	server := f.Server
	if cfg.TargetServer != "" {
		server = cfg.TargetServer
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mgr.SyncRoutes(ctx, server, f.Build()); err != nil {
		return err
	}

	logger.Info("route file synced",
		zap.String("file", cfg.RouteFile),
		zap.String("server", server),
		zap.Int("routes", len(f.Routes)),
	)
	return nil
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
