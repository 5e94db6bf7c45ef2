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

	"github.com/itechkenya/address-router/internal/config"
	"github.com/itechkenya/address-router/internal/naming"
	"github.com/itechkenya/address-router/internal/policy"
	"github.com/itechkenya/address-router/internal/router"
	"github.com/itechkenya/address-router/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

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

	// Resolve the channel naming convention
	namer, err := initNamer(cfg)
	if err != nil {
		logger.Fatal("failed to compile channel template", zap.Error(err))
	}

	// Initialize router
	routerInstance, err := router.New(cfg.RouterAddress,
		router.WithRootAddress(cfg.RootAddress),
		router.WithNamer(namer),
		router.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to initialize router", zap.Error(err))
	}

	// One-shot mode: dispatch a single destination address and exit.
	if len(os.Args) > 1 {
		channel, err := routerInstance.DispatchTo(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to dispatch: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(channel)
		return
	}

	logger.Info("starting address router node",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("router_address", cfg.RouterAddress),
	)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize dispatch policy
	dispatchPolicy, err := initPolicy(cfg, logger)
	if err != nil {
		logger.Fatal("failed to load dispatch policy", zap.Error(err))
	}

	// Initialize Redis client
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

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, routerInstance, dispatchPolicy, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg.HealthPort, cfg.RouterAddress, redisClient, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("address router running, press Ctrl+C to stop")
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

// initNamer resolves the channel naming convention: the built-in
// dot-to-underscore transform, or a Handlebars template when configured.
func initNamer(cfg *config.Config) (router.Namer, error) {
	if cfg.ChannelTemplate == "" {
		return router.NamerFunc(router.ChannelName), nil
	}
	namer, err := naming.NewEngine().Namer(cfg.ChannelTemplate)
	if err != nil {
		return nil, err
	}
	return namer, nil
}

// initPolicy loads the dispatch policy from configuration.
func initPolicy(cfg *config.Config, logger *zap.Logger) (*policy.Policy, error) {
	if cfg.PolicyRules == "" {
		return policy.New(nil, logger)
	}
	return policy.Parse(cfg.PolicyRules, logger)
}
