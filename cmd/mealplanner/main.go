package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mealplanner/internal/config"
	"mealplanner/internal/database"
	"mealplanner/internal/history"
	"mealplanner/internal/llm"
	"mealplanner/internal/metrics"
	"mealplanner/internal/planner"
	"mealplanner/internal/query"
	"mealplanner/internal/retrieval"
	"mealplanner/internal/server"
	"mealplanner/internal/strategy"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	defer closeIfCloser(geminiClient, logger)
	textGen := llm.Measured(geminiClient)

	var retriever retrieval.Retriever
	if cfg.HasEdamam() {
		client, err := retrieval.NewClient(cfg.EdamamAppID, cfg.EdamamAppKey, cfg.EdamamUserID)
		if err != nil {
			return fmt.Errorf("failed to initialize recipe search client: %w", err)
		}
		retriever = client
	} else {
		logger.Info("recipe search credentials not set; retrieval modes degrade to pure generation")
	}

	var cache strategy.CandidateCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		defer redisClient.Close()
		cache = strategy.NewRedisCache(redisClient, cfg.CacheTTL, logger)
		logger.Info("using redis candidate cache", zap.String("addr", cfg.RedisAddr))
	} else {
		cache = strategy.NewMemoryCache(cfg.CacheTTL)
	}

	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	historyStore := history.NewStore(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	interpreter := query.NewInterpreter(textGen, logger)
	selector := strategy.NewSelector(textGen, retriever, cache, cfg.HybridRAGRatio, cfg.NutritionTolerance, logger)
	assembler := planner.NewAssembler(interpreter, selector, metricsStore, logger)

	srv := server.New(cfg, assembler, historyStore, metricsStore, logger)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("default_mode", cfg.GenerationMode))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func closeIfCloser(gen llm.TextGenerator, logger *zap.Logger) {
	if closer, ok := gen.(llm.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Warn("failed to close model client", zap.Error(err))
		}
	}
}
