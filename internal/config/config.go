package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the application.
type Config struct {
	GeminiAPIKey string

	// Edamam Recipe Search credentials. Optional: without them the
	// retrieval-augmented modes degrade to pure generation.
	EdamamAppID  string
	EdamamAppKey string
	EdamamUserID string

	// Recipe generation
	GenerationMode     string
	HybridRAGRatio     float64
	CacheTTL           time.Duration
	NutritionTolerance float64
	RequestTimeout     time.Duration

	// HTTP server
	Port                  int
	RateLimitEnabled      bool
	RateLimitPerMinute    int
	RateLimitSystemMaxRPS int

	// Storage
	DBPath    string
	RedisAddr string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	cfg := &Config{
		GeminiAPIKey: geminiAPIKey,

		EdamamAppID:  os.Getenv("EDAMAM_APP_ID"),
		EdamamAppKey: os.Getenv("EDAMAM_APP_KEY"),
		EdamamUserID: os.Getenv("EDAMAM_USER_ID"),

		GenerationMode:     envString("RECIPE_GENERATION_MODE", "llm_only"),
		HybridRAGRatio:     envFloat("HYBRID_RAG_RATIO", 0.7),
		CacheTTL:           time.Duration(envInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		NutritionTolerance: envFloat("NUTRITION_TOLERANCE", 0.10),
		RequestTimeout:     time.Duration(envInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,

		Port:                  envInt("PORT", 8080),
		RateLimitEnabled:      envBool("RATE_LIMIT_ENABLED", true),
		RateLimitPerMinute:    envInt("RATE_LIMIT_PER_MINUTE", 10),
		RateLimitSystemMaxRPS: envInt("RATE_LIMIT_SYSTEM_MAX_RPS", 50),

		DBPath:    envString("DB_PATH", "data/mealplanner.db"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	// Basic clamping only; anything else is the caller's problem.
	if cfg.HybridRAGRatio < 0 {
		cfg.HybridRAGRatio = 0
	}
	if cfg.HybridRAGRatio > 1 {
		cfg.HybridRAGRatio = 1
	}
	if cfg.NutritionTolerance <= 0 {
		cfg.NutritionTolerance = 0.10
	}

	return cfg, nil
}

// HasEdamam reports whether retrieval credentials are configured.
func (c *Config) HasEdamam() bool {
	return c.EdamamAppID != "" && c.EdamamAppKey != ""
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
