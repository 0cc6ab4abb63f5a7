package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("RECIPE_GENERATION_MODE", "hybrid")
		t.Setenv("HYBRID_RAG_RATIO", "0.5")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "20")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
		if cfg.GenerationMode != "hybrid" {
			t.Errorf("Expected GenerationMode to be 'hybrid', got '%s'", cfg.GenerationMode)
		}
		if cfg.HybridRAGRatio != 0.5 {
			t.Errorf("Expected HybridRAGRatio to be 0.5, got %v", cfg.HybridRAGRatio)
		}
		if cfg.RateLimitPerMinute != 20 {
			t.Errorf("Expected RateLimitPerMinute to be 20, got %d", cfg.RateLimitPerMinute)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("RECIPE_GENERATION_MODE")
		os.Unsetenv("HYBRID_RAG_RATIO")
		os.Unsetenv("NUTRITION_TOLERANCE")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.GenerationMode != "llm_only" {
			t.Errorf("Expected default mode 'llm_only', got '%s'", cfg.GenerationMode)
		}
		if cfg.HybridRAGRatio != 0.7 {
			t.Errorf("Expected default ratio 0.7, got %v", cfg.HybridRAGRatio)
		}
		if cfg.NutritionTolerance != 0.10 {
			t.Errorf("Expected default tolerance 0.10, got %v", cfg.NutritionTolerance)
		}
		if cfg.HasEdamam() {
			t.Error("Expected HasEdamam to be false without credentials")
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("RatioClamped", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("HYBRID_RAG_RATIO", "1.5")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.HybridRAGRatio != 1.0 {
			t.Errorf("Expected ratio clamped to 1.0, got %v", cfg.HybridRAGRatio)
		}
	})
}
