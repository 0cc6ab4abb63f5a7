package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"mealplanner/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndAggregate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	records := []Generation{
		{Strategy: "llm_only", Model: "gemini-2.0-flash", TotalTokens: 1000, LatencyMS: 4000, MealCount: 9, Timestamp: now},
		{Strategy: "llm_only", Model: "gemini-2.0-flash", TotalTokens: 1200, LatencyMS: 6000, MealCount: 9, Timestamp: now},
		{Strategy: "fast_llm", Model: "gemini-2.0-flash", TotalTokens: 800, LatencyMS: 1500, MealCount: 6, Timestamp: now},
	}
	for _, g := range records {
		if err := store.RecordGeneration(ctx, g); err != nil {
			t.Fatalf("Failed to record generation: %v", err)
		}
	}

	stats, err := store.StatsSince(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 strategies, got %d", len(stats))
	}

	// Ordered by strategy name.
	if stats[0].Strategy != "fast_llm" || stats[0].Plans != 1 {
		t.Errorf("Unexpected fast_llm stats: %+v", stats[0])
	}
	if stats[1].Strategy != "llm_only" || stats[1].Plans != 2 {
		t.Errorf("Unexpected llm_only stats: %+v", stats[1])
	}
	if stats[1].AvgLatencyMS != 5000 {
		t.Errorf("Expected avg latency 5000, got %v", stats[1].AvgLatencyMS)
	}
	if stats[1].TotalTokens != 2200 {
		t.Errorf("Expected 2200 total tokens, got %d", stats[1].TotalTokens)
	}
}

func TestStatsSinceFiltersOldRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := Generation{Strategy: "rag", LatencyMS: 100, MealCount: 3, Timestamp: time.Now().UTC().Add(-48 * time.Hour)}
	if err := store.RecordGeneration(ctx, old); err != nil {
		t.Fatalf("Failed to record generation: %v", err)
	}

	stats, err := store.StatsSince(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("Failed to aggregate: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("Expected old records filtered out, got %v", stats)
	}
}
