// Package metrics persists per-plan generation telemetry to SQLite.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Generation records metadata for a single plan generation.
type Generation struct {
	Strategy         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	LatencyMS        int64
	MealCount        int
	Timestamp        time.Time
}

// StrategyStats aggregates generations per strategy.
type StrategyStats struct {
	Strategy     string
	Plans        int
	AvgLatencyMS float64
	TotalTokens  int
	AvgMealCount float64
}

// Store handles persistence of generation metrics.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// RecordGeneration saves one generation record.
func (s *Store) RecordGeneration(ctx context.Context, g Generation) error {
	ts := g.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_metrics
			(strategy, model, prompt_tokens, completion_tokens, total_tokens, latency_ms, meal_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Strategy, g.Model, g.PromptTokens, g.CompletionTokens, g.TotalTokens, g.LatencyMS, g.MealCount, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation metric: %w", err)
	}
	return nil
}

// StatsSince aggregates generations per strategy from the given time on.
func (s *Store) StatsSince(ctx context.Context, since time.Time) ([]StrategyStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT strategy,
		       COUNT(*),
		       AVG(latency_ms),
		       COALESCE(SUM(total_tokens), 0),
		       AVG(meal_count)
		FROM generation_metrics
		WHERE created_at >= ?
		GROUP BY strategy
		ORDER BY strategy`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation stats: %w", err)
	}
	defer rows.Close()

	var stats []StrategyStats
	for rows.Next() {
		var st StrategyStats
		if err := rows.Scan(&st.Strategy, &st.Plans, &st.AvgLatencyMS, &st.TotalTokens, &st.AvgMealCount); err != nil {
			return nil, fmt.Errorf("failed to scan generation stats: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
