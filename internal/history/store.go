// Package history persists plan requests so users can revisit what was
// generated for them.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanRequest is one generate call and the identity of the plan it produced.
// The interpreted request fields are stored as comma-joined strings alongside
// the raw text. The full plan body is not stored; plans are cheap to
// regenerate and large to keep.
type PlanRequest struct {
	ID                  string
	UserID              string
	QueryText           string
	Mode                string
	PlanID              string
	DurationDays        int
	TotalMeals          int
	DietaryRestrictions string
	Preferences         string
	SpecialRequirements string
	Warning             string
	CreatedAt           time.Time
}

// Store handles persistence of plan requests.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SavePlanRequest records one request. A missing ID or timestamp is filled
// in.
func (s *Store) SavePlanRequest(ctx context.Context, r PlanRequest) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plan_requests
			(id, user_id, query_text, generation_mode, plan_id, duration_days, total_meals,
			 dietary_restrictions, preferences, special_requirements, warning, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.QueryText, r.Mode, r.PlanID, r.DurationDays, r.TotalMeals,
		r.DietaryRestrictions, r.Preferences, r.SpecialRequirements, r.Warning, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan request: %w", err)
	}
	return nil
}

// RecentForUser returns a user's most recent requests, newest first.
func (s *Store) RecentForUser(ctx context.Context, userID string, limit int) ([]PlanRequest, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, query_text, generation_mode, plan_id, duration_days, total_meals,
		       dietary_restrictions, preferences, special_requirements, warning, created_at
		FROM plan_requests
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan requests: %w", err)
	}
	defer rows.Close()

	var out []PlanRequest
	for rows.Next() {
		var r PlanRequest
		if err := rows.Scan(&r.ID, &r.UserID, &r.QueryText, &r.Mode, &r.PlanID,
			&r.DurationDays, &r.TotalMeals, &r.DietaryRestrictions, &r.Preferences,
			&r.SpecialRequirements, &r.Warning, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
