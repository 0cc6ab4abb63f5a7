package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealplanner/internal/history"
)

type generateRequest struct {
	Query          string `json:"query"`
	UserID         string `json:"user_id"`
	GenerationMode string `json:"generation_mode"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "meal-plan-generator",
		"endpoints": gin.H{
			"generate": "POST /api/generate-meal-plan",
			"history":  "GET /api/history?user_id=<id>",
			"stats":    "GET /api/stats",
			"health":   "GET /health",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}
	mode := req.GenerationMode
	if mode == "" {
		mode = s.cfg.GenerationMode
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	mealPlan, err := s.planner.GeneratePlan(ctx, req.Query, mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if s.history != nil {
		rec := history.PlanRequest{
			UserID:              userID,
			QueryText:           req.Query,
			Mode:                mode,
			PlanID:              mealPlan.ID,
			DurationDays:        mealPlan.DurationDays,
			TotalMeals:          mealPlan.Summary.TotalMeals,
			DietaryRestrictions: strings.Join(mealPlan.Interpreted.DietaryRestrictions, ", "),
			Preferences:         strings.Join(mealPlan.Interpreted.Preferences, ", "),
			SpecialRequirements: strings.Join(mealPlan.Interpreted.SpecialRequirements, ", "),
			Warning:             mealPlan.Warning,
		}
		if err := s.history.SavePlanRequest(c.Request.Context(), rec); err != nil {
			s.logger.Warn("failed to save plan request", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, mealPlan)
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "history is not enabled"})
		return
	}

	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	requests, err := s.history.RecentForUser(c.Request.Context(), userID, limit)
	if err != nil {
		s.logger.Error("failed to load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	out := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		out = append(out, gin.H{
			"id":                   r.ID,
			"query":                r.QueryText,
			"generation_mode":      r.Mode,
			"plan_id":              r.PlanID,
			"duration_days":        r.DurationDays,
			"total_meals":          r.TotalMeals,
			"dietary_restrictions": r.DietaryRestrictions,
			"preferences":          r.Preferences,
			"special_requirements": r.SpecialRequirements,
			"warning":              r.Warning,
			"created_at":           r.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "requests": out})
}

func (s *Server) handleStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "stats are not enabled"})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days <= 0 {
		days = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	stats, err := s.stats.StatsSince(c.Request.Context(), since)
	if err != nil {
		s.logger.Error("failed to aggregate stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate stats"})
		return
	}

	out := make([]gin.H, 0, len(stats))
	for _, st := range stats {
		out = append(out, gin.H{
			"strategy":       st.Strategy,
			"plans":          st.Plans,
			"avg_latency_ms": st.AvgLatencyMS,
			"total_tokens":   st.TotalTokens,
			"avg_meal_count": st.AvgMealCount,
		})
	}
	c.JSON(http.StatusOK, gin.H{"since": since, "strategies": out})
}
