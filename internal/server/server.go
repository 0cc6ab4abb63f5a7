// Package server exposes the plan generation pipeline over HTTP.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mealplanner/internal/config"
	"mealplanner/internal/history"
	"mealplanner/internal/metrics"
	"mealplanner/internal/plan"
)

// PlanService generates a complete meal plan from free-form text.
type PlanService interface {
	GeneratePlan(ctx context.Context, text, mode string) (*plan.MealPlan, error)
}

// HistoryStore persists and lists plan requests. Nil disables history.
type HistoryStore interface {
	SavePlanRequest(ctx context.Context, r history.PlanRequest) error
	RecentForUser(ctx context.Context, userID string, limit int) ([]history.PlanRequest, error)
}

// StatsStore aggregates generation telemetry. Nil disables the stats route.
type StatsStore interface {
	StatsSince(ctx context.Context, since time.Time) ([]metrics.StrategyStats, error)
}

// Server wires the HTTP routes to the planning pipeline.
type Server struct {
	engine  *gin.Engine
	planner PlanService
	history HistoryStore
	stats   StatsStore
	cfg     *config.Config
	logger  *zap.Logger
}

func New(cfg *config.Config, planner PlanService, historyStore HistoryStore, stats StatsStore, logger *zap.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))

	s := &Server{
		engine:  engine,
		planner: planner,
		history: historyStore,
		stats:   stats,
		cfg:     cfg,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	if s.cfg.RateLimitEnabled {
		limiter := NewRateLimiter(s.cfg.RateLimitPerMinute, s.cfg.RateLimitSystemMaxRPS)
		api.Use(limiter.Middleware())
	}
	api.POST("/generate-meal-plan", s.handleGenerate)
	api.GET("/history", s.handleHistory)
	api.GET("/stats", s.handleStats)
}

// Handler exposes the router, for tests and for the HTTP server in main.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}
