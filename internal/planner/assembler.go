// Package planner assembles complete meal plans: it interprets the request
// text, drives the selected generation strategy across every slot, and
// guarantees that a structurally valid plan always comes back.
package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mealplanner/internal/llm"
	"mealplanner/internal/metrics"
	"mealplanner/internal/plan"
	"mealplanner/internal/query"
	"mealplanner/internal/strategy"
)

// Concurrent model calls per plan. More buys little: the model API throttles
// well before this saturates.
const maxConcurrentSlots = 4

// StrategySelector resolves a mode name to a generation strategy.
type StrategySelector interface {
	Select(mode string) strategy.Generator
}

// Recorder receives per-plan generation telemetry.
type Recorder interface {
	RecordGeneration(ctx context.Context, g metrics.Generation) error
}

// Assembler is the top of the generation pipeline.
type Assembler struct {
	interpreter *query.Interpreter
	selector    StrategySelector
	recorder    Recorder // nil disables telemetry
	logger      *zap.Logger
	now         func() time.Time
}

func NewAssembler(interpreter *query.Interpreter, selector StrategySelector, recorder Recorder, logger *zap.Logger) *Assembler {
	return &Assembler{
		interpreter: interpreter,
		selector:    selector,
		recorder:    recorder,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the time source. Used in tests.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// GeneratePlan turns free-form request text into a complete meal plan. The
// only error it returns is for empty input; everything downstream degrades
// into substitute content instead of failing, and a panic anywhere in the
// pipeline yields the static plan.
func (a *Assembler) GeneratePlan(ctx context.Context, text, mode string) (result *plan.MealPlan, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is required")
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("panic during plan generation", zap.Any("panic", r))
			result = plan.Fallback(a.now())
			err = nil
		}
	}()

	parsed := a.interpreter.Parse(ctx, text)
	corrected, warnings := a.interpreter.Validate(text, parsed)
	resolved, resolutionWarning := query.ResolveContradictions(corrected)
	if resolutionWarning != "" {
		warnings = append(warnings, resolutionWarning)
	}

	gen := a.selector.Select(mode)
	gen.Reset()

	ctx, tally := llm.WithUsageTally(ctx)
	start := time.Now()
	dayMeals := a.generateDays(ctx, gen, resolved)
	elapsed := time.Since(start)

	interpreted := plan.Interpreted{
		DietaryRestrictions: resolved.DietaryRestrictions,
		Preferences:         resolved.Preferences,
		SpecialRequirements: resolved.SpecialRequirements,
	}

	if allSubstitutes(dayMeals) {
		a.logger.Warn("every slot degraded to a substitute, serving the static plan",
			zap.String("strategy", gen.Name()))
		result = plan.Fallback(a.now())
		result.Interpreted = interpreted
		a.record(ctx, gen.Name(), tally, elapsed, result)
		return result, nil
	}

	today := a.now()
	days := make([]plan.DayPlan, len(dayMeals))
	for i, meals := range dayMeals {
		days[i] = plan.DayPlan{
			Day:   i + 1,
			Date:  today.AddDate(0, 0, i).Format("2006-01-02"),
			Meals: meals,
		}
	}

	result = &plan.MealPlan{
		ID:           uuid.NewString(),
		DurationDays: resolved.DurationDays,
		GeneratedAt:  today,
		Days:         days,
		Summary:      plan.Summarize(days, resolved.DietaryRestrictions, resolved.Preferences, resolved.SpecialRequirements),
		Warning:      strings.Join(warnings, " "),
		Interpreted:  interpreted,
	}

	a.logger.Info("plan generated",
		zap.String("strategy", gen.Name()),
		zap.Int("days", resolved.DurationDays),
		zap.Int("meals", result.Summary.TotalMeals),
		zap.Duration("elapsed", elapsed))
	a.record(ctx, gen.Name(), tally, elapsed, result)
	return result, nil
}

// generateDays drives the strategy at the widest granularity it supports:
// whole plan, then day by day, then slot by slot with bounded concurrency.
func (a *Assembler) generateDays(ctx context.Context, gen strategy.Generator, q query.ParsedQuery) [][]plan.Recipe {
	if pg, ok := gen.(strategy.PlanGenerator); ok {
		return pg.GenerateAllDays(ctx, q)
	}

	if dg, ok := gen.(strategy.DayGenerator); ok {
		days := make([][]plan.Recipe, q.DurationDays)
		for day := 1; day <= q.DurationDays; day++ {
			days[day-1] = dg.GenerateDayMeals(ctx, day, q)
		}
		return days
	}

	days := make([][]plan.Recipe, q.DurationDays)
	for i := range days {
		days[i] = make([]plan.Recipe, len(q.MealTypes))
	}

	// Strategies never return errors, so the group is purely a concurrency
	// limiter. Each goroutine writes to its own slot.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSlots)
	for day := 1; day <= q.DurationDays; day++ {
		for slot, mealType := range q.MealTypes {
			day, slot, mealType := day, slot, mealType
			g.Go(func() error {
				days[day-1][slot] = a.safeRecipe(gctx, gen, strategy.Request{
					Day:      day,
					MealType: mealType,
					Query:    q,
				})
				return nil
			})
		}
	}
	g.Wait()
	return days
}

// safeRecipe shields a worker goroutine: the deferred recover in GeneratePlan
// only covers the calling goroutine, and errgroup does not propagate panics.
// A panicking slot degrades to its substitute recipe like any other failure.
func (a *Assembler) safeRecipe(ctx context.Context, gen strategy.Generator, req strategy.Request) (r plan.Recipe) {
	defer func() {
		if p := recover(); p != nil {
			a.logger.Error("panic during slot generation",
				zap.Int("day", req.Day),
				zap.String("meal_type", req.MealType),
				zap.Any("panic", p))
			r = strategy.Substitute(req.MealType, req.Query)
		}
	}()
	return gen.GenerateRecipe(ctx, req)
}

func allSubstitutes(days [][]plan.Recipe) bool {
	for _, meals := range days {
		for _, meal := range meals {
			if meal.Source != plan.FallbackSource {
				return false
			}
		}
	}
	return true
}

func (a *Assembler) record(ctx context.Context, strategyName string, tally *llm.UsageTally, elapsed time.Duration, p *plan.MealPlan) {
	if a.recorder == nil {
		return
	}
	usage := tally.Total()
	err := a.recorder.RecordGeneration(ctx, metrics.Generation{
		Strategy:         strategyName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		LatencyMS:        elapsed.Milliseconds(),
		MealCount:        p.Summary.TotalMeals,
	})
	if err != nil {
		a.logger.Warn("failed to record generation metrics", zap.Error(err))
	}
}
