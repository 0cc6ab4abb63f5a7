package strategy

import (
	"context"
	"fmt"

	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

// Hybrid routes a fixed share of slots to retrieval-grounded generation and
// the rest to pure generation. Routing is a deterministic function of the
// slot position, so the same request always splits the same way.
type Hybrid struct {
	grounded   *RetrievalAugmented
	generative *PureGenerative
	ratio      float64
}

// NewHybrid creates a hybrid strategy sending roughly ratio of slots to the
// grounded path. The ratio is clamped to [0, 1].
func NewHybrid(grounded *RetrievalAugmented, generative *PureGenerative, ratio float64) *Hybrid {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &Hybrid{grounded: grounded, generative: generative, ratio: ratio}
}

func (h *Hybrid) Name() string {
	return fmt.Sprintf("hybrid_%drag", int(h.ratio*100+0.5))
}

func (h *Hybrid) Reset() {
	h.grounded.Reset()
	h.generative.Reset()
}

// routesToRetrieval maps each slot to a bucket in [0, 10); low buckets go to
// retrieval. Note the day term is a multiple of the modulus, so in practice
// routing depends on the meal-type rank alone.
func (h *Hybrid) routesToRetrieval(day int, mealType string) bool {
	bucket := (day*10 + rankOf(mealType)) % 10
	return float64(bucket) < h.ratio*10
}

func (h *Hybrid) GenerateRecipe(ctx context.Context, req Request) plan.Recipe {
	if h.routesToRetrieval(req.Day, req.MealType) {
		return h.grounded.GenerateRecipe(ctx, req)
	}
	return h.generative.GenerateRecipe(ctx, req)
}

// GenerateDayMeals fills a whole day in slot order. Driving the hybrid
// day-by-day keeps both sub-strategies' variety state coherent within a day.
func (h *Hybrid) GenerateDayMeals(ctx context.Context, day int, q query.ParsedQuery) []plan.Recipe {
	meals := make([]plan.Recipe, 0, len(q.MealTypes))
	for _, mealType := range q.MealTypes {
		meals = append(meals, h.GenerateRecipe(ctx, Request{Day: day, MealType: mealType, Query: q}))
	}
	return meals
}
