package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealplanner/internal/llm"
	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

const fastSystemPrompt = `You are a professional meal planner. Create a complete meal plan in ONE response. Dietary restrictions are mandatory for every meal. Keep each recipe distinct. Return valid JSON only.`

// FastBatch generates the entire plan in a single model call, trading recipe
// detail for latency. Larger plans get terser recipes so the response fits
// the output token budget.
type FastBatch struct {
	textGen llm.TextGenerator
	logger  *zap.Logger
}

func NewFastBatch(textGen llm.TextGenerator, logger *zap.Logger) *FastBatch {
	return &FastBatch{textGen: textGen, logger: logger}
}

func (f *FastBatch) Name() string { return ModeFastBatch }

func (f *FastBatch) Reset() {}

type fastPlanWire struct {
	Days []struct {
		Day   int          `json:"day"`
		Meals []recipeWire `json:"meals"`
	} `json:"days"`
}

// GenerateAllDays produces every slot in one call. Slots the model left out
// are padded from the fixed table so the result is always complete.
func (f *FastBatch) GenerateAllDays(ctx context.Context, q query.ParsedQuery) [][]plan.Recipe {
	total := q.DurationDays * q.MealsPerDay

	maxTokens := int32(2000)
	if total <= 15 {
		maxTokens = 3000
	}

	resp, err := f.textGen.GenerateContent(ctx, llm.ContentRequest{
		System:          fastSystemPrompt,
		Prompt:          f.buildPrompt(q, total),
		Temperature:     0.7,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		f.logger.Warn("batch generation failed, serving substitutes", zap.Error(err))
		return f.padAll(nil, q)
	}

	var wire fastPlanWire
	if err := json.Unmarshal([]byte(llm.StripCodeFence(resp.Content)), &wire); err != nil {
		f.logger.Warn("batch response unusable, serving substitutes", zap.Error(err))
		return f.padAll(nil, q)
	}

	byDay := make(map[int][]recipeWire, len(wire.Days))
	for _, d := range wire.Days {
		byDay[d.Day] = d.Meals
	}
	return f.padAll(byDay, q)
}

// padAll lays the model output onto the requested grid, filling any hole
// with the table recipe for that meal type.
func (f *FastBatch) padAll(byDay map[int][]recipeWire, q query.ParsedQuery) [][]plan.Recipe {
	days := make([][]plan.Recipe, q.DurationDays)
	for day := 1; day <= q.DurationDays; day++ {
		meals := make([]plan.Recipe, 0, len(q.MealTypes))
		got := byDay[day]
		for slot, mealType := range q.MealTypes {
			if slot < len(got) && strings.TrimSpace(got[slot].Name) != "" {
				meals = append(meals, got[slot].toRecipe(mealType, "AI Generated"))
				continue
			}
			meals = append(meals, fallbackRecipe(mealType, q))
		}
		days[day-1] = meals
	}
	return days
}

// GenerateRecipe exists for interface compliance only; the batch path is the
// sole entry point for this strategy, so a lone slot gets the table recipe.
func (f *FastBatch) GenerateRecipe(_ context.Context, req Request) plan.Recipe {
	return fallbackRecipe(req.MealType, req.Query)
}

func (f *FastBatch) buildPrompt(q query.ParsedQuery, total int) string {
	detail := "full detail: 5-8 ingredients with quantities and numbered instructions"
	switch {
	case total > 12:
		detail = "minimal detail: at most 4 ingredients, instructions in one sentence"
	case total > 6:
		detail = "medium detail: at most 6 ingredients, at most 3 instruction steps"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-day meal plan with %d meals per day (%s), %d recipes total.\n\n",
		q.DurationDays, q.MealsPerDay, strings.Join(q.MealTypes, ", "), total)
	fmt.Fprintf(&b, "Requirements:\n%s", requirementLines(q))
	fmt.Fprintf(&b, "- Recipe detail level: %s\n", detail)
	fmt.Fprintf(&b, "\nReturn JSON in this shape:\n{\"days\": [{\"day\": 1, \"meals\": [%s, ...]}, ...]}\n", recipeSchema)
	fmt.Fprintf(&b, "Meals within each day must follow the order: %s.", strings.Join(q.MealTypes, ", "))
	return b.String()
}
