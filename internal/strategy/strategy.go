// Package strategy implements the interchangeable meal generation strategies
// behind plan assembly. Every strategy produces a complete recipe for every
// slot it is asked about; failures degrade to substitute recipes instead of
// propagating errors.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"mealplanner/internal/llm"
	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

// Mode identifiers accepted by the selector.
const (
	ModeGenerative = "llm_only"
	ModeRetrieval  = "rag"
	ModeHybrid     = "hybrid"
	ModeFastBatch  = "fast_llm"
)

// Request describes a single meal slot to fill.
type Request struct {
	Day      int
	MealType string
	Query    query.ParsedQuery
}

// Generator fills one meal slot per call. Implementations never return an
// error: a slot that cannot be generated is filled with a substitute recipe
// tagged with plan.FallbackSource.
type Generator interface {
	Name() string
	GenerateRecipe(ctx context.Context, req Request) plan.Recipe

	// Reset clears per-plan variety state. The assembler calls it once at
	// the start of each plan.
	Reset()
}

// DayGenerator is implemented by strategies that produce a whole day in one
// pass and want to be driven day-by-day rather than slot-by-slot.
type DayGenerator interface {
	GenerateDayMeals(ctx context.Context, day int, q query.ParsedQuery) []plan.Recipe
}

// PlanGenerator is implemented by strategies that produce the entire plan in
// a single pass. The result is indexed [day][meal].
type PlanGenerator interface {
	GenerateAllDays(ctx context.Context, q query.ParsedQuery) [][]plan.Recipe
}

var mealTypeRank = map[string]int{
	"breakfast": 0,
	"lunch":     1,
	"dinner":    2,
	"snack":     3,
}

func rankOf(mealType string) int {
	if r, ok := mealTypeRank[mealType]; ok {
		return r
	}
	return len(mealTypeRank)
}

// varietySeed derives a stable per-slot seed so variety hints differ across
// slots but repeat across runs of the same request.
func varietySeed(day int, mealType string) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%d|%s", day, mealType)
	return h.Sum32()
}

// recipeWire is the JSON shape requested from the model. Instructions accept
// either a string or a step list.
type recipeWire struct {
	Name            string         `json:"recipe_name"`
	Description     string         `json:"description"`
	Ingredients     []string       `json:"ingredients"`
	Nutrition       plan.Nutrition `json:"nutritional_info"`
	PreparationTime string         `json:"preparation_time"`
	Instructions    plan.FlexText  `json:"instructions"`
	BasedOn         string         `json:"based_on,omitempty"`
}

func (w recipeWire) toRecipe(mealType, source string) plan.Recipe {
	return plan.Recipe{
		Name:            w.Name,
		Description:     w.Description,
		Ingredients:     w.Ingredients,
		Nutrition:       w.Nutrition,
		PreparationTime: plan.NormalizePrepTime(w.PreparationTime),
		Instructions:    string(w.Instructions),
		Source:          source,
		MealType:        mealType,
	}
}

// decodeRecipe parses a model response into a recipe. An empty recipe name
// means the response is unusable.
func decodeRecipe(content, mealType, source string) (plan.Recipe, recipeWire, error) {
	var wire recipeWire
	if err := json.Unmarshal([]byte(llm.StripCodeFence(content)), &wire); err != nil {
		return plan.Recipe{}, wire, fmt.Errorf("malformed recipe JSON: %w", err)
	}
	if strings.TrimSpace(wire.Name) == "" {
		return plan.Recipe{}, wire, fmt.Errorf("recipe response missing recipe_name")
	}
	return wire.toRecipe(mealType, source), wire, nil
}

const recipeSchema = `{
  "recipe_name": "<name>",
  "description": "<one sentence>",
  "ingredients": ["<quantity and ingredient>", ...],
  "nutritional_info": {"calories": <int>, "protein": <g>, "carbs": <g>, "fat": <g>},
  "preparation_time": "<N mins>",
  "instructions": "<numbered steps in one string>"
}`

// requirementLines renders the parsed constraints as prompt bullet points.
func requirementLines(q query.ParsedQuery) string {
	var b strings.Builder
	if len(q.DietaryRestrictions) > 0 {
		fmt.Fprintf(&b, "- Dietary restrictions (mandatory): %s\n", strings.Join(q.DietaryRestrictions, ", "))
	}
	if len(q.Preferences) > 0 {
		fmt.Fprintf(&b, "- Preferences: %s\n", strings.Join(q.Preferences, ", "))
	}
	if len(q.Exclusions) > 0 {
		fmt.Fprintf(&b, "- Never use these ingredients: %s\n", strings.Join(q.Exclusions, ", "))
	}
	if q.PrepTimeMax > 0 {
		fmt.Fprintf(&b, "- Preparation time at most %d minutes\n", q.PrepTimeMax)
	}
	if len(q.SpecialRequirements) > 0 {
		fmt.Fprintf(&b, "- Special requirements: %s\n", strings.Join(q.SpecialRequirements, ", "))
	}
	if b.Len() == 0 {
		return "- No special constraints\n"
	}
	return b.String()
}
