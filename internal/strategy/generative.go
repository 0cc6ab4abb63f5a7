package strategy

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealplanner/internal/llm"
	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

const generativeSystemPrompt = `You are a professional chef and meal planner. Create a single original recipe that satisfies every stated constraint. Dietary restrictions are mandatory. Return valid JSON only.`

// Cuisine hints rotated across slots when the request names no cuisine of
// its own, and cooking-style hints used when it does.
var (
	varietyCuisines = []string{
		"italian", "mexican", "thai", "japanese", "indian",
		"mediterranean", "korean", "moroccan", "greek", "vietnamese",
	}
	varietyStyles = []string{
		"grilled", "roasted", "one-pot", "stir-fried", "baked", "slow-simmered",
	}
)

// PureGenerative creates every recipe from scratch with the generative
// model. Variety comes from a per-slot hint and a do-not-repeat list of
// recently generated names.
type PureGenerative struct {
	textGen llm.TextGenerator
	recent  *nameTracker
	logger  *zap.Logger
}

func NewPureGenerative(textGen llm.TextGenerator, logger *zap.Logger) *PureGenerative {
	return &PureGenerative{
		textGen: textGen,
		recent:  newNameTracker(),
		logger:  logger,
	}
}

func (g *PureGenerative) Name() string { return ModeGenerative }

func (g *PureGenerative) Reset() { g.recent.Reset() }

func (g *PureGenerative) GenerateRecipe(ctx context.Context, req Request) plan.Recipe {
	prompt := g.buildPrompt(req)

	resp, err := g.textGen.GenerateContent(ctx, llm.ContentRequest{
		System:      generativeSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.9,
	})
	if err != nil {
		g.logger.Warn("recipe generation failed, serving substitute",
			zap.Int("day", req.Day),
			zap.String("meal_type", req.MealType),
			zap.Error(err))
		return fallbackRecipe(req.MealType, req.Query)
	}

	recipe, _, err := decodeRecipe(resp.Content, req.MealType, "AI Generated")
	if err != nil {
		g.logger.Warn("recipe response unusable, serving substitute",
			zap.Int("day", req.Day),
			zap.String("meal_type", req.MealType),
			zap.Error(err))
		return fallbackRecipe(req.MealType, req.Query)
	}

	g.recent.Add(req.MealType, recipe.Name)
	return recipe
}

func (g *PureGenerative) buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s recipe for day %d of a meal plan.\n\nRequirements:\n%s",
		req.MealType, req.Day, requirementLines(req.Query))
	fmt.Fprintf(&b, "- Style hint: %s\n", varietyHint(req))

	if recent := g.recent.Recent(req.MealType, 10); len(recent) > 0 {
		fmt.Fprintf(&b, "\nDo NOT repeat any of these recipes: %s\n", strings.Join(recent, "; "))
	}

	fmt.Fprintf(&b, "\nReturn JSON exactly in this shape:\n%s", recipeSchema)
	return b.String()
}

// varietyHint picks a deterministic per-slot hint. Requests that already name
// a cuisine get a cooking-style hint instead, and cuisine hints never collide
// with an excluded term.
func varietyHint(req Request) string {
	seed := varietySeed(req.Day, req.MealType)

	if hasCuisinePreference(req.Query) {
		return varietyStyles[int(seed)%len(varietyStyles)]
	}

	allowed := make([]string, 0, len(varietyCuisines))
	for _, cuisine := range varietyCuisines {
		if !excluded(cuisine, req.Query.Exclusions) {
			allowed = append(allowed, cuisine)
		}
	}
	if len(allowed) == 0 {
		return varietyStyles[int(seed)%len(varietyStyles)]
	}
	return allowed[int(seed)%len(allowed)] + " cuisine"
}

func hasCuisinePreference(q query.ParsedQuery) bool {
	for _, pref := range q.Preferences {
		for _, cuisine := range varietyCuisines {
			if pref == cuisine {
				return true
			}
		}
	}
	return false
}

func excluded(term string, exclusions []string) bool {
	for _, ex := range exclusions {
		if strings.Contains(term, ex) || strings.Contains(ex, term) {
			return true
		}
	}
	return false
}
