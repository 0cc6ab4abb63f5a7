package strategy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

func TestGenerateRecipeParsesResponse(t *testing.T) {
	textGen := &stubTextGenerator{response: validRecipeJSON}
	gen := NewPureGenerative(textGen, testLogger())

	recipe := gen.GenerateRecipe(context.Background(), Request{Day: 1, MealType: "dinner", Query: testQuery()})

	if recipe.Name != "Lemon Herb Chicken" {
		t.Errorf("Expected parsed recipe name, got %q", recipe.Name)
	}
	if recipe.Source != "AI Generated" {
		t.Errorf("Expected source 'AI Generated', got %q", recipe.Source)
	}
	if recipe.MealType != "dinner" {
		t.Errorf("Expected meal type 'dinner', got %q", recipe.MealType)
	}
	if len(textGen.calls) != 1 {
		t.Fatalf("Expected 1 model call, got %d", len(textGen.calls))
	}
	if textGen.calls[0].Temperature != 0.9 {
		t.Errorf("Expected temperature 0.9, got %v", textGen.calls[0].Temperature)
	}
}

func TestGenerateRecipeFallsBackOnModelError(t *testing.T) {
	textGen := &stubTextGenerator{err: errors.New("model unavailable")}
	gen := NewPureGenerative(textGen, testLogger())

	recipe := gen.GenerateRecipe(context.Background(), Request{Day: 1, MealType: "breakfast", Query: testQuery()})

	if recipe.Source != plan.FallbackSource {
		t.Errorf("Expected the substitute recipe, got source %q", recipe.Source)
	}
	if recipe.MealType != "breakfast" {
		t.Errorf("Expected meal type 'breakfast', got %q", recipe.MealType)
	}
}

func TestGenerateRecipeFallsBackOnMalformedJSON(t *testing.T) {
	textGen := &stubTextGenerator{response: "Sure! Here is a recipe for you."}
	gen := NewPureGenerative(textGen, testLogger())

	recipe := gen.GenerateRecipe(context.Background(), Request{Day: 2, MealType: "lunch", Query: testQuery()})

	if recipe.Source != plan.FallbackSource {
		t.Errorf("Expected the substitute recipe, got source %q", recipe.Source)
	}
}

func TestSubstituteSwapsDairyForVegan(t *testing.T) {
	q := testQuery()
	q.DietaryRestrictions = []string{"vegan"}

	recipe := fallbackRecipe("breakfast", q)

	joined := strings.ToLower(strings.Join(recipe.Ingredients, "; "))
	if !strings.Contains(joined, "oat milk") {
		t.Errorf("Expected milk swapped for oat milk, got %v", recipe.Ingredients)
	}
	if !strings.Contains(joined, "coconut yogurt") {
		t.Errorf("Expected yogurt swapped, got %v", recipe.Ingredients)
	}
}

func TestPromptCarriesRecentNames(t *testing.T) {
	textGen := &stubTextGenerator{response: validRecipeJSON}
	gen := NewPureGenerative(textGen, testLogger())
	ctx := context.Background()

	gen.GenerateRecipe(ctx, Request{Day: 1, MealType: "dinner", Query: testQuery()})
	gen.GenerateRecipe(ctx, Request{Day: 2, MealType: "dinner", Query: testQuery()})

	second := textGen.calls[1].Prompt
	if !strings.Contains(second, "Lemon Herb Chicken") {
		t.Errorf("Expected second prompt to name the first recipe, got:\n%s", second)
	}

	gen.Reset()
	gen.GenerateRecipe(ctx, Request{Day: 1, MealType: "dinner", Query: testQuery()})
	if strings.Contains(textGen.calls[2].Prompt, "Do NOT repeat") {
		t.Error("Expected reset to clear the do-not-repeat list")
	}
}

func TestPromptRecentNamesScopedToMealType(t *testing.T) {
	gen := NewPureGenerative(&stubTextGenerator{}, testLogger())

	gen.recent.Add("breakfast", "Overnight Oats")
	for i := 0; i < 10; i++ {
		gen.recent.Add("dinner", fmt.Sprintf("Dinner Dish %d", i))
	}

	prompt := gen.buildPrompt(Request{Day: 3, MealType: "breakfast", Query: testQuery()})
	if !strings.Contains(prompt, "Overnight Oats") {
		t.Errorf("Expected the prior breakfast name in the breakfast prompt, got:\n%s", prompt)
	}
	if strings.Contains(prompt, "Dinner Dish") {
		t.Errorf("Expected no dinner names in the breakfast prompt, got:\n%s", prompt)
	}
}

func TestVarietyHintIsDeterministic(t *testing.T) {
	req := Request{Day: 2, MealType: "lunch", Query: testQuery()}
	if varietyHint(req) != varietyHint(req) {
		t.Error("Expected the same slot to get the same hint")
	}
}

func TestVarietyHintUsesStyleWhenCuisinePreferred(t *testing.T) {
	q := testQuery()
	q.Preferences = []string{"mediterranean"}
	hint := varietyHint(Request{Day: 1, MealType: "dinner", Query: q})

	if strings.HasSuffix(hint, "cuisine") {
		t.Errorf("Expected a cooking-style hint, got %q", hint)
	}
}

func TestVarietyHintSkipsExcludedCuisines(t *testing.T) {
	q := query.ParsedQuery{DurationDays: 3, Exclusions: []string{"thai"}}
	for day := 1; day <= 7; day++ {
		for _, mealType := range []string{"breakfast", "lunch", "dinner", "snack"} {
			hint := varietyHint(Request{Day: day, MealType: mealType, Query: q})
			if strings.Contains(hint, "thai") {
				t.Fatalf("Expected excluded cuisine to never be hinted, got %q", hint)
			}
		}
	}
}
