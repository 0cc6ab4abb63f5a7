package strategy

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

const batchResponseJSON = `{
  "days": [
    {"day": 1, "meals": [
      {"recipe_name": "Avocado Toast", "ingredients": ["bread", "avocado"], "nutritional_info": {"calories": 300}, "preparation_time": "5 mins", "instructions": "Toast and top."},
      {"recipe_name": "Lentil Soup", "ingredients": ["lentils"], "nutritional_info": {"calories": 400}, "preparation_time": "30 mins", "instructions": "Simmer."}
    ]},
    {"day": 2, "meals": [
      {"recipe_name": "Berry Smoothie", "ingredients": ["berries"], "nutritional_info": {"calories": 250}, "preparation_time": "5 mins", "instructions": "Blend."},
      {"recipe_name": "Veggie Wrap", "ingredients": ["tortilla"], "nutritional_info": {"calories": 380}, "preparation_time": "10 mins", "instructions": "Wrap."}
    ]}
  ]
}`

func batchQuery() query.ParsedQuery {
	return query.ParsedQuery{
		DurationDays: 2,
		MealsPerDay:  2,
		MealTypes:    []string{"breakfast", "lunch"},
	}
}

func TestGenerateAllDaysParsesBatch(t *testing.T) {
	textGen := &stubTextGenerator{response: batchResponseJSON}
	fast := NewFastBatch(textGen, testLogger())

	days := fast.GenerateAllDays(context.Background(), batchQuery())

	if len(days) != 2 {
		t.Fatalf("Expected 2 days, got %d", len(days))
	}
	if len(textGen.calls) != 1 {
		t.Fatalf("Expected a single model call, got %d", len(textGen.calls))
	}
	if days[0][0].Name != "Avocado Toast" || days[1][1].Name != "Veggie Wrap" {
		t.Errorf("Unexpected recipes: %v / %v", days[0][0].Name, days[1][1].Name)
	}
	if days[0][1].MealType != "lunch" {
		t.Errorf("Expected slot meal type 'lunch', got %q", days[0][1].MealType)
	}
}

func TestGenerateAllDaysPadsMissingSlots(t *testing.T) {
	partial := `{"days": [{"day": 1, "meals": [{"recipe_name": "Avocado Toast", "preparation_time": "5 mins"}]}]}`
	fast := NewFastBatch(&stubTextGenerator{response: partial}, testLogger())

	days := fast.GenerateAllDays(context.Background(), batchQuery())

	if len(days) != 2 || len(days[0]) != 2 || len(days[1]) != 2 {
		t.Fatalf("Expected a full 2x2 grid, got %v", days)
	}
	if days[0][0].Name != "Avocado Toast" {
		t.Errorf("Expected the returned recipe kept, got %q", days[0][0].Name)
	}
	for _, slot := range []plan.Recipe{days[0][1], days[1][0], days[1][1]} {
		if slot.Source != plan.FallbackSource {
			t.Errorf("Expected missing slot padded from the fixed table, got source %q", slot.Source)
		}
	}
}

func TestGenerateAllDaysFailureFillsEverySlot(t *testing.T) {
	fast := NewFastBatch(&stubTextGenerator{err: errors.New("model unavailable")}, testLogger())

	days := fast.GenerateAllDays(context.Background(), batchQuery())

	for _, day := range days {
		for _, meal := range day {
			if meal.Source != plan.FallbackSource {
				t.Errorf("Expected substitute recipes everywhere, got source %q", meal.Source)
			}
		}
	}
}

func TestFastBatchSingleRecipeMakesNoModelCall(t *testing.T) {
	textGen := &stubTextGenerator{response: batchResponseJSON}
	fast := NewFastBatch(textGen, testLogger())

	recipe := fast.GenerateRecipe(context.Background(), Request{Day: 1, MealType: "lunch", Query: batchQuery()})

	if len(textGen.calls) != 0 {
		t.Errorf("Expected no model calls for a lone slot, got %d", len(textGen.calls))
	}
	if recipe.Source != plan.FallbackSource {
		t.Errorf("Expected the table recipe, got source %q", recipe.Source)
	}
}

func TestBatchTokenBudgetScalesWithPlanSize(t *testing.T) {
	textGen := &stubTextGenerator{response: batchResponseJSON}
	fast := NewFastBatch(textGen, testLogger())
	ctx := context.Background()

	fast.GenerateAllDays(ctx, batchQuery()) // 4 slots

	big := query.ParsedQuery{
		DurationDays: 7,
		MealsPerDay:  4,
		MealTypes:    []string{"breakfast", "lunch", "dinner", "snack"},
	}
	fast.GenerateAllDays(ctx, big) // 28 slots

	if textGen.calls[0].MaxOutputTokens != 3000 {
		t.Errorf("Expected 3000 max tokens for a small plan, got %d", textGen.calls[0].MaxOutputTokens)
	}
	if textGen.calls[1].MaxOutputTokens != 2000 {
		t.Errorf("Expected 2000 max tokens for a large plan, got %d", textGen.calls[1].MaxOutputTokens)
	}
}

func TestBatchPromptDetailTiers(t *testing.T) {
	fast := NewFastBatch(&stubTextGenerator{}, testLogger())

	small := fast.buildPrompt(batchQuery(), 4)
	if !strings.Contains(small, "full detail") {
		t.Errorf("Expected full detail for 4 slots, got:\n%s", small)
	}
	medium := fast.buildPrompt(batchQuery(), 9)
	if !strings.Contains(medium, "medium detail") {
		t.Errorf("Expected medium detail for 9 slots, got:\n%s", medium)
	}
	large := fast.buildPrompt(batchQuery(), 21)
	if !strings.Contains(large, "minimal detail") {
		t.Errorf("Expected minimal detail for 21 slots, got:\n%s", large)
	}
}
