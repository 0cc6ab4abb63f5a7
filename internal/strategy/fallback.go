package strategy

import (
	"strings"

	"mealplanner/internal/plan"
	"mealplanner/internal/query"
)

// fallbackRecipe returns the substitute meal for a slot whose generation
// failed. It starts from the fixed table and swaps dairy ingredients when the
// request is vegan or dairy-free, so the substitute does not violate the one
// constraint most likely to matter.
func fallbackRecipe(mealType string, q query.ParsedQuery) plan.Recipe {
	r := plan.StandardRecipe(mealType)

	if needsDairySwap(q.DietaryRestrictions) {
		swapped := make([]string, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			swapped[i] = swapDairy(ing)
		}
		r.Ingredients = swapped
		r.Instructions = swapDairy(r.Instructions)
	}
	r.Source = plan.FallbackSource
	return r
}

// Substitute exposes the slot-level fallback to the assembly layer, which
// needs it when a strategy call blows up instead of degrading on its own.
func Substitute(mealType string, q query.ParsedQuery) plan.Recipe {
	return fallbackRecipe(mealType, q)
}

func needsDairySwap(restrictions []string) bool {
	for _, r := range restrictions {
		if r == "vegan" || r == "dairy-free" {
			return true
		}
	}
	return false
}

var dairySwaps = [][2]string{
	{"greek yogurt", "coconut yogurt"},
	{"yogurt", "coconut yogurt"},
	{"milk", "oat milk"},
	{"honey", "maple syrup"},
}

func swapDairy(s string) string {
	lower := strings.ToLower(s)
	for _, swap := range dairySwaps {
		if idx := strings.Index(lower, swap[0]); idx >= 0 {
			return s[:idx] + swap[1] + s[idx+len(swap[0]):]
		}
	}
	return s
}
