package query

import (
	"strings"
)

// Canonical meal types in serving order.
var canonicalMealTypes = []string{"breakfast", "lunch", "dinner", "snack"}

const (
	defaultDurationDays = 3
	minDurationDays     = 1
	maxDurationDays     = 7
	minMealsPerDay      = 1
	maxMealsPerDay      = 4
)

// ParsedQuery holds the structured constraints extracted from a free-text
// meal-plan request. List fields are lowercased and deduplicated.
type ParsedQuery struct {
	DurationDays        int      `json:"duration_days"`
	MealsPerDay         int      `json:"meals_per_day"`
	MealTypes           []string `json:"meal_types"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Preferences         []string `json:"preferences"`
	SpecialRequirements []string `json:"special_requirements"`
	Contradictions      []string `json:"contradictions"`
	PrepTimeMax         int      `json:"prep_time_max,omitempty"`
	Exclusions          []string `json:"exclusions,omitempty"`
}

// Clone returns a deep copy, so validators can work on a scratch value.
func (q ParsedQuery) Clone() ParsedQuery {
	out := q
	out.MealTypes = append([]string(nil), q.MealTypes...)
	out.DietaryRestrictions = append([]string(nil), q.DietaryRestrictions...)
	out.Preferences = append([]string(nil), q.Preferences...)
	out.SpecialRequirements = append([]string(nil), q.SpecialRequirements...)
	out.Contradictions = append([]string(nil), q.Contradictions...)
	out.Exclusions = append([]string(nil), q.Exclusions...)
	return out
}

// normalizeList lowercases, trims, and deduplicates while preserving order.
func normalizeList(items []string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func appendUnique(items []string, value string) []string {
	if contains(items, value) {
		return items
	}
	return append(items, value)
}

func remove(items []string, target string) []string {
	out := items[:0]
	for _, item := range items {
		if item != target {
			out = append(out, item)
		}
	}
	return out
}

func clampDuration(days int) int {
	if days < minDurationDays {
		return minDurationDays
	}
	if days > maxDurationDays {
		return maxDurationDays
	}
	return days
}
