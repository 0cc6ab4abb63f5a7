package plan

import (
	"fmt"
	"strconv"
)

const (
	costPerCalorieLow  = 0.008
	costPerCalorieHigh = 0.012
	budgetDiscount     = 0.7
)

// Summarize computes aggregate statistics for an assembled plan.
// Dietary compliance is the deduplicated union of restrictions and
// preferences, or "standard" when both are empty.
func Summarize(days []DayPlan, restrictions, preferences, special []string) Summary {
	totalMeals := 0
	totalCalories := 0
	prepTotal := 0

	for _, day := range days {
		totalMeals += len(day.Meals)
		for _, meal := range day.Meals {
			totalCalories += meal.Nutrition.Calories
			mins, ok := ParsePrepMinutes(meal.PreparationTime)
			if !ok {
				mins = 30
			}
			prepTotal += mins
		}
	}

	avgPrep := "25 mins"
	if totalMeals > 0 {
		avgPrep = strconv.Itoa(prepTotal/totalMeals) + " mins"
	}

	compliance := dedupUnion(restrictions, preferences)
	if len(compliance) == 0 {
		compliance = []string{"standard"}
	}

	costLow := float64(totalCalories) * costPerCalorieLow
	costHigh := float64(totalCalories) * costPerCalorieHigh
	for _, req := range special {
		if req == "budget-friendly" {
			costLow *= budgetDiscount
			costHigh *= budgetDiscount
			break
		}
	}

	return Summary{
		TotalMeals:        totalMeals,
		DietaryCompliance: compliance,
		EstimatedCost:     fmt.Sprintf("$%d-%d", int(costLow), int(costHigh)),
		AvgPrepTime:       avgPrep,
	}
}

func dedupUnion(lists ...[]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, list := range lists {
		for _, item := range list {
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}
