package plan

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Nutrition holds the macro values for one meal.
type Nutrition struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Recipe is a single generated meal. Once emitted into a plan it is never
// mutated.
type Recipe struct {
	Name            string    `json:"recipe_name"`
	Description     string    `json:"description"`
	Ingredients     []string  `json:"ingredients"`
	Nutrition       Nutrition `json:"nutritional_info"`
	PreparationTime string    `json:"preparation_time"`
	Instructions    string    `json:"instructions"`
	Source          string    `json:"source"`
	MealType        string    `json:"meal_type"`
}

// DayPlan is the ordered set of meals for one calendar day.
type DayPlan struct {
	Day   int      `json:"day"`
	Date  string   `json:"date"`
	Meals []Recipe `json:"meals"`
}

// Summary holds aggregate statistics for a plan.
type Summary struct {
	TotalMeals        int      `json:"total_meals"`
	DietaryCompliance []string `json:"dietary_compliance"`
	EstimatedCost     string   `json:"estimated_cost"`
	AvgPrepTime       string   `json:"avg_prep_time"`
}

// Interpreted is the parsed view of the request text, carried alongside the
// plan so the caller can persist it. It is not part of the response body.
type Interpreted struct {
	DietaryRestrictions []string
	Preferences         []string
	SpecialRequirements []string
}

// MealPlan is the sole externally visible artifact of a generate call.
type MealPlan struct {
	ID           string      `json:"meal_plan_id"`
	DurationDays int         `json:"duration_days"`
	GeneratedAt  time.Time   `json:"generated_at"`
	Days         []DayPlan   `json:"meal_plan"`
	Summary      Summary     `json:"summary"`
	Warning      string      `json:"warning,omitempty"`
	Interpreted  Interpreted `json:"-"`
}

var leadingNumber = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// ParsePrepMinutes extracts the leading number of minutes from a
// preparation-time string like "25 mins" or "about 1.5 hours is 90 mins".
func ParsePrepMinutes(s string) (int, bool) {
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// NormalizePrepTime rewrites a preparation-time string to "N mins" with an
// integer minute count. Unparseable values fall back to 30 minutes.
func NormalizePrepTime(s string) string {
	mins, ok := ParsePrepMinutes(s)
	if !ok {
		mins = 30
	}
	return strconv.Itoa(mins) + " mins"
}

// FlexText unmarshals either a JSON string or an array of strings joined by
// newlines. Models asked for a single instruction block sometimes return a
// step list instead.
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = FlexText(single)
		return nil
	}
	var steps []string
	if err := json.Unmarshal(data, &steps); err != nil {
		return err
	}
	*f = FlexText(strings.Join(steps, "\n"))
	return nil
}
