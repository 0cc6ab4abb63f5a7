package plan

import (
	"reflect"
	"testing"
	"time"
)

func testDays() []DayPlan {
	return []DayPlan{
		{
			Day:  1,
			Date: "2026-01-05",
			Meals: []Recipe{
				{Name: "A", Nutrition: Nutrition{Calories: 300}, PreparationTime: "20 mins"},
				{Name: "B", Nutrition: Nutrition{Calories: 400}, PreparationTime: "30 mins"},
			},
		},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(testDays(), []string{"vegetarian"}, []string{"high-protein"}, nil)

	if summary.TotalMeals != 2 {
		t.Errorf("Expected 2 total meals, got %d", summary.TotalMeals)
	}
	if !reflect.DeepEqual(summary.DietaryCompliance, []string{"vegetarian", "high-protein"}) {
		t.Errorf("Unexpected compliance: %v", summary.DietaryCompliance)
	}
	if summary.AvgPrepTime != "25 mins" {
		t.Errorf("Expected avg prep '25 mins', got %q", summary.AvgPrepTime)
	}
	// 700 calories: $5.6 - $8.4, truncated to integers.
	if summary.EstimatedCost != "$5-8" {
		t.Errorf("Expected cost '$5-8', got %q", summary.EstimatedCost)
	}
}

func TestSummarizeBudgetDiscount(t *testing.T) {
	base := Summarize(testDays(), nil, nil, nil)
	discounted := Summarize(testDays(), nil, nil, []string{"budget-friendly"})

	if base.EstimatedCost == discounted.EstimatedCost {
		t.Errorf("Expected budget-friendly to discount the cost, both were %q", base.EstimatedCost)
	}
	if discounted.EstimatedCost != "$3-5" {
		t.Errorf("Expected discounted cost '$3-5', got %q", discounted.EstimatedCost)
	}
}

func TestSummarizeStandardCompliance(t *testing.T) {
	summary := Summarize(testDays(), nil, nil, nil)

	if !reflect.DeepEqual(summary.DietaryCompliance, []string{"standard"}) {
		t.Errorf("Expected ['standard'], got %v", summary.DietaryCompliance)
	}
}

func TestSummarizeUnparseablePrepTime(t *testing.T) {
	days := []DayPlan{{
		Day: 1,
		Meals: []Recipe{
			{Nutrition: Nutrition{Calories: 100}, PreparationTime: "a little while"},
			{Nutrition: Nutrition{Calories: 100}, PreparationTime: "10 mins"},
		},
	}}

	summary := Summarize(days, nil, nil, nil)

	// Unparseable entries default to 30: (30+10)/2 = 20.
	if summary.AvgPrepTime != "20 mins" {
		t.Errorf("Expected avg prep '20 mins', got %q", summary.AvgPrepTime)
	}
}

func TestParsePrepMinutes(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"25 mins", 25, true},
		{"about 15 minutes", 15, true},
		{"12.5 mins", 12, true},
		{"n/a", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParsePrepMinutes(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParsePrepMinutes(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestNormalizePrepTime(t *testing.T) {
	if got := NormalizePrepTime("15.0 minutes"); got != "15 mins" {
		t.Errorf("Expected '15 mins', got %q", got)
	}
	if got := NormalizePrepTime("unknown"); got != "30 mins" {
		t.Errorf("Expected fallback '30 mins', got %q", got)
	}
}

func TestFallbackPlanShape(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	fallback := Fallback(now)

	if fallback.DurationDays != 3 || len(fallback.Days) != 3 {
		t.Fatalf("Expected a 3-day plan, got %d days", len(fallback.Days))
	}
	for i, day := range fallback.Days {
		if len(day.Meals) != 3 {
			t.Errorf("Day %d: expected 3 meals, got %d", day.Day, len(day.Meals))
		}
		wantDate := now.AddDate(0, 0, i).Format("2006-01-02")
		if day.Date != wantDate {
			t.Errorf("Day %d: expected date %s, got %s", day.Day, wantDate, day.Date)
		}
		for j, mealType := range []string{"breakfast", "lunch", "dinner"} {
			if day.Meals[j].MealType != mealType {
				t.Errorf("Day %d meal %d: expected %s, got %s", day.Day, j, mealType, day.Meals[j].MealType)
			}
		}
	}
	if fallback.Warning != FallbackWarning {
		t.Errorf("Expected the fixed fallback warning, got %q", fallback.Warning)
	}
	if fallback.ID == "" {
		t.Error("Expected a plan id")
	}
}

func TestFlexText(t *testing.T) {
	var f FlexText
	if err := f.UnmarshalJSON([]byte(`"step one"`)); err != nil || f != "step one" {
		t.Errorf("Expected 'step one', got %q (err %v)", f, err)
	}
	if err := f.UnmarshalJSON([]byte(`["step one", "step two"]`)); err != nil || f != "step one\nstep two" {
		t.Errorf("Expected joined steps, got %q (err %v)", f, err)
	}
}
