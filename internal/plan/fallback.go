package plan

import (
	"time"

	"github.com/google/uuid"
)

// FallbackWarning is attached to the static plan served when generation
// fails end to end.
const FallbackWarning = "We could not generate a personalized plan for this request, so a standard 3-day plan is provided instead. Please try again."

// FallbackSource tags recipes that came from the fixed table rather than
// generation or retrieval.
const FallbackSource = "Standard Plan"

const fallbackDays = 3

// fallbackTable is the fixed recipe table behind the static plan. It
// involves no external calls and cannot fail.
var fallbackTable = map[string]Recipe{
	"breakfast": {
		Name:            "Overnight Oats with Berries",
		Description:     "A make-ahead breakfast of rolled oats soaked with yogurt and berries.",
		Ingredients:     []string{"1 cup rolled oats", "1 cup milk", "1/2 cup greek yogurt", "1/2 cup mixed berries", "1 tbsp honey"},
		Nutrition:       Nutrition{Calories: 350, Protein: 15, Carbs: 55, Fat: 9},
		PreparationTime: "10 mins",
		Instructions:    "1. Combine oats, milk, and yogurt in a jar. 2. Refrigerate overnight. 3. Top with berries and honey before serving.",
		Source:          FallbackSource,
		MealType:        "breakfast",
	},
	"lunch": {
		Name:            "Chickpea Garden Salad",
		Description:     "A light salad of chickpeas, greens, and a simple vinaigrette.",
		Ingredients:     []string{"2 cups mixed greens", "1 cup canned chickpeas", "1/2 cup cherry tomatoes", "1/4 cucumber", "2 tbsp olive oil vinaigrette"},
		Nutrition:       Nutrition{Calories: 380, Protein: 13, Carbs: 40, Fat: 18},
		PreparationTime: "15 mins",
		Instructions:    "1. Rinse and drain the chickpeas. 2. Chop the vegetables. 3. Toss everything with the vinaigrette.",
		Source:          FallbackSource,
		MealType:        "lunch",
	},
	"dinner": {
		Name:            "Sheet-Pan Vegetables with Rice",
		Description:     "Roasted seasonal vegetables served over steamed rice.",
		Ingredients:     []string{"2 cups chopped seasonal vegetables", "1 cup rice", "1 tbsp olive oil", "1 tsp mixed herbs", "salt and pepper"},
		Nutrition:       Nutrition{Calories: 480, Protein: 12, Carbs: 78, Fat: 13},
		PreparationTime: "35 mins",
		Instructions:    "1. Roast the vegetables with oil and herbs at 200C for 25 minutes. 2. Cook the rice. 3. Serve the vegetables over the rice.",
		Source:          FallbackSource,
		MealType:        "dinner",
	},
	"snack": {
		Name:            "Hummus with Veggie Sticks",
		Description:     "Carrot and cucumber sticks with a portion of hummus.",
		Ingredients:     []string{"1/2 cup hummus", "2 carrots", "1/2 cucumber", "1 celery stalk"},
		Nutrition:       Nutrition{Calories: 180, Protein: 6, Carbs: 20, Fat: 9},
		PreparationTime: "5 mins",
		Instructions:    "1. Cut the vegetables into sticks. 2. Serve with the hummus.",
		Source:          FallbackSource,
		MealType:        "snack",
	},
}

// StandardRecipe returns the fixed recipe for a meal type. Unknown types get
// the lunch recipe retagged, so callers always receive a complete meal.
func StandardRecipe(mealType string) Recipe {
	if r, ok := fallbackTable[mealType]; ok {
		return r
	}
	r := fallbackTable["lunch"]
	r.MealType = mealType
	return r
}

// Fallback builds the deterministic 3-day plan used when generation fails
// entirely. The structure always matches the default request shape: three
// days of breakfast, lunch, and dinner, dated from today.
func Fallback(now time.Time) *MealPlan {
	mealTypes := []string{"breakfast", "lunch", "dinner"}

	days := make([]DayPlan, 0, fallbackDays)
	for day := 1; day <= fallbackDays; day++ {
		meals := make([]Recipe, 0, len(mealTypes))
		for _, mealType := range mealTypes {
			meals = append(meals, fallbackTable[mealType])
		}
		days = append(days, DayPlan{
			Day:   day,
			Date:  now.AddDate(0, 0, day-1).Format("2006-01-02"),
			Meals: meals,
		})
	}

	return &MealPlan{
		ID:           uuid.NewString(),
		DurationDays: fallbackDays,
		GeneratedAt:  now,
		Days:         days,
		Summary:      Summarize(days, nil, nil, nil),
		Warning:      FallbackWarning,
	}
}
