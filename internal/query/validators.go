package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validator inspects the original query text and may correct the working
// copy of the parsed query. A non-empty return value is an advisory warning.
// Validators are pure with respect to everything but their state argument
// and must be idempotent: re-running one over an already-corrected query
// changes nothing.
type Validator func(text string, q *ParsedQuery) string

// DefaultValidators returns the standard pipeline. Order is significant:
// meal counts are settled before contradiction detection, and budget/prep
// extraction run last because they only append special requirements.
func DefaultValidators() []Validator {
	return []Validator{
		ValidateMealCount,
		ValidateDuration,
		ValidateRestrictionCount,
		ValidateContradictions,
		ValidateBudget,
		ValidatePrepTime,
	}
}

var mealCountPattern = regexp.MustCompile(`(\d+)\s*meals?`)

// ValidateMealCount settles meals_per_day and meal_types. Priority:
// an explicit count phrase, then explicit meal-type mentions, then
// "<type> only" phrasing, then the 3-meal default.
func ValidateMealCount(text string, q *ParsedQuery) string {
	lower := strings.ToLower(text)

	if m := mealCountPattern.FindStringSubmatch(lower); m != nil {
		count, _ := strconv.Atoi(m[1])
		warning := ""
		if count < minMealsPerDay || count > maxMealsPerDay {
			clamped := count
			if clamped < minMealsPerDay {
				clamped = minMealsPerDay
			}
			if clamped > maxMealsPerDay {
				clamped = maxMealsPerDay
			}
			warning = fmt.Sprintf("Meal count adjusted to %d (valid range: %d-%d)", clamped, minMealsPerDay, maxMealsPerDay)
			count = clamped
		}
		q.MealsPerDay = count
		q.MealTypes = mealTypesForCount(lower, count)
		return warning
	}

	if mentioned := mentionedMealTypes(lower); len(mentioned) > 0 {
		q.MealsPerDay = len(mentioned)
		q.MealTypes = mentioned
		return ""
	}

	if strings.Contains(lower, "only") {
		for _, mealType := range canonicalMealTypes {
			if strings.Contains(lower, mealType) {
				q.MealsPerDay = 1
				q.MealTypes = []string{mealType}
				return ""
			}
		}
	}

	// Nothing in the text; respect an extraction that already settled the
	// counts, otherwise fall back to three square meals.
	if q.MealsPerDay >= minMealsPerDay && q.MealsPerDay <= maxMealsPerDay {
		types := normalizeList(q.MealTypes)
		for _, mealType := range canonicalMealTypes {
			if len(types) >= q.MealsPerDay {
				break
			}
			types = appendUnique(types, mealType)
		}
		q.MealTypes = types[:q.MealsPerDay]
		return ""
	}

	q.MealsPerDay = 3
	q.MealTypes = []string{"breakfast", "lunch", "dinner"}
	return ""
}

// mentionedMealTypes lists the meal types named in the text, in canonical
// serving order.
func mentionedMealTypes(lower string) []string {
	var mentioned []string
	for _, mealType := range canonicalMealTypes {
		if strings.Contains(lower, mealType) || (mealType == "dinner" && strings.Contains(lower, "supper")) {
			mentioned = append(mentioned, mealType)
		}
	}
	return mentioned
}

// mealTypesForCount picks the meal types for an explicit count, preferring
// types named in the text and padding from the canonical order.
func mealTypesForCount(lower string, count int) []string {
	types := mentionedMealTypes(lower)
	for _, mealType := range canonicalMealTypes {
		if len(types) >= count {
			break
		}
		types = appendUnique(types, mealType)
	}
	return types[:count]
}

// ValidateDuration clamps the plan length to the supported range.
func ValidateDuration(_ string, q *ParsedQuery) string {
	if q.DurationDays == 0 {
		q.DurationDays = defaultDurationDays
	}
	if q.DurationDays < minDurationDays {
		q.DurationDays = minDurationDays
		return fmt.Sprintf("Duration adjusted to minimum %d day", minDurationDays)
	}
	if q.DurationDays > maxDurationDays {
		q.DurationDays = maxDurationDays
		return fmt.Sprintf("Duration adjusted to maximum %d days", maxDurationDays)
	}
	return ""
}

// ValidateRestrictionCount is advisory only: an unusually long restriction
// list usually means some of them conflict.
func ValidateRestrictionCount(_ string, q *ParsedQuery) string {
	if len(q.DietaryRestrictions) > 5 {
		return fmt.Sprintf("Many dietary restrictions specified (%d). Some may conflict.", len(q.DietaryRestrictions))
	}
	return ""
}

// knownConflicts are pairs of mutually exclusive dietary tags, with the item
// that survives resolution listed first. vegan/vegetarian is intentionally
// not in this table: vegan is a strict subset of vegetarian, not a conflict.
var knownConflicts = [][2]string{
	{"vegan", "pescatarian"},
	{"keto", "high-carb"},
	{"low-carb", "high-carb"},
}

// ValidateContradictions records "A and B" pair strings for every known
// conflicting pair found across restrictions and preferences.
func ValidateContradictions(_ string, q *ParsedQuery) string {
	tags := append(append([]string(nil), q.DietaryRestrictions...), q.Preferences...)

	for _, pair := range knownConflicts {
		if contains(tags, pair[0]) && contains(tags, pair[1]) {
			q.Contradictions = appendUnique(q.Contradictions, fmt.Sprintf("%s and %s", pair[0], pair[1]))
		}
	}

	if len(q.Contradictions) > 0 {
		return fmt.Sprintf("Contradictory requirements detected: %s", strings.Join(q.Contradictions, ", "))
	}
	return ""
}

var budgetKeywords = []struct {
	level    string
	keywords []string
}{
	{"budget-friendly", []string{"budget", "cheap", "affordable", "low cost", "inexpensive"}},
	{"moderate", []string{"moderate", "reasonable", "average"}},
	{"premium", []string{"premium", "expensive", "luxury", "gourmet", "high-end"}},
}

// ValidateBudget folds budget keywords from the text into the special
// requirements, replacing any previously recorded budget level.
func ValidateBudget(text string, q *ParsedQuery) string {
	lower := strings.ToLower(text)

	for _, group := range budgetKeywords {
		for _, keyword := range group.keywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			// Substitute any previously recorded budget level in place so
			// repeated validation leaves the list untouched.
			replaced := false
			special := q.SpecialRequirements[:0]
			for _, req := range q.SpecialRequirements {
				if req == "budget-friendly" || req == "moderate" || req == "premium" {
					if !replaced {
						special = append(special, group.level)
						replaced = true
					}
					continue
				}
				special = append(special, req)
			}
			if !replaced {
				special = append(special, group.level)
			}
			q.SpecialRequirements = special
			return ""
		}
	}
	return ""
}

var prepTimePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*minutes?`),
	regexp.MustCompile(`(\d+)\s*mins?`),
	regexp.MustCompile(`under\s*(\d+)`),
	regexp.MustCompile(`less\s*than\s*(\d+)`),
}

// ValidatePrepTime extracts a maximum preparation time from explicit numbers
// or quick-meal phrasing, and tags quick-meals when the limit is tight.
func ValidatePrepTime(text string, q *ParsedQuery) string {
	lower := strings.ToLower(text)

	prepTimeMax := 0
	for _, pattern := range prepTimePatterns {
		if m := pattern.FindStringSubmatch(lower); m != nil {
			prepTimeMax, _ = strconv.Atoi(m[1])
			break
		}
	}

	if prepTimeMax == 0 {
		for _, keyword := range []string{"quick", "fast", "easy", "simple"} {
			if strings.Contains(lower, keyword) {
				prepTimeMax = 30
				break
			}
		}
	}

	if prepTimeMax == 0 {
		return ""
	}

	q.PrepTimeMax = prepTimeMax
	if prepTimeMax <= 30 {
		q.SpecialRequirements = appendUnique(q.SpecialRequirements, "quick-meals")
	}
	return fmt.Sprintf("Preparation time constraint: %d minutes max", prepTimeMax)
}
