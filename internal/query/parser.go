package query

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"mealplanner/internal/llm"
)

const parseSystemPrompt = `You are a meal plan query parser. Extract structured information from natural language queries about meal plans.

Extract:
- duration_days: Number of days (1-7, default 3 if not specified)
- meals_per_day: Number of meals per day (1-4, default 3 if not specified)
- meal_types: List of meal types in serving order (breakfast, lunch, dinner, snack)
- dietary_restrictions: List of restrictions (vegan, vegetarian, gluten-free, dairy-free, nut-free, etc.)
- preferences: List of preferences (high-protein, low-carb, keto, paleo, mediterranean, etc.)
- special_requirements: List of special requirements (budget-friendly, quick meals, under 15 minutes, etc.)
- exclusions: List of foods or ingredients the user wants excluded
- contradictions: List any contradictory requirements (e.g., "vegan and pescatarian")

Return valid JSON only.`

// Interpreter turns raw request text into a ParsedQuery. Parsing first asks
// the generative model for a structured extraction and falls back to keyword
// matching on any failure; Parse never returns an error.
type Interpreter struct {
	textGen    llm.TextGenerator
	validators []Validator
	timeout    time.Duration
	logger     *zap.Logger
}

// NewInterpreter creates an Interpreter with the default validator pipeline.
func NewInterpreter(textGen llm.TextGenerator, logger *zap.Logger) *Interpreter {
	return &Interpreter{
		textGen:    textGen,
		validators: DefaultValidators(),
		timeout:    15 * time.Second,
		logger:     logger,
	}
}

// WithValidators replaces the validator pipeline. Order is significant.
func (i *Interpreter) WithValidators(validators []Validator) *Interpreter {
	i.validators = validators
	return i
}

// Parse extracts structured requirements from a natural language query.
func (i *Interpreter) Parse(ctx context.Context, text string) ParsedQuery {
	parsed, err := i.parseWithLLM(ctx, text)
	if err != nil {
		i.logger.Warn("llm parsing failed, using keyword fallback", zap.Error(err))
		return parseWithKeywords(text)
	}
	return parsed
}

// Validate runs the ordered validator pipeline over a working copy of the
// parsed query and returns the corrected copy plus any warnings.
func (i *Interpreter) Validate(text string, parsed ParsedQuery) (ParsedQuery, []string) {
	corrected := parsed.Clone()
	var warnings []string
	for _, validate := range i.validators {
		if warning := validate(text, &corrected); warning != "" {
			warnings = append(warnings, warning)
		}
	}
	return corrected, warnings
}

func (i *Interpreter) parseWithLLM(ctx context.Context, text string) (ParsedQuery, error) {
	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	prompt := fmt.Sprintf(`Parse this meal plan query: "%s"

Return a JSON object with:
{
  "duration_days": <int 1-7>,
  "meals_per_day": <int 1-4>,
  "meal_types": [<list of meal types in order>],
  "dietary_restrictions": [<list of restrictions>],
  "preferences": [<list of preferences>],
  "special_requirements": [<list of special requirements>],
  "exclusions": [<list of excluded foods>],
  "contradictions": [<list of contradictions if any>]
}`, text)

	resp, err := i.textGen.GenerateContent(ctx, llm.ContentRequest{
		System:      parseSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.1,
	})
	if err != nil {
		return ParsedQuery{}, err
	}

	var parsed ParsedQuery
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		return ParsedQuery{}, fmt.Errorf("malformed extraction JSON: %w", err)
	}
	return cleanParsed(parsed), nil
}

// cleanParsed normalizes an extraction into the field contract shared with
// the keyword fallback.
func cleanParsed(parsed ParsedQuery) ParsedQuery {
	if parsed.DurationDays == 0 {
		parsed.DurationDays = defaultDurationDays
	}
	parsed.DurationDays = clampDuration(parsed.DurationDays)
	parsed.MealTypes = normalizeList(parsed.MealTypes)
	parsed.DietaryRestrictions = normalizeList(parsed.DietaryRestrictions)
	parsed.Preferences = normalizeList(parsed.Preferences)
	parsed.SpecialRequirements = normalizeList(parsed.SpecialRequirements)
	parsed.Contradictions = normalizeList(parsed.Contradictions)
	parsed.Exclusions = normalizeList(parsed.Exclusions)
	return parsed
}

var (
	durationPattern   = regexp.MustCompile(`(\d+)\s*-?\s*day`)
	exclusionPattern  = regexp.MustCompile(`\b(?:exclude|excluding|without)\s+([a-z][a-z ,-]*)`)
	exclusionSplitter = regexp.MustCompile(`\s*(?:,|\band\b)\s*`)
)

var restrictionKeywords = []string{
	"vegan", "vegetarian", "gluten-free", "dairy-free", "nut-free",
	"pescatarian", "paleo", "keto",
}

// parseWithKeywords is the deterministic fallback extraction. It produces
// the same field contract as the model-backed path.
func parseWithKeywords(text string) ParsedQuery {
	lower := strings.ToLower(text)

	duration := defaultDurationDays
	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			duration = n
		}
	} else if strings.Contains(lower, "week") || strings.Contains(lower, "7") {
		duration = 7
	}
	duration = clampDuration(duration)

	var restrictions []string
	for _, keyword := range restrictionKeywords {
		if strings.Contains(lower, keyword) {
			restrictions = append(restrictions, keyword)
		}
	}

	var preferences []string
	if strings.Contains(lower, "high protein") || strings.Contains(lower, "high-protein") {
		preferences = append(preferences, "high-protein")
	}
	if strings.Contains(lower, "low carb") || strings.Contains(lower, "low-carb") {
		preferences = append(preferences, "low-carb")
	}
	if strings.Contains(lower, "mediterranean") {
		preferences = append(preferences, "mediterranean")
	}

	var special []string
	if strings.Contains(lower, "budget") || strings.Contains(lower, "cheap") {
		special = append(special, "budget-friendly")
	}
	if strings.Contains(lower, "quick") || strings.Contains(lower, "fast") || strings.Contains(lower, "15 minute") {
		special = append(special, "quick-meals")
	}

	var exclusions []string
	for _, m := range exclusionPattern.FindAllStringSubmatch(lower, -1) {
		for _, item := range exclusionSplitter.Split(strings.TrimSpace(m[1]), -1) {
			item = strings.TrimSpace(item)
			if item == "" || contains(restrictionKeywords, item) {
				continue
			}
			exclusions = append(exclusions, item)
		}
	}

	return ParsedQuery{
		DurationDays:        duration,
		DietaryRestrictions: normalizeList(restrictions),
		Preferences:         normalizeList(preferences),
		SpecialRequirements: normalizeList(special),
		Exclusions:          normalizeList(exclusions),
	}
}
