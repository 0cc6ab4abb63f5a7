package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"mealplanner/internal/llm"
	"mealplanner/internal/plan"
	"mealplanner/internal/retrieval"
)

const retrievalSystemPrompt = `You are a professional chef. Adapt ONE of the provided real recipes to the user's constraints. Keep the adapted recipe recognizably based on the original. Return valid JSON only, and set "based_on" to the exact title of the recipe you adapted.`

const (
	minCandidateFetch = 10
	maxCandidateFetch = 20
	candidatesShown   = 5
)

// RetrievalAugmented grounds each recipe in real recipes fetched from the
// recipe search API. The model adapts one retrieved candidate per slot, and
// candidate nutrition overrides model nutrition when the two disagree beyond
// the configured tolerance.
type RetrievalAugmented struct {
	textGen    llm.TextGenerator
	retriever  retrieval.Retriever
	cache      CandidateCache
	titles     *titleTracker
	ungrounded *PureGenerative
	tolerance  float64
	logger     *zap.Logger
}

func NewRetrievalAugmented(textGen llm.TextGenerator, retriever retrieval.Retriever, cache CandidateCache, tolerance float64, logger *zap.Logger) *RetrievalAugmented {
	return &RetrievalAugmented{
		textGen:    textGen,
		retriever:  retriever,
		cache:      cache,
		titles:     newTitleTracker(),
		ungrounded: NewPureGenerative(textGen, logger),
		tolerance:  tolerance,
		logger:     logger,
	}
}

func (r *RetrievalAugmented) Name() string { return ModeRetrieval }

func (r *RetrievalAugmented) Reset() {
	r.titles.Reset()
	r.ungrounded.Reset()
}

func (r *RetrievalAugmented) GenerateRecipe(ctx context.Context, req Request) plan.Recipe {
	candidates := r.candidatesFor(ctx, req)
	if len(candidates) == 0 {
		return r.ungrounded.GenerateRecipe(ctx, req)
	}

	selected := r.selectCandidates(req.MealType, candidates)

	prompt := r.buildPrompt(req, selected)
	resp, err := r.textGen.GenerateContent(ctx, llm.ContentRequest{
		System:      retrievalSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.3,
	})
	if err != nil {
		r.logger.Warn("grounded generation failed, serving a candidate directly",
			zap.Int("day", req.Day),
			zap.String("meal_type", req.MealType),
			zap.Error(err))
		return candidateRecipe(selected[0], req.MealType)
	}

	recipe, wire, err := decodeRecipe(resp.Content, req.MealType, "")
	if err != nil {
		r.logger.Warn("grounded recipe response unusable, serving a candidate directly",
			zap.Int("day", req.Day),
			zap.String("meal_type", req.MealType),
			zap.Error(err))
		return candidateRecipe(selected[0], req.MealType)
	}

	chosen := matchCandidate(wire.BasedOn, selected)
	recipe.Source = chosen.Source
	recipe.Nutrition = r.reconcileNutrition(recipe.Nutrition, chosen.Nutrition)

	// All shown candidates are retired so the next slot sees fresh ones.
	shown := make([]string, len(selected))
	for i, c := range selected {
		shown[i] = c.Title
	}
	r.titles.MarkUsed(req.MealType, shown...)

	return recipe
}

// candidatesFor returns the candidate pool for a slot, served from cache when
// the search shape was seen before. Retrieval failures yield an empty pool.
func (r *RetrievalAugmented) candidatesFor(ctx context.Context, req Request) []retrieval.Candidate {
	key := candidateKey(req.MealType, req.Query.DietaryRestrictions, req.Query.PrepTimeMax)
	if cached, ok := r.cache.Get(ctx, key); ok {
		return dropExcluded(cached, req.Query.Exclusions)
	}

	count := req.Query.DurationDays * 3
	if count < minCandidateFetch {
		count = minCandidateFetch
	}
	if count > maxCandidateFetch {
		count = maxCandidateFetch
	}

	candidates, err := r.retriever.Candidates(ctx, retrieval.CandidateQuery{
		MealType:    req.MealType,
		Dietary:     req.Query.DietaryRestrictions,
		Preferences: req.Query.Preferences,
		PrepTimeMax: req.Query.PrepTimeMax,
		Count:       count,
	})
	if err != nil {
		r.logger.Warn("candidate retrieval failed",
			zap.String("meal_type", req.MealType),
			zap.Error(err))
		return nil
	}
	// The raw pool is cached; exclusions vary per request and are filtered
	// on the way out.
	if len(candidates) > 0 {
		r.cache.Set(ctx, key, candidates)
	}
	return dropExcluded(candidates, req.Query.Exclusions)
}

// dropExcluded removes candidates whose title or source names an excluded
// term. Ingredient lists are left to the prompt; these matches are cheap and
// unambiguous.
func dropExcluded(candidates []retrieval.Candidate, exclusions []string) []retrieval.Candidate {
	if len(exclusions) == 0 {
		return candidates
	}
	// Copy rather than filter in place: the input may be the cached pool.
	out := make([]retrieval.Candidate, 0, len(candidates))
	for _, c := range candidates {
		haystack := strings.ToLower(c.Title + " " + c.Source)
		keep := true
		for _, ex := range exclusions {
			if strings.Contains(haystack, strings.ToLower(ex)) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, c)
		}
	}
	return out
}

// selectCandidates picks up to candidatesShown unused candidates for the
// slot, shuffled so the model does not anchor on list order. When fewer than
// two unused candidates remain for a meal type the used set is reset, which
// keeps long plans from starving.
func (r *RetrievalAugmented) selectCandidates(mealType string, pool []retrieval.Candidate) []retrieval.Candidate {
	titles := make([]string, len(pool))
	byTitle := make(map[string]retrieval.Candidate, len(pool))
	for i, c := range pool {
		titles[i] = c.Title
		byTitle[strings.ToLower(c.Title)] = c
	}

	unused := r.titles.Unused(mealType, titles)
	if len(unused) < 2 {
		r.titles.ResetMealType(mealType)
		unused = titles
	}

	selected := make([]retrieval.Candidate, 0, candidatesShown)
	for _, title := range unused {
		selected = append(selected, byTitle[strings.ToLower(title)])
		if len(selected) == candidatesShown {
			break
		}
	}
	rand.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})
	return selected
}

func (r *RetrievalAugmented) buildPrompt(req Request, selected []retrieval.Candidate) string {
	candidateJSON, _ := json.MarshalIndent(selected, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s recipe for day %d of a meal plan by adapting one of these real recipes:\n\n%s\n\n",
		req.MealType, req.Day, candidateJSON)
	fmt.Fprintf(&b, "Requirements:\n%s", requirementLines(req.Query))
	fmt.Fprintf(&b, "\nReturn JSON exactly in this shape, plus a \"based_on\" field with the original title:\n%s", recipeSchema)
	return b.String()
}

// matchCandidate resolves the model's based_on title against the shown
// candidates, defaulting to the first shown candidate when the title does not
// match anything.
func matchCandidate(basedOn string, selected []retrieval.Candidate) retrieval.Candidate {
	want := strings.ToLower(strings.TrimSpace(basedOn))
	for _, c := range selected {
		if strings.ToLower(c.Title) == want {
			return c
		}
	}
	return selected[0]
}

// reconcileNutrition keeps the model's nutrition when it stays within
// tolerance of the grounding candidate, and takes the candidate's measured
// values otherwise.
func (r *RetrievalAugmented) reconcileNutrition(got plan.Nutrition, measured retrieval.Nutrition) plan.Nutrition {
	if measured.Calories <= 0 {
		return got
	}
	deviation := math.Abs(float64(got.Calories-measured.Calories)) / float64(measured.Calories)
	if deviation <= r.tolerance {
		return got
	}
	return plan.Nutrition{
		Calories: measured.Calories,
		Protein:  measured.Protein,
		Carbs:    measured.Carbs,
		Fat:      measured.Fat,
	}
}

// candidateRecipe serves a retrieved recipe as-is, used when generation fails
// but real candidates are in hand.
func candidateRecipe(c retrieval.Candidate, mealType string) plan.Recipe {
	prep := "30 mins"
	if c.PrepTimeMinutes > 0 {
		prep = fmt.Sprintf("%d mins", c.PrepTimeMinutes)
	}
	instructions := fmt.Sprintf("Follow the original recipe from %s.", c.Source)
	if c.URL != "" {
		instructions = fmt.Sprintf("Follow the original recipe at %s.", c.URL)
	}
	return plan.Recipe{
		Name:            c.Title,
		Description:     fmt.Sprintf("A %s recipe from %s.", mealType, c.Source),
		Ingredients:     c.Ingredients,
		Nutrition:       plan.Nutrition{Calories: c.Nutrition.Calories, Protein: c.Nutrition.Protein, Carbs: c.Nutrition.Carbs, Fat: c.Nutrition.Fat},
		PreparationTime: prep,
		Instructions:    instructions,
		Source:          c.Source,
		MealType:        mealType,
	}
}
