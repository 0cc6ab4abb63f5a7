// Command evaluate exercises the generation strategies against live model
// and recipe APIs and reports latency and recipe diversity per mode. It is a
// development tool, not part of the serving path.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"mealplanner/internal/config"
	"mealplanner/internal/llm"
	"mealplanner/internal/plan"
	"mealplanner/internal/planner"
	"mealplanner/internal/query"
	"mealplanner/internal/retrieval"
	"mealplanner/internal/strategy"
)

type modeResult struct {
	mode          string
	runs          int
	totalLatency  time.Duration
	diversitySum  float64
	fallbackMeals int
	totalMeals    int
}

func main() {
	modesFlag := flag.String("modes", "llm_only,rag,hybrid,fast_llm", "comma-separated generation modes to evaluate")
	days := flag.Int("days", 3, "plan duration in days")
	runs := flag.Int("runs", 2, "plans generated per mode")
	queryText := flag.String("query", "", "request text; defaults to a plain N-day plan")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, strings.Split(*modesFlag, ","), *days, *runs, *queryText); err != nil {
		logger.Fatal("evaluation failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, modes []string, days, runs int, queryText string) error {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	textGen := llm.Measured(geminiClient)

	var retriever retrieval.Retriever
	if cfg.HasEdamam() {
		client, err := retrieval.NewClient(cfg.EdamamAppID, cfg.EdamamAppKey, cfg.EdamamUserID)
		if err != nil {
			return fmt.Errorf("failed to initialize recipe search client: %w", err)
		}
		retriever = client
	}

	cache := strategy.NewMemoryCache(cfg.CacheTTL)
	interpreter := query.NewInterpreter(textGen, logger)
	selector := strategy.NewSelector(textGen, retriever, cache, cfg.HybridRAGRatio, cfg.NutritionTolerance, logger)
	assembler := planner.NewAssembler(interpreter, selector, nil, logger)

	if queryText == "" {
		queryText = fmt.Sprintf("%d-day meal plan with breakfast, lunch and dinner", days)
	}

	results := make([]modeResult, 0, len(modes))
	for _, mode := range modes {
		mode = strings.TrimSpace(mode)
		if mode == "" {
			continue
		}
		res := modeResult{mode: mode}
		for i := 0; i < runs; i++ {
			start := time.Now()
			p, err := assembler.GeneratePlan(ctx, queryText, mode)
			if err != nil {
				return fmt.Errorf("mode %s run %d: %w", mode, i+1, err)
			}
			res.runs++
			res.totalLatency += time.Since(start)
			res.diversitySum += diversity(p)
			fb, total := fallbackShare(p)
			res.fallbackMeals += fb
			res.totalMeals += total
		}
		results = append(results, res)
		logger.Info("mode evaluated", zap.String("mode", mode), zap.Int("runs", res.runs))
	}

	printSummary(results)
	return nil
}

// diversity is the share of distinct recipe names across the plan. 1.0 means
// no repeats.
func diversity(p *plan.MealPlan) float64 {
	names := map[string]struct{}{}
	total := 0
	for _, day := range p.Days {
		for _, meal := range day.Meals {
			names[strings.ToLower(meal.Name)] = struct{}{}
			total++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(len(names)) / float64(total)
}

func fallbackShare(p *plan.MealPlan) (fallback, total int) {
	for _, day := range p.Days {
		for _, meal := range day.Meals {
			total++
			if meal.Source == plan.FallbackSource {
				fallback++
			}
		}
	}
	return fallback, total
}

func printSummary(results []modeResult) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODE\tRUNS\tAVG LATENCY\tAVG DIVERSITY\tFALLBACK MEALS")
	for _, r := range results {
		if r.runs == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%d/%d\n",
			r.mode,
			r.runs,
			(r.totalLatency / time.Duration(r.runs)).Round(time.Millisecond),
			r.diversitySum/float64(r.runs),
			r.fallbackMeals,
			r.totalMeals,
		)
	}
	w.Flush()
}
