package strategy

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"mealplanner/internal/llm"
	"mealplanner/internal/retrieval"
)

// Selector maps mode names to strategy instances. Instances are built once
// and reused, so their variety trackers persist across requests.
type Selector struct {
	textGen     llm.TextGenerator
	retriever   retrieval.Retriever // nil when no retrieval credentials are configured
	cache       CandidateCache
	hybridRatio float64
	tolerance   float64
	logger      *zap.Logger

	mu        sync.Mutex
	instances map[string]Generator
}

func NewSelector(textGen llm.TextGenerator, retriever retrieval.Retriever, cache CandidateCache, hybridRatio, tolerance float64, logger *zap.Logger) *Selector {
	return &Selector{
		textGen:     textGen,
		retriever:   retriever,
		cache:       cache,
		hybridRatio: hybridRatio,
		tolerance:   tolerance,
		logger:      logger,
		instances:   map[string]Generator{},
	}
}

// Select returns the strategy for a mode name. Unknown modes and
// retrieval-backed modes without a configured retriever fall back to pure
// generation with a logged warning.
func (s *Selector) Select(mode string) Generator {
	mode = strings.ToLower(strings.TrimSpace(mode))
	switch mode {
	case ModeGenerative, ModeRetrieval, ModeHybrid, ModeFastBatch:
	default:
		s.logger.Warn("unknown generation mode, using llm_only", zap.String("mode", mode))
		mode = ModeGenerative
	}

	if (mode == ModeRetrieval || mode == ModeHybrid) && s.retriever == nil {
		s.logger.Warn("retrieval not configured, using llm_only", zap.String("mode", mode))
		mode = ModeGenerative
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.instances[mode]; ok {
		return g
	}
	g := s.build(mode)
	s.instances[mode] = g
	return g
}

func (s *Selector) build(mode string) Generator {
	switch mode {
	case ModeRetrieval:
		return NewRetrievalAugmented(s.textGen, s.retriever, s.cache, s.tolerance, s.logger)
	case ModeHybrid:
		grounded := NewRetrievalAugmented(s.textGen, s.retriever, s.cache, s.tolerance, s.logger)
		return NewHybrid(grounded, NewPureGenerative(s.textGen, s.logger), s.hybridRatio)
	case ModeFastBatch:
		return NewFastBatch(s.textGen, s.logger)
	default:
		return NewPureGenerative(s.textGen, s.logger)
	}
}
