package strategy

import (
	"testing"
)

func newTestSelector(retrieverConfigured bool) *Selector {
	textGen := &stubTextGenerator{response: validRecipeJSON}
	var selector *Selector
	if retrieverConfigured {
		selector = NewSelector(textGen, &stubRetriever{candidates: testCandidates()}, newMapCache(), 0.7, 0.10, testLogger())
	} else {
		selector = NewSelector(textGen, nil, newMapCache(), 0.7, 0.10, testLogger())
	}
	return selector
}

func TestSelectBuildsEachMode(t *testing.T) {
	selector := newTestSelector(true)

	cases := map[string]string{
		ModeGenerative: "llm_only",
		ModeRetrieval:  "rag",
		ModeHybrid:     "hybrid_70rag",
		ModeFastBatch:  "fast_llm",
	}
	for mode, wantName := range cases {
		if got := selector.Select(mode).Name(); got != wantName {
			t.Errorf("Select(%q).Name() = %q, want %q", mode, got, wantName)
		}
	}
}

func TestSelectReusesInstances(t *testing.T) {
	selector := newTestSelector(true)

	first := selector.Select(ModeRetrieval)
	second := selector.Select(ModeRetrieval)
	if first != second {
		t.Error("Expected the same instance on repeated selection")
	}
}

func TestSelectUnknownModeFallsBack(t *testing.T) {
	selector := newTestSelector(true)

	if got := selector.Select("turbo").Name(); got != ModeGenerative {
		t.Errorf("Expected unknown mode to fall back to llm_only, got %q", got)
	}
}

func TestSelectIsCaseInsensitive(t *testing.T) {
	selector := newTestSelector(true)

	if got := selector.Select(" FAST_LLM ").Name(); got != ModeFastBatch {
		t.Errorf("Expected case-insensitive mode matching, got %q", got)
	}
}

func TestSelectRetrievalWithoutRetriever(t *testing.T) {
	selector := newTestSelector(false)

	if got := selector.Select(ModeRetrieval).Name(); got != ModeGenerative {
		t.Errorf("Expected rag without credentials to fall back to llm_only, got %q", got)
	}
	if got := selector.Select(ModeHybrid).Name(); got != ModeGenerative {
		t.Errorf("Expected hybrid without credentials to fall back to llm_only, got %q", got)
	}
}

func TestCandidateKeyIsOrderInsensitive(t *testing.T) {
	a := candidateKey("dinner", []string{"vegan", "gluten-free"}, 30)
	b := candidateKey("dinner", []string{"gluten-free", "vegan"}, 30)
	if a != b {
		t.Errorf("Expected identical keys, got %q and %q", a, b)
	}
	if a == candidateKey("lunch", []string{"vegan", "gluten-free"}, 30) {
		t.Error("Expected meal type to change the key")
	}
}
