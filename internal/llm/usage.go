package llm

import (
	"context"
	"sync"
)

type tallyKey struct{}

// UsageTally accumulates token usage across the model calls made while
// serving one request. Safe for concurrent use.
type UsageTally struct {
	mu    sync.Mutex
	total TokenUsage
}

func (t *UsageTally) add(u TokenUsage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total.PromptTokens += u.PromptTokens
	t.total.CompletionTokens += u.CompletionTokens
	t.total.TotalTokens += u.TotalTokens
	if u.Model != "" {
		t.total.Model = u.Model
	}
}

// Total returns the usage accumulated so far.
func (t *UsageTally) Total() TokenUsage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// WithUsageTally attaches a fresh tally to the context. Calls made through a
// Measured generator under this context report into it.
func WithUsageTally(ctx context.Context) (context.Context, *UsageTally) {
	tally := &UsageTally{}
	return context.WithValue(ctx, tallyKey{}, tally), tally
}

type measured struct {
	inner TextGenerator
}

// Measured wraps a TextGenerator so every successful call adds its token
// usage to the tally on the context, when one is present.
func Measured(inner TextGenerator) TextGenerator {
	return measured{inner: inner}
}

func (m measured) GenerateContent(ctx context.Context, req ContentRequest) (ContentResponse, error) {
	resp, err := m.inner.GenerateContent(ctx, req)
	if err != nil {
		return resp, err
	}
	if tally, ok := ctx.Value(tallyKey{}).(*UsageTally); ok {
		tally.add(resp.Usage)
	}
	return resp, nil
}
