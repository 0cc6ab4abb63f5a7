package strategy

import (
	"strings"
	"sync"
)

const trackerCapacity = 50

// nameTracker remembers recently generated recipe names, per meal type, so
// prompts can ask the model not to repeat them. A breakfast prompt should
// never waste its do-not-repeat list on dinner names. Oldest entries are
// evicted at capacity. Safe for concurrent use.
type nameTracker struct {
	mu     sync.Mutex
	byMeal map[string]*nameWindow
}

type nameWindow struct {
	order []string
	seen  map[string]struct{}
}

func newNameTracker() *nameTracker {
	return &nameTracker{byMeal: map[string]*nameWindow{}}
}

func (t *nameTracker) Add(mealType, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.byMeal[mealType]
	if !ok {
		w = &nameWindow{seen: map[string]struct{}{}}
		t.byMeal[mealType] = w
	}
	key := strings.ToLower(name)
	if _, dup := w.seen[key]; dup {
		return
	}
	if len(w.order) == trackerCapacity {
		delete(w.seen, strings.ToLower(w.order[0]))
		w.order = w.order[1:]
	}
	w.seen[key] = struct{}{}
	w.order = append(w.order, name)
}

// Recent returns up to n names for the meal type, most recent first.
func (t *nameTracker) Recent(mealType string, n int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.byMeal[mealType]
	if !ok {
		return nil
	}
	if n > len(w.order) {
		n = len(w.order)
	}
	out := make([]string, 0, n)
	for i := len(w.order) - 1; i >= len(w.order)-n; i-- {
		out = append(out, w.order[i])
	}
	return out
}

func (t *nameTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byMeal = map[string]*nameWindow{}
}

// titleTracker tracks which retrieved candidate titles have already been
// served, per meal type. Safe for concurrent use.
type titleTracker struct {
	mu   sync.Mutex
	used map[string]map[string]struct{}
}

func newTitleTracker() *titleTracker {
	return &titleTracker{used: map[string]map[string]struct{}{}}
}

func (t *titleTracker) MarkUsed(mealType string, titles ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.used[mealType]
	if !ok {
		set = map[string]struct{}{}
		t.used[mealType] = set
	}
	for _, title := range titles {
		set[strings.ToLower(title)] = struct{}{}
	}
}

// Unused filters titles down to those not yet served for the meal type,
// preserving order.
func (t *titleTracker) Unused(mealType string, titles []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.used[mealType]
	var out []string
	for _, title := range titles {
		if _, used := set[strings.ToLower(title)]; !used {
			out = append(out, title)
		}
	}
	return out
}

func (t *titleTracker) ResetMealType(mealType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.used, mealType)
}

func (t *titleTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.used = map[string]map[string]struct{}{}
}
