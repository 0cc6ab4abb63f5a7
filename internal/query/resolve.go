package query

import (
	"fmt"
	"strings"
)

// conflictWinners maps a known conflicting pair (order-independent) to the
// item that survives: the more restrictive or more specific tag wins.
var conflictWinners = map[[2]string]string{
	pairKey("vegan", "pescatarian"):  "vegan",
	pairKey("keto", "high-carb"):     "keto",
	pairKey("low-carb", "high-carb"): "low-carb",
}

func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// ResolveContradictions deterministically resolves every recorded
// contradiction and clears the contradiction list. For each "A and B" pair
// the winner is chosen by the known-pair table, then by preferring a dietary
// restriction over a preference, then by keeping the first-encountered item.
// The returned warning folds all kept and dropped items into one sentence;
// it is empty when there was nothing to resolve.
func ResolveContradictions(parsed ParsedQuery) (ParsedQuery, string) {
	if len(parsed.Contradictions) == 0 {
		return parsed, ""
	}

	resolved := parsed.Clone()
	var kept, dropped []string

	for _, contradiction := range resolved.Contradictions {
		parts := strings.SplitN(contradiction, " and ", 2)
		if len(parts) != 2 {
			continue
		}
		first := strings.TrimSpace(parts[0])
		second := strings.TrimSpace(parts[1])

		winner := pickWinner(resolved, first, second)
		loser := first
		if winner == first {
			loser = second
		}

		resolved.DietaryRestrictions = remove(resolved.DietaryRestrictions, loser)
		resolved.Preferences = remove(resolved.Preferences, loser)
		kept = appendUnique(kept, winner)
		dropped = appendUnique(dropped, loser)
	}

	resolved.Contradictions = nil

	warning := fmt.Sprintf(
		"Your request contained conflicting requirements (%s conflicts with %s). The plan follows %s.",
		strings.Join(kept, ", "), strings.Join(dropped, ", "), strings.Join(kept, ", "),
	)
	return resolved, warning
}

func pickWinner(q ParsedQuery, first, second string) string {
	if winner, ok := conflictWinners[pairKey(first, second)]; ok {
		return winner
	}
	firstIsRestriction := contains(q.DietaryRestrictions, first)
	secondIsRestriction := contains(q.DietaryRestrictions, second)
	if firstIsRestriction && !secondIsRestriction {
		return first
	}
	if secondIsRestriction && !firstIsRestriction {
		return second
	}
	return first
}
