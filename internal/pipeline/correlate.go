package pipeline

import (
	"sort"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

// correlationThreshold is the minimum Jaccard keyword similarity for two
// events from different sources to count as the same underlying story.
const correlationThreshold = 0.3

// Correlate links events across sources by keyword similarity and mutates the
// slice in place: correlated events get each other's IDs in CorrelatedWith,
// SourceCount set to the number of distinct sources in the cluster, and an
// importance floor of 4 (two sources) or 5 (three or more). Importance is
// never lowered. Events from the same source never correlate with each other,
// however similar. Safe to re-run on already-correlated events. Returns the
// number of correlated pairs.
func Correlate(events []domain.Event) int {
	pairs := 0
	adjacent := make([][]int, len(events))
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			if events[i].Source == events[j].Source {
				continue
			}
			if jaccard(events[i].Keywords, events[j].Keywords) < correlationThreshold {
				continue
			}
			adjacent[i] = append(adjacent[i], j)
			adjacent[j] = append(adjacent[j], i)
			pairs++
		}
	}

	for i := range events {
		if len(adjacent[i]) == 0 {
			continue
		}

		sources := map[string]struct{}{events[i].Source: {}}
		ids := make([]string, 0, len(adjacent[i]))
		for _, j := range adjacent[i] {
			sources[events[j].Source] = struct{}{}
			ids = append(ids, events[j].ID)
		}
		sort.Strings(ids)

		events[i].CorrelatedWith = ids
		events[i].SourceCount = len(sources)

		floor := 0
		switch {
		case events[i].SourceCount >= 3:
			floor = 5
		case events[i].SourceCount >= 2:
			floor = 4
		}
		if floor > events[i].Importance {
			events[i].Importance = floor
		}
	}
	return pairs
}

// jaccard computes set similarity over two keyword lists. Either list being
// empty yields zero: an event with no keywords correlates with nothing.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, kw := range a {
		setA[kw] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, kw := range b {
		setB[kw] = struct{}{}
	}

	intersection := 0
	for kw := range setA {
		if _, ok := setB[kw]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
