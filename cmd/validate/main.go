// Command validate performs integrity checks on a merged-event JSON fixture:
// field presence, importance bounds, coordinate pairing, correlation
// reciprocity, source counts, and snapshot ordering. It guards the fixture
// that demo environments and UI development depend on.
//
// Usage:
//
//	go run ./cmd/validate -fixture data/mock/merged_events_240426.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	fixture := flag.String("fixture", "", "path to the merged-event JSON fixture")
	flag.Parse()

	if *fixture == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*fixture); code != 0 {
		os.Exit(code)
	}
}

func run(fixturePath string) int {
	fmt.Println("=== Merged Event Fixture Validation ===")
	fmt.Println()

	events, err := loadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load fixture: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateFields(events),
		validateLocations(events),
		validateCorrelation(events),
		validateOrdering(events),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d events\n", len(events))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadFixture(path string) ([]domain.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var events []domain.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ── Phase 1: Required Fields ──
// Every event carries an ID, title, source, bounded importance, and
// timestamps; IDs are unique and prefixed by their source slug.

func validateFields(events []domain.Event) *phase {
	p := &phase{name: "Phase 1: Required Fields"}

	seen := map[string]int{}
	for i := range events {
		e := &events[i]
		if e.ID == "" {
			p.errorf("event %d: missing ID", i)
			continue
		}
		if prev, dup := seen[e.ID]; dup {
			p.errorf("event %d: duplicate ID %q (first at %d)", i, e.ID, prev)
		}
		seen[e.ID] = i

		slug := strings.ToLower(strings.ReplaceAll(e.Source, " ", "-"))
		if !strings.HasPrefix(e.ID, slug+"-") {
			p.errorf("ID %s: doesn't start with source slug %q-", e.ID, slug)
		}

		if e.Title == "" {
			p.errorf("ID %s: title is empty", e.ID)
		}
		if e.Source == "" {
			p.errorf("ID %s: source is empty", e.ID)
		}
		if e.Importance < domain.ImportanceInfo || e.Importance > domain.ImportanceCritical {
			p.errorf("ID %s: importance %d outside [%d,%d]", e.ID, e.Importance, domain.ImportanceInfo, domain.ImportanceCritical)
		}
		if e.Timestamp.IsZero() {
			p.errorf("ID %s: timestamp is zero", e.ID)
		}
		if e.FetchedAt.IsZero() {
			p.errorf("ID %s: fetchedAt is zero", e.ID)
		}
		if e.SourceCount < 1 {
			p.errorf("ID %s: sourceCount %d < 1", e.ID, e.SourceCount)
		}
	}
	return p
}

// ── Phase 2: Locations ──
// Coordinates come in pairs: lat and lng are both set or both nil. A nil
// pair is a valid "no geolocation", never half a coordinate.

func validateLocations(events []domain.Event) *phase {
	p := &phase{name: "Phase 2: Locations"}

	for i := range events {
		e := &events[i]
		loc := e.Location
		if loc.Name == "" {
			p.errorf("ID %s: location.name is empty", e.ID)
		}
		if (loc.Lat == nil) != (loc.Lng == nil) {
			p.errorf("ID %s: unpaired coordinates (lat nil=%v, lng nil=%v)", e.ID, loc.Lat == nil, loc.Lng == nil)
		}
		if loc.Lat != nil {
			if *loc.Lat < -90 || *loc.Lat > 90 {
				p.errorf("ID %s: lat %g out of range", e.ID, *loc.Lat)
			}
			if *loc.Lng < -180 || *loc.Lng > 180 {
				p.errorf("ID %s: lng %g out of range", e.ID, *loc.Lng)
			}
		}
	}
	return p
}

// ── Phase 3: Correlation Consistency ──
// Correlation edges are reciprocal, never within one source, and every
// sourceCount matches the distinct sources in the event's cluster.

func validateCorrelation(events []domain.Event) *phase {
	p := &phase{name: "Phase 3: Correlation Consistency"}

	byID := map[string]*domain.Event{}
	for i := range events {
		byID[events[i].ID] = &events[i]
	}

	for i := range events {
		e := &events[i]

		sources := map[string]struct{}{e.Source: {}}
		for _, partnerID := range e.CorrelatedWith {
			partner, ok := byID[partnerID]
			if !ok {
				p.errorf("ID %s: correlated partner %q not in fixture", e.ID, partnerID)
				continue
			}
			if partner.Source == e.Source {
				p.errorf("ID %s: correlated with same-source event %q", e.ID, partnerID)
			}
			if !contains(partner.CorrelatedWith, e.ID) {
				p.errorf("ID %s: partner %q does not reciprocate", e.ID, partnerID)
			}
			sources[partner.Source] = struct{}{}
		}

		if e.SourceCount != len(sources) {
			p.errorf("ID %s: sourceCount %d, but cluster spans %d sources", e.ID, e.SourceCount, len(sources))
		}

		switch {
		case e.SourceCount >= 3 && e.Importance < 5:
			p.errorf("ID %s: %d sources but importance %d < 5", e.ID, e.SourceCount, e.Importance)
		case e.SourceCount >= 2 && e.Importance < 4:
			p.errorf("ID %s: %d sources but importance %d < 4", e.ID, e.SourceCount, e.Importance)
		}
	}
	return p
}

// ── Phase 4: Snapshot Ordering ──
// Breaking events precede non-breaking; within each group importance
// descends, then timestamps descend.

func validateOrdering(events []domain.Event) *phase {
	p := &phase{name: "Phase 4: Snapshot Ordering"}

	for i := 1; i < len(events); i++ {
		prev, cur := &events[i-1], &events[i]
		if !prev.IsBreaking && cur.IsBreaking {
			p.errorf("position %d: breaking event %s after non-breaking %s", i, cur.ID, prev.ID)
			continue
		}
		if prev.IsBreaking != cur.IsBreaking {
			continue
		}
		if prev.Importance < cur.Importance {
			p.errorf("position %d: importance ascends (%d then %d)", i, prev.Importance, cur.Importance)
			continue
		}
		if prev.Importance == cur.Importance && prev.Timestamp.Before(cur.Timestamp) {
			p.errorf("position %d: timestamp ascends within importance %d", i, cur.Importance)
		}
	}
	return p
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
