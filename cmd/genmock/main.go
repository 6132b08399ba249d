// Command genmock generates a deterministic merged-event fixture by running
// hand-written feed items through the real normalization and aggregation
// pipeline under a fixed clock. The fixture feeds demo environments and UI
// development, and its stats output helps keep test assertions current.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/merged_events_240426.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/event-feed-service/internal/domain"
	"github.com/couchcryptid/event-feed-service/internal/observability"
	"github.com/couchcryptid/event-feed-service/internal/pipeline"
	"github.com/couchcryptid/event-feed-service/internal/source"
)

// fixtureTime is the frozen "now" for the generated fixture.
var fixtureTime = time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the merged-event JSON fixture")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	clock := clockwork.NewFakeClockAt(fixtureTime)
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	agg := pipeline.New(fixtureSources(), nil, slog.Default(), observability.NewMetrics(),
		5*time.Minute, 24*time.Hour, 10*time.Second)
	agg.SetClock(clock)

	events, err := agg.Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("assemble fixture snapshot: %w", err)
	}

	if err := writeJSON(*out, events); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d events)", *out, len(events))

	printStats(events)
	return nil
}

// fixedSource serves a pre-normalized event list through the Source interface
// so the fixture passes through the real filter, correlate, and sort stages.
type fixedSource struct {
	name   string
	events []domain.Event
}

func (s *fixedSource) Name() string { return s.name }

func (s *fixedSource) Fetch(_ context.Context) ([]domain.Event, error) {
	return domain.CloneEvents(s.events), nil
}

// rawItem is one hand-written feed item. Normalization (ID, importance,
// keywords, location) runs through the domain package, not by hand.
type rawItem struct {
	title    string
	summary  string
	url      string
	age      time.Duration
	breaking bool
}

func fixtureSources() []source.Source {
	quakes := &fixedSource{name: "USGS", events: []domain.Event{
		quakeEvent("us7000fix1", "M 7.2 - 120 km SSE of Sand Point, Alaska", 7.2, 54.3, -160.7, time.Hour, true),
		quakeEvent("us7000fix2", "M 5.4 - near the coast of Chile", 5.4, -33.0, -71.6, 5*time.Hour, false),
		quakeEvent("us7000fix3", "M 4.6 - south of Fiji", 4.6, -20.1, 178.4, 9*time.Hour, false),
	}}

	sentiment := &fixedSource{name: "GDELT", events: textEvents("GDELT", []rawItem{
		{title: "Power grid failures reported across the Ukraine border", url: "https://news.example.org/grid", age: 2 * time.Hour},
		{title: "Wildfire forces evacuation of villages near Athens", url: "https://news.example.org/fire", age: 90 * time.Minute},
		{title: "Markets rally after the central bank holds rates", url: "https://news.example.org/rates", age: 6 * time.Hour},
	})}

	syndicated := &fixedSource{name: "BBC News", events: textEvents("BBC News", []rawItem{
		{title: "BREAKING: Power grid damaged across the Ukraine region", summary: "Rolling blackouts reported in several provinces after overnight strikes.", url: "https://feeds.example.org/1", age: time.Hour, breaking: true},
		{title: "Wildfire near Athens spreads as evacuation widens", summary: "Hundreds leave their homes as the fire front moves east.", url: "https://feeds.example.org/2", age: 2 * time.Hour},
		{title: "Quiet talks resume at the border summit", url: "https://feeds.example.org/3", age: 8 * time.Hour},
	})}

	return []source.Source{quakes, sentiment, syndicated}
}

func quakeEvent(id, title string, mag, lat, lng float64, age time.Duration, tsunami bool) domain.Event {
	importance := 2
	switch {
	case mag >= 7:
		importance = 5
	case mag >= 6:
		importance = 4
	case mag >= 5:
		importance = 3
	}
	categories := []string{"seismic"}
	if tsunami {
		categories = append(categories, "tsunami")
	}
	return domain.Event{
		ID:          domain.EventID("USGS", id),
		Title:       title,
		Source:      "USGS",
		Timestamp:   fixtureTime.Add(-age),
		Importance:  importance,
		Location:    domain.Location{Name: title, Lat: domain.Float64Ptr(lat), Lng: domain.Float64Ptr(lng), Type: domain.LocationLocal, Confidence: domain.ConfidenceHigh},
		Categories:  categories,
		EventType:   "earthquake",
		IsBreaking:  age <= 3*time.Hour && mag >= 6,
		SourceCount: 1,
		FetchedAt:   fixtureTime,
	}
}

func textEvents(src string, items []rawItem) []domain.Event {
	events := make([]domain.Event, 0, len(items))
	for _, it := range items {
		isRecent := it.age <= 2*time.Hour
		location := domain.GlobalLocation()
		if loc := domain.ExtractLocation(it.title); loc != nil {
			location = *loc
		}
		events = append(events, domain.Event{
			ID:          domain.EventID(src, it.url),
			Title:       it.title,
			Summary:     it.summary,
			Source:      src,
			SourceURL:   it.url,
			Timestamp:   fixtureTime.Add(-it.age),
			Importance:  domain.ClassifySeverity(it.title, it.summary, it.breaking, isRecent),
			Location:    location,
			Categories:  []string{"news"},
			IsBreaking:  it.breaking,
			Keywords:    domain.ExtractKeywords(it.title, it.summary),
			SourceCount: 1,
			FetchedAt:   fixtureTime,
		})
	}
	return events
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(events []domain.Event) {
	sourceCounts := map[string]int{}
	importanceCounts := map[int]int{}
	var breaking, geolocated, correlated int
	for i := range events {
		e := &events[i]
		sourceCounts[e.Source]++
		importanceCounts[e.Importance]++
		if e.IsBreaking {
			breaking++
		}
		if e.Location.HasCoordinates() {
			geolocated++
		}
		if len(e.CorrelatedWith) > 0 {
			correlated++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(events))
	fmt.Printf("By source: ")
	for src, c := range sourceCounts {
		fmt.Printf("%s=%d ", src, c)
	}
	fmt.Println()
	fmt.Printf("By importance: 5=%d, 4=%d, 3=%d, 2=%d, 1=%d\n",
		importanceCounts[5], importanceCounts[4], importanceCounts[3],
		importanceCounts[2], importanceCounts[1])
	fmt.Printf("Breaking: %d\n", breaking)
	fmt.Printf("Geolocated: %d\n", geolocated)
	fmt.Printf("Correlated: %d\n", correlated)

	if len(events) > 0 {
		e := events[0]
		fmt.Printf("\nTop event:\n")
		fmt.Printf("  ID: %s\n", e.ID)
		fmt.Printf("  Title: %s\n", e.Title)
		fmt.Printf("  Importance: %d, Breaking: %v, SourceCount: %d\n",
			e.Importance, e.IsBreaking, e.SourceCount)
	}
}
