package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Location classification values.
const (
	LocationLocal    = "local"
	LocationRegional = "regional"
)

// Location confidence values. Empty means the source supplied no signal
// (e.g. the sentinel Global location).
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
)

// Importance bounds for the 1-5 urgency scale.
const (
	ImportanceInfo     = 1
	ImportanceCritical = 5
)

// Location is a place reference attached to an event. Lat/Lng nil means no
// geolocation is available — a valid terminal state, not an error. Events
// with nil coordinates must never be presented to map-rendering consumers as
// geolocated.
type Location struct {
	Name        string   `json:"name"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Type        string   `json:"type"`
	CountryCode string   `json:"countryCode,omitempty"`
	Confidence  string   `json:"confidence,omitempty"`
}

// HasCoordinates reports whether the location carries a usable lat/lng pair.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// GlobalLocation is the sentinel used when no location can be inferred.
func GlobalLocation() Location {
	return Location{Name: "Global", Type: LocationRegional}
}

// Event is the normalized record of one real-world happening, regardless of
// which feed it came from.
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary,omitempty"`
	Source     string    `json:"source"`
	SourceURL  string    `json:"sourceUrl,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Importance int       `json:"importance"`
	Location   Location  `json:"location"`
	Categories []string  `json:"categories,omitempty"`
	EventType  string    `json:"eventType,omitempty"`
	IsBreaking bool      `json:"isBreaking"`

	// Keywords is the normalized keyword set extracted at ingestion time,
	// consumed by the story correlator's Jaccard similarity.
	Keywords []string `json:"keywords,omitempty"`

	// SourceCount is 1 plus the number of distinct corroborating events
	// found by correlation. CorrelatedWith holds their IDs.
	SourceCount    int      `json:"sourceCount"`
	CorrelatedWith []string `json:"correlatedWith,omitempty"`

	FetchedAt time.Time `json:"fetchedAt"`
}

// Clone returns a deep copy of the event. Snapshot readers receive clones so
// a refresh can never mutate a value a consumer is holding.
func (e Event) Clone() Event {
	c := e
	c.Categories = append([]string(nil), e.Categories...)
	c.Keywords = append([]string(nil), e.Keywords...)
	c.CorrelatedWith = append([]string(nil), e.CorrelatedWith...)
	if e.Location.Lat != nil {
		lat := *e.Location.Lat
		c.Location.Lat = &lat
	}
	if e.Location.Lng != nil {
		lng := *e.Location.Lng
		c.Location.Lng = &lng
	}
	return c
}

// CloneEvents deep-copies a slice of events.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i := range events {
		out[i] = events[i].Clone()
	}
	return out
}

// EventID produces a deterministic ID from a raw item's stable fields.
// Identical raw items keep identical IDs across refresh cycles, so
// correlation back-references and downstream consumers stay stable.
func EventID(source string, parts ...string) string {
	input := strings.ToLower(source) + "|" + strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])

	slug := strings.ToLower(strings.ReplaceAll(source, " ", "-"))
	if slug == "" {
		return short
	}
	return slug + "-" + short
}

// ClampImportance bounds a score to the 1-5 scale.
func ClampImportance(score int) int {
	if score < ImportanceInfo {
		return ImportanceInfo
	}
	if score > ImportanceCritical {
		return ImportanceCritical
	}
	return score
}

// Float64Ptr returns a pointer to v. Convenience for building Locations.
func Float64Ptr(v float64) *float64 {
	return &v
}
