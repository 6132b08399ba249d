package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

const (
	// seendateLayout is the index's compact article timestamp.
	seendateLayout = "20060102150405"

	// Tone magnitude above which an article counts as a breaking-news proxy,
	// provided it is also recent.
	breakingTone      = 10.0
	sentimentBreaking = 2 * time.Hour
)

// SentimentSource queries a global open-event index filtered by sentiment
// extremity: articles whose absolute tone clears a threshold, newest first.
type SentimentSource struct {
	baseURL    string
	query      string
	maxRecords int
	timespan   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSentimentSource creates the sentiment-news adapter.
func NewSentimentSource(baseURL, query string, maxRecords int, timespan string, timeout time.Duration, logger *slog.Logger) *SentimentSource {
	return &SentimentSource{
		baseURL:    baseURL,
		query:      query,
		maxRecords: maxRecords,
		timespan:   timespan,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}
}

func (s *SentimentSource) Name() string { return "GDELT" }

func (s *SentimentSource) Fetch(ctx context.Context) ([]domain.Event, error) {
	params := url.Values{
		"query":      {s.query},
		"maxrecords": {strconv.Itoa(s.maxRecords)},
		"timespan":   {s.timespan},
		"mode":       {"artlist"},
		"format":     {"json"},
		"sort":       {"datedesc"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sentiment index request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("sentiment index: status %d: %s", resp.StatusCode, body)
	}

	var payload articleList
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode sentiment index: %w", err)
	}

	now := domain.Now()
	seen := make(map[string]struct{}, len(payload.Articles))
	events := make([]domain.Event, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		id := domain.EventID(s.Name(), a.URL)
		// The index occasionally repeats articles under the same URL.
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		events = append(events, s.normalizeArticle(a, id, now))
	}
	return events, nil
}

func (s *SentimentSource) normalizeArticle(a article, id string, now time.Time) domain.Event {
	timestamp := parseSeendate(a.Seendate, now)
	tone := math.Abs(a.Tone)
	isBreaking := tone > breakingTone && now.Sub(timestamp) >= 0 && now.Sub(timestamp) <= sentimentBreaking

	return domain.Event{
		ID:          id,
		Title:       a.Title,
		Source:      s.Name(),
		SourceURL:   a.URL,
		Timestamp:   timestamp,
		Importance:  toneImportance(tone),
		Location:    s.articleLocation(a),
		Categories:  []string{"news"},
		IsBreaking:  isBreaking,
		Keywords:    domain.ExtractKeywords(a.Title, ""),
		SourceCount: 1,
		FetchedAt:   now,
	}
}

// articleLocation prefers the structured reporting country, falls back to
// text extraction from the title, then to the Global sentinel. Text
// extraction is best effort only.
func (s *SentimentSource) articleLocation(a article) domain.Location {
	if a.SourceCountry != "" {
		if loc, ok := domain.LookupCountry(a.SourceCountry); ok {
			return loc
		}
	}
	if loc := domain.ExtractLocation(a.Title); loc != nil {
		return *loc
	}
	return domain.GlobalLocation()
}

// toneImportance maps absolute sentiment magnitude onto the importance scale:
// extreme tone is the index's strongest urgency signal.
func toneImportance(absTone float64) int {
	switch {
	case absTone > 15:
		return 5
	case absTone > 10:
		return 4
	case absTone > 5:
		return 3
	default:
		return 2
	}
}

// parseSeendate parses the compact YYYYMMDDHHMMSS timestamp, tolerating the
// variant with literal T/Z separators. Parse failure defaults to fetch time.
func parseSeendate(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	if t, err := time.Parse(seendateLayout, s); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("20060102T150405Z", s); err == nil {
		return t.UTC()
	}
	return fallback
}

// Sentiment index response types.

type articleList struct {
	Articles []article `json:"articles"`
}

type article struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Domain        string  `json:"domain"`
	SourceCountry string  `json:"sourcecountry"`
	Seendate      string  `json:"seendate"`
	Tone          float64 `json:"tone"`
}
