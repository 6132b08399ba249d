package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

// breakingWindow is how recent a quake must be to carry the breaking flag.
const breakingWindow = 3 * time.Hour

// SeismicSource fetches a public GeoJSON summary feed of geophysical events
// above a magnitude threshold, keyed by a magnitude/period identifier such
// as "4.5_day".
type SeismicSource struct {
	baseURL    string
	period     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSeismicSource creates the seismic adapter.
func NewSeismicSource(baseURL, period string, timeout time.Duration, logger *slog.Logger) *SeismicSource {
	return &SeismicSource{
		baseURL:    baseURL,
		period:     period,
		httpClient: newHTTPClient(timeout),
		logger:     logger,
	}
}

func (s *SeismicSource) Name() string { return "USGS" }

// Fetch retrieves and normalizes the summary feed. Records with malformed or
// missing geometry are skipped; the rest of the batch is kept.
func (s *SeismicSource) Fetch(ctx context.Context) ([]domain.Event, error) {
	u := fmt.Sprintf("%s/%s.geojson", s.baseURL, s.period)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("seismic feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("seismic feed: status %d: %s", resp.StatusCode, body)
	}

	var feed quakeFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode seismic feed: %w", err)
	}

	now := domain.Now()
	events := make([]domain.Event, 0, len(feed.Features))
	for _, f := range feed.Features {
		event, ok := s.normalizeQuake(f, now)
		if !ok {
			s.logger.Debug("skipping malformed seismic record", "feature_id", f.ID)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *SeismicSource) normalizeQuake(f quakeFeature, now time.Time) (domain.Event, bool) {
	if f.Properties.Mag == nil || f.Geometry == nil || len(f.Geometry.Coordinates) < 2 {
		return domain.Event{}, false
	}

	mag := *f.Properties.Mag
	// Coordinates arrive as [lng, lat, depth].
	lng := f.Geometry.Coordinates[0]
	lat := f.Geometry.Coordinates[1]

	eventTime := now
	if f.Properties.Time > 0 {
		eventTime = time.UnixMilli(f.Properties.Time).UTC()
	}

	title := f.Properties.Title
	if title == "" {
		title = fmt.Sprintf("Magnitude %.1f earthquake near %s", mag, f.Properties.Place)
	}

	categories := []string{"seismic"}
	if f.Properties.Tsunami != 0 {
		categories = append(categories, "tsunami")
	}

	return domain.Event{
		ID:         domain.EventID(s.Name(), f.ID),
		Title:      title,
		Summary:    fmt.Sprintf("Magnitude %.1f at depth %s km, %s", mag, depthString(f.Geometry.Coordinates), f.Properties.Place),
		Source:     s.Name(),
		SourceURL:  f.Properties.URL,
		Timestamp:  eventTime,
		Importance: magnitudeImportance(mag),
		Location: domain.Location{
			Name:       f.Properties.Place,
			Lat:        domain.Float64Ptr(lat),
			Lng:        domain.Float64Ptr(lng),
			Type:       domain.LocationLocal,
			Confidence: domain.ConfidenceHigh,
		},
		Categories:  categories,
		EventType:   "earthquake",
		IsBreaking:  now.Sub(eventTime) >= 0 && now.Sub(eventTime) <= breakingWindow,
		Keywords:    domain.ExtractKeywords(title, f.Properties.Place),
		SourceCount: 1,
		FetchedAt:   now,
	}, true
}

// magnitudeImportance maps quake magnitude onto the 1-5 importance scale.
func magnitudeImportance(mag float64) int {
	switch {
	case mag >= 7.0:
		return 5
	case mag >= 6.0:
		return 4
	case mag >= 5.0:
		return 3
	default:
		return 2
	}
}

func depthString(coords []float64) string {
	if len(coords) < 3 {
		return "unknown"
	}
	return strconv.FormatFloat(coords[2], 'f', 1, 64)
}

// GeoJSON summary feed response types.

type quakeFeed struct {
	Features []quakeFeature `json:"features"`
}

type quakeFeature struct {
	ID         string `json:"id"`
	Properties struct {
		Mag     *float64 `json:"mag"`
		Place   string   `json:"place"`
		Time    int64    `json:"time"`
		Tsunami int      `json:"tsunami"`
		Title   string   `json:"title"`
		URL     string   `json:"url"`
	} `json:"properties"`
	Geometry *struct {
		Coordinates []float64 `json:"coordinates"` // [lng, lat, depth]
	} `json:"geometry"`
}
