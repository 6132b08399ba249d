package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/event-feed-service/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.April, 26, 15, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func quakeFeedJSON(t *testing.T) string {
	t.Helper()
	oneHourAgo := testNow.Add(-1 * time.Hour).UnixMilli()
	fourHoursAgo := testNow.Add(-4 * time.Hour).UnixMilli()
	return `{
		"features": [
			{
				"id": "us7000m9g4",
				"properties": {
					"mag": 7.2,
					"place": "120 km SSE of Sand Point, Alaska",
					"time": ` + itoa64(oneHourAgo) + `,
					"tsunami": 1,
					"title": "M 7.2 - 120 km SSE of Sand Point, Alaska",
					"url": "https://example.org/us7000m9g4"
				},
				"geometry": {"coordinates": [-160.7, 54.3, 32.6]}
			},
			{
				"id": "us7000m9g5",
				"properties": {
					"mag": 5.1,
					"place": "near the coast of Chile",
					"time": ` + itoa64(fourHoursAgo) + `,
					"tsunami": 0,
					"title": "M 5.1 - near the coast of Chile",
					"url": "https://example.org/us7000m9g5"
				},
				"geometry": {"coordinates": [-71.6, -33.0, 10.0]}
			},
			{
				"id": "no-geometry",
				"properties": {"mag": 6.0, "place": "nowhere", "time": ` + itoa64(oneHourAgo) + `}
			},
			{
				"id": "no-magnitude",
				"properties": {"place": "nowhere", "time": ` + itoa64(oneHourAgo) + `},
				"geometry": {"coordinates": [1.0, 2.0, 3.0]}
			}
		]
	}`
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}

func TestSeismicFetch_NormalizesFeed(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/4.5_day.geojson", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quakeFeedJSON(t)))
	}))
	defer srv.Close()

	s := NewSeismicSource(srv.URL, "4.5_day", 5*time.Second, discardLogger())
	events, err := s.Fetch(context.Background())
	require.NoError(t, err)

	// Two valid records; malformed geometry and missing magnitude skipped.
	require.Len(t, events, 2)

	big := events[0]
	assert.Equal(t, "earthquake", big.EventType)
	assert.Equal(t, 5, big.Importance)
	assert.True(t, big.IsBreaking)
	assert.Equal(t, "USGS", big.Source)
	assert.Contains(t, big.Categories, "seismic")
	assert.Contains(t, big.Categories, "tsunami")
	require.True(t, big.Location.HasCoordinates())
	assert.InEpsilon(t, 54.3, *big.Location.Lat, 0.001)
	assert.InEpsilon(t, -160.7, *big.Location.Lng, 0.001)
	assert.Equal(t, testNow.Add(-1*time.Hour), big.Timestamp)
	assert.Equal(t, 1, big.SourceCount)

	small := events[1]
	assert.Equal(t, 3, small.Importance)
	// Four hours old: outside the 3h breaking window.
	assert.False(t, small.IsBreaking)
	assert.NotContains(t, small.Categories, "tsunami")
}

func TestSeismicFetch_StableIDs(t *testing.T) {
	freezeClock(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(quakeFeedJSON(t)))
	}))
	defer srv.Close()

	s := NewSeismicSource(srv.URL, "4.5_day", 5*time.Second, discardLogger())
	first, err := s.Fetch(context.Background())
	require.NoError(t, err)
	second, err := s.Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestSeismicFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewSeismicSource(srv.URL, "4.5_day", 5*time.Second, discardLogger())
	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestSeismicFetch_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	s := NewSeismicSource(srv.URL, "4.5_day", 5*time.Second, discardLogger())
	_, err := s.Fetch(context.Background())
	require.Error(t, err)
}

func TestSeismicFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSeismicSource(srv.URL, "4.5_day", 50*time.Millisecond, discardLogger())
	_, err := s.Fetch(context.Background())
	require.Error(t, err)
}
