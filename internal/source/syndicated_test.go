package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>World Desk</title>
    <item>
      <title>BREAKING: Explosion reported near central Kyiv</title>
      <description><![CDATA[<p>Several buildings damaged after blasts &amp; fires spread through the district overnight, emergency services said.</p>]]></description>
      <link>https://feeds.example.org/items/1</link>
      <pubDate>Fri, 26 Apr 2024 14:30:00 GMT</pubDate>
      <category>conflict</category>
    </item>
    <item>
      <title>Museum reopens after decade-long restoration</title>
      <description>The landmark welcomed its first visitors in ten years.</description>
      <link>https://feeds.example.org/items/2</link>
      <pubDate>Fri, 26 Apr 2024 06:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func newSyndicatedForTest(outlets []outlet, proxies []string) *SyndicatedSource {
	s := NewSyndicatedSource(time.Second, discardLogger())
	s.outlets = outlets
	s.proxies = proxies
	return s
}

func TestSyndicatedFetch_RawMarkupProxy(t *testing.T) {
	freezeClock(t)

	feedURL := "https://feeds.example.org/world.rss"
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, feedURL, r.URL.Query().Get("url"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer proxy.Close()

	s := newSyndicatedForTest(
		[]outlet{{name: "World Desk", url: feedURL}},
		[]string{proxy.URL + "/get?url="},
	)
	events, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	urgent := events[0]
	assert.Equal(t, "BREAKING: Explosion reported near central Kyiv", urgent.Title)
	assert.True(t, urgent.IsBreaking)
	assert.Equal(t, 5, urgent.Importance)
	assert.Equal(t, "World Desk", urgent.Source)
	assert.Equal(t, "https://feeds.example.org/items/1", urgent.SourceURL)
	assert.Equal(t, time.Date(2024, time.April, 26, 14, 30, 0, 0, time.UTC), urgent.Timestamp)
	assert.Equal(t, "Kyiv", urgent.Location.Name)
	assert.Equal(t, []string{"conflict"}, urgent.Categories)
	// Markup stripped and entity decoded from the description.
	assert.NotContains(t, urgent.Summary, "<p>")
	assert.Contains(t, urgent.Summary, "blasts & fires")

	quiet := events[1]
	assert.False(t, quiet.IsBreaking)
	assert.Equal(t, 2, quiet.Importance)
	assert.Equal(t, []string{"news"}, quiet.Categories)
	assert.Equal(t, "Global", quiet.Location.Name)
}

func TestSyndicatedFetch_JSONEnvelopeProxy(t *testing.T) {
	freezeClock(t)

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"contents": sampleFeed})
	}))
	defer proxy.Close()

	s := newSyndicatedForTest(
		[]outlet{{name: "World Desk", url: "https://feeds.example.org/world.rss"}},
		[]string{proxy.URL + "/get?url="},
	)
	events, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestSyndicatedFetch_ProxyFallbackOrder(t *testing.T) {
	freezeClock(t)

	var firstCalls atomic.Int32
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		firstCalls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer working.Close()

	s := newSyndicatedForTest(
		[]outlet{{name: "World Desk", url: "https://feeds.example.org/world.rss"}},
		[]string{broken.URL + "/?u=", working.URL + "/?u="},
	)
	events, err := s.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, int32(1), firstCalls.Load(), "failing proxy should be tried first")
}

func TestSyndicatedFetch_OutletIsolation(t *testing.T) {
	freezeClock(t)

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Query().Get("u"), "broken") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer proxy.Close()

	s := newSyndicatedForTest(
		[]outlet{
			{name: "Broken Desk", url: "https://broken.example.org/rss"},
			{name: "World Desk", url: "https://feeds.example.org/world.rss"},
		},
		[]string{proxy.URL + "/?u="},
	)
	events, err := s.Fetch(context.Background())
	require.NoError(t, err)
	// The failing outlet contributes nothing; the healthy one still lands.
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, "World Desk", e.Source)
	}
}

func TestSyndicatedFetch_AllOutletsFail(t *testing.T) {
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer proxy.Close()

	s := newSyndicatedForTest(
		[]outlet{
			{name: "A", url: "https://a.example.org/rss"},
			{name: "B", url: "https://b.example.org/rss"},
		},
		[]string{proxy.URL + "/?u="},
	)
	_, err := s.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 syndicated feeds failed")
}

func TestSyndicatedFetch_SummaryTruncation(t *testing.T) {
	freezeClock(t)

	long := strings.Repeat("word ", 60)
	feed := `<?xml version="1.0"?><rss version="2.0"><channel><title>X</title>
		<item><title>Long story</title><description>` + long + `</description>
		<link>https://feeds.example.org/items/long</link></item></channel></rss>`

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer proxy.Close()

	s := newSyndicatedForTest(
		[]outlet{{name: "X", url: "https://feeds.example.org/long.rss"}},
		[]string{proxy.URL + "/?u="},
	)
	events, err := s.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.True(t, strings.HasSuffix(events[0].Summary, "..."))
	assert.LessOrEqual(t, len([]rune(events[0].Summary)), maxSummaryLen+3)
	// No pubDate: item timestamp defaults to fetch time.
	assert.Equal(t, testNow, events[0].Timestamp)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "ab...", truncateRunes("abcdef", 2))
	assert.Equal(t, "héllo", truncateRunes("héllo", 5))
}
