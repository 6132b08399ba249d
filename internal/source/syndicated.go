package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

const (
	// maxSummaryLen is the rune cap applied to item descriptions.
	maxSummaryLen = 200

	// maxFeedBody bounds how much of a proxied response is read.
	maxFeedBody = 2 << 20

	// syndicatedRecency is the window for the severity classifier's
	// isRecent boost.
	syndicatedRecency = 2 * time.Hour

	untitledPlaceholder = "(untitled)"
)

// urgencyRe detects breaking-news phrasing in item titles.
var urgencyRe = regexp.MustCompile(`(?i)\b(breaking|urgent|just in|live|alert|developing)\b`)

// outlet is one entry in the fixed syndicated-feed registry.
type outlet struct {
	name string
	url  string
}

// defaultOutlets is the fixed registry of named outlet feeds.
var defaultOutlets = []outlet{
	{name: "BBC News", url: "https://feeds.bbci.co.uk/news/world/rss.xml"},
	{name: "Al Jazeera", url: "https://www.aljazeera.com/xml/rss/all.xml"},
	{name: "The Guardian", url: "https://www.theguardian.com/world/rss"},
	{name: "NPR", url: "https://feeds.npr.org/1004/rss.xml"},
	{name: "France 24", url: "https://www.france24.com/en/rss"},
}

// defaultProxies is the ordered list of CORS-bypass endpoints. The first
// returns a JSON envelope with the feed markup under "contents"; the others
// pass the raw markup through.
var defaultProxies = []string{
	"https://api.allorigins.win/get?url=",
	"https://corsproxy.io/?",
	"https://api.codetabs.com/v1/proxy?quest=",
}

// SyndicatedSource fetches each registered outlet's feed through the ordered
// proxy list, trying each proxy in turn until one succeeds. One outlet
// exhausting every proxy contributes zero events; the remaining outlets still
// run.
type SyndicatedSource struct {
	outlets      []outlet
	proxies      []string
	proxyTimeout time.Duration
	httpClient   *http.Client
	parser       *gofeed.Parser
	logger       *slog.Logger
}

// NewSyndicatedSource creates the syndicated-feed adapter with the default
// outlet registry and proxy list.
func NewSyndicatedSource(proxyTimeout time.Duration, logger *slog.Logger) *SyndicatedSource {
	return &SyndicatedSource{
		outlets:      defaultOutlets,
		proxies:      defaultProxies,
		proxyTimeout: proxyTimeout,
		// No client-level timeout: each proxy attempt carries its own
		// context deadline.
		httpClient: &http.Client{},
		parser:     gofeed.NewParser(),
		logger:     logger,
	}
}

func (s *SyndicatedSource) Name() string { return "RSS" }

func (s *SyndicatedSource) Fetch(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	failed := 0
	for _, o := range s.outlets {
		feedEvents, err := s.fetchOutlet(ctx, o)
		if err != nil {
			failed++
			s.logger.Warn("outlet fetch failed", "outlet", o.name, "error", err)
			continue
		}
		events = append(events, feedEvents...)
	}
	if failed == len(s.outlets) {
		return nil, fmt.Errorf("all %d syndicated feeds failed", len(s.outlets))
	}
	return events, nil
}

// fetchOutlet tries each proxy in order until one yields a parseable feed.
func (s *SyndicatedSource) fetchOutlet(ctx context.Context, o outlet) ([]domain.Event, error) {
	var lastErr error
	for _, proxy := range s.proxies {
		markup, err := s.fetchThroughProxy(ctx, proxy, o.url)
		if err != nil {
			lastErr = err
			s.logger.Debug("proxy attempt failed", "outlet", o.name, "proxy", proxy, "error", err)
			continue
		}

		feed, err := s.parser.ParseString(markup)
		if err != nil {
			lastErr = fmt.Errorf("parse feed: %w", err)
			continue
		}

		now := domain.Now()
		events := make([]domain.Event, 0, len(feed.Items))
		for _, item := range feed.Items {
			events = append(events, s.normalizeItem(o, item, now))
		}
		return events, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no proxies configured")
	}
	return nil, fmt.Errorf("all proxies exhausted: %w", lastErr)
}

// fetchThroughProxy performs one proxy attempt under its own timeout and
// returns the feed markup, unwrapping the JSON envelope when the proxy
// responds with one.
func (s *SyndicatedSource) fetchThroughProxy(ctx context.Context, proxy, feedURL string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.proxyTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, proxy+url.QueryEscape(feedURL), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("proxy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("proxy status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return "", fmt.Errorf("read proxy response: %w", err)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var envelope struct {
			Contents string `json:"contents"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return "", fmt.Errorf("decode proxy envelope: %w", err)
		}
		if envelope.Contents == "" {
			return "", errors.New("empty proxy envelope")
		}
		return envelope.Contents, nil
	}
	return string(body), nil
}

func (s *SyndicatedSource) normalizeItem(o outlet, item *gofeed.Item, now time.Time) domain.Event {
	title := stripHTML(item.Title)
	if title == "" {
		title = untitledPlaceholder
	}
	summary := truncateRunes(stripHTML(item.Description), maxSummaryLen)

	timestamp := now
	if item.PublishedParsed != nil {
		timestamp = item.PublishedParsed.UTC()
	}

	isBreaking := urgencyRe.MatchString(item.Title)
	isRecent := now.Sub(timestamp) >= 0 && now.Sub(timestamp) <= syndicatedRecency

	location := domain.GlobalLocation()
	if loc := domain.ExtractLocation(title); loc != nil {
		location = *loc
	} else if loc := domain.ExtractLocation(summary); loc != nil {
		location = *loc
	}

	categories := item.Categories
	if len(categories) == 0 {
		categories = []string{"news"}
	}

	idPart := item.Link
	if idPart == "" {
		idPart = item.Title
	}

	return domain.Event{
		ID:          domain.EventID(o.name, idPart),
		Title:       title,
		Summary:     summary,
		Source:      o.name,
		SourceURL:   item.Link,
		Timestamp:   timestamp,
		Importance:  domain.ClassifySeverity(title, summary, isBreaking, isRecent),
		Location:    location,
		Categories:  categories,
		IsBreaking:  isBreaking,
		Keywords:    domain.ExtractKeywords(title, summary),
		SourceCount: 1,
		FetchedAt:   now,
	}
}

// truncateRunes caps s at n runes, appending an ellipsis when cut.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
