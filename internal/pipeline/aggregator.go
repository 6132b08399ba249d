// Package pipeline merges heterogeneous event sources into a single ranked
// snapshot: concurrent fan-out, language and recency filters, cross-source
// correlation, and a TTL cache with stale fallback.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/event-feed-service/internal/domain"
	"github.com/couchcryptid/event-feed-service/internal/observability"
	"github.com/couchcryptid/event-feed-service/internal/source"
)

// EventSink receives each freshly merged snapshot, e.g. a Kafka firehose.
type EventSink interface {
	Publish(ctx context.Context, events []domain.Event) error
}

// Aggregator owns the merged snapshot. Reads inside the cache TTL are served
// from memory; a cold or forced read triggers one refresh cycle shared by all
// concurrent callers.
type Aggregator struct {
	sources      []source.Source
	sink         EventSink
	logger       *slog.Logger
	metrics      *observability.Metrics
	cacheTTL     time.Duration
	maxEventAge  time.Duration
	fetchTimeout time.Duration
	clock        clockwork.Clock

	mu         sync.Mutex
	snapshot   []domain.Event
	snapshotAt time.Time
	health     map[string]SourceHealth
	inflight   *refreshCall

	ready atomic.Bool
}

// refreshCall is the shared state of one in-flight refresh. Late callers wait
// on done instead of starting their own fan-out.
type refreshCall struct {
	done   chan struct{}
	events []domain.Event
	err    error
}

// New creates an Aggregator. sink may be nil when no firehose is configured.
func New(sources []source.Source, sink EventSink, logger *slog.Logger, metrics *observability.Metrics, cacheTTL, maxEventAge, fetchTimeout time.Duration) *Aggregator {
	return &Aggregator{
		sources:      sources,
		sink:         sink,
		logger:       logger,
		metrics:      metrics,
		cacheTTL:     cacheTTL,
		maxEventAge:  maxEventAge,
		fetchTimeout: fetchTimeout,
		clock:        clockwork.NewRealClock(),
		health:       make(map[string]SourceHealth),
	}
}

// SetClock replaces the aggregator's clock. Used by tests and fixture
// generation to control TTL expiry and filter windows.
func (a *Aggregator) SetClock(c clockwork.Clock) {
	a.clock = c
}

// Events returns the merged snapshot, refreshing first when the cache is
// cold or older than the TTL. Callers receive an independent copy.
func (a *Aggregator) Events(ctx context.Context) ([]domain.Event, error) {
	a.mu.Lock()
	fresh := a.snapshot != nil && a.clock.Since(a.snapshotAt) < a.cacheTTL
	snap := a.snapshot
	a.mu.Unlock()

	if fresh {
		a.metrics.CacheHits.Inc()
		return domain.CloneEvents(snap), nil
	}
	return a.refresh(ctx)
}

// Refresh bypasses the TTL and runs a refresh cycle now. Concurrent calls
// share a single cycle.
func (a *Aggregator) Refresh(ctx context.Context) ([]domain.Event, error) {
	return a.refresh(ctx)
}

// Health returns a copy of the per-source health recorded by the most recent
// refresh cycle.
func (a *Aggregator) Health() map[string]SourceHealth {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]SourceHealth, len(a.health))
	for name, h := range a.health {
		out[name] = h
	}
	return out
}

// CheckReadiness returns nil once at least one refresh cycle has produced a
// snapshot, or an error describing why the service is not yet ready.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("no snapshot assembled yet")
	}
	return nil
}

// Run keeps the snapshot warm until the context is cancelled: one refresh at
// startup, then one per TTL interval, so interactive reads almost always hit
// the cache.
func (a *Aggregator) Run(ctx context.Context) error {
	a.logger.Info("aggregator started", "sources", len(a.sources), "cache_ttl", a.cacheTTL)

	if _, err := a.refresh(ctx); err != nil {
		a.logger.Error("initial refresh failed", "error", err)
	}

	ticker := a.clock.NewTicker(a.cacheTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("aggregator stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if _, err := a.refresh(ctx); err != nil {
				a.logger.Error("scheduled refresh failed", "error", err)
			}
		}
	}
}

// refresh runs one refresh cycle, or joins the cycle already in flight.
func (a *Aggregator) refresh(ctx context.Context) ([]domain.Event, error) {
	a.mu.Lock()
	if call := a.inflight; call != nil {
		a.mu.Unlock()
		select {
		case <-call.done:
			return domain.CloneEvents(call.events), call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	a.inflight = call
	a.mu.Unlock()

	events, err := a.doRefresh(ctx)
	call.events, call.err = events, err

	a.mu.Lock()
	a.inflight = nil
	a.mu.Unlock()
	close(call.done)

	return domain.CloneEvents(events), err
}

// doRefresh is one full cycle: fan out to every source, record health, merge,
// filter, correlate, sort, swap the snapshot, and feed the sink. When every
// source fails, or the merge stage itself panics, the previous snapshot is
// kept and served instead.
func (a *Aggregator) doRefresh(ctx context.Context) (events []domain.Event, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		a.logger.Error("refresh cycle panicked", "panic", r)
		a.mu.Lock()
		stale := a.snapshot
		a.mu.Unlock()
		if stale == nil {
			events, err = nil, fmt.Errorf("refresh cycle panicked: %v", r)
			return
		}
		a.metrics.StaleFallbacks.Inc()
		events, err = stale, nil
	}()

	start := a.clock.Now()
	results := a.fetchAll(ctx)

	errored := 0
	health := make(map[string]SourceHealth, len(results))
	merged := make([]domain.Event, 0, 64)
	for _, r := range results {
		h := SourceHealth{LastCheck: start, EventCount: len(r.events)}
		switch {
		case r.err != nil:
			h.Status = StatusError
			h.Error = r.err.Error()
			errored++
		case len(r.events) == 0:
			h.Status = StatusEmpty
		default:
			h.Status = StatusHealthy
		}
		health[r.name] = h
		a.metrics.FetchesTotal.WithLabelValues(r.name, h.Status).Inc()
		merged = append(merged, r.events...)
	}

	if errored == len(a.sources) {
		a.mu.Lock()
		a.health = health
		stale := a.snapshot
		a.mu.Unlock()

		if stale == nil {
			return nil, fmt.Errorf("all %d sources failed", len(a.sources))
		}
		a.metrics.StaleFallbacks.Inc()
		a.logger.Warn("all sources failed, serving stale snapshot",
			"sources", len(a.sources), "snapshot_events", len(stale))
		return stale, nil
	}

	merged = a.filterEvents(merged)
	pairs := Correlate(merged)
	a.metrics.CorrelatedPairs.Add(float64(pairs))
	sortEvents(merged)

	a.mu.Lock()
	a.snapshot = merged
	a.snapshotAt = a.clock.Now()
	a.health = health
	a.mu.Unlock()

	a.ready.Store(true)
	a.metrics.RefreshesTotal.Inc()
	a.metrics.RefreshDuration.Observe(a.clock.Since(start).Seconds())
	a.metrics.SnapshotEvents.Set(float64(len(merged)))
	a.logger.Info("snapshot refreshed",
		"events", len(merged), "correlated_pairs", pairs, "sources_errored", errored)

	a.publishToSink(ctx, merged)
	return merged, nil
}

// fetchResult pairs one source's name with its fetch outcome.
type fetchResult struct {
	name   string
	events []domain.Event
	err    error
}

// fetchAll queries every source concurrently under the per-source timeout.
// Failures settle into results rather than cancelling the group: one slow or
// broken feed never takes down the cycle.
func (a *Aggregator) fetchAll(ctx context.Context) []fetchResult {
	results := make([]fetchResult, len(a.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range a.sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, a.fetchTimeout)
			defer cancel()

			fetchStart := time.Now()
			events, err := a.fetchOne(fetchCtx, src)
			a.metrics.FetchDuration.WithLabelValues(src.Name()).Observe(time.Since(fetchStart).Seconds())

			results[i] = fetchResult{name: src.Name(), events: events, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// fetchOne calls the source, turning a panic in adapter code into an ordinary
// fetch error so one bad payload cannot kill the refresh loop.
func (a *Aggregator) fetchOne(ctx context.Context, src source.Source) (events []domain.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("source panicked", "source", src.Name(), "panic", r)
			err = fmt.Errorf("source %s panicked: %v", src.Name(), r)
		}
	}()
	return src.Fetch(ctx)
}

// filterEvents drops non-English text events and anything older than the
// retention window. Structured feeds (earthquakes) carry no prose and skip
// the language check.
func (a *Aggregator) filterEvents(events []domain.Event) []domain.Event {
	now := a.clock.Now()
	kept := events[:0]
	for _, e := range events {
		if e.EventType != "earthquake" && !domain.IsLikelyEnglish(e.Title+" "+e.Summary) {
			a.metrics.EventsFiltered.WithLabelValues("language").Inc()
			continue
		}
		if now.Sub(e.Timestamp) > a.maxEventAge {
			a.metrics.EventsFiltered.WithLabelValues("stale").Inc()
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// sortEvents orders the snapshot for consumers: breaking first, then by
// importance, then newest first.
func sortEvents(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].IsBreaking != events[j].IsBreaking {
			return events[i].IsBreaking
		}
		if events[i].Importance != events[j].Importance {
			return events[i].Importance > events[j].Importance
		}
		return events[i].Timestamp.After(events[j].Timestamp)
	})
}

// publishToSink forwards the snapshot to the firehose, if one is configured.
// Sink failures are recorded but never fail the refresh.
func (a *Aggregator) publishToSink(ctx context.Context, events []domain.Event) {
	if a.sink == nil || len(events) == 0 {
		return
	}
	if err := a.sink.Publish(ctx, events); err != nil {
		a.logger.Error("sink publish failed", "error", err, "events", len(events))
		a.metrics.SinkPublishes.WithLabelValues("error").Inc()
		return
	}
	a.metrics.SinkPublishes.WithLabelValues("success").Inc()
}
