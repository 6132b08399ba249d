// Package source contains the adapters that fetch external feeds and
// normalize their payloads into domain events. Each adapter isolates its own
// failure modes: transport errors and malformed records never propagate past
// Fetch as anything but an error return, which the aggregator converts into a
// per-source health entry.
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

// Source is one external event feed. Fetch returns the normalized events for
// the current cycle; an error means the source contributed nothing this cycle
// and is recorded in its health entry, never escalated.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Event, error)
}

// newHTTPClient builds the shared client shape used by all adapters.
// Per-attempt deadlines come from request contexts; the client timeout is a
// backstop for adapters that don't set one.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
