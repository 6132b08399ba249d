package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/event-feed-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	fetched := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)
	event := domain.Event{
		ID:         "usgs-1a2b3c4d",
		Title:      "M 6.1 - south of Fiji",
		Source:     "USGS",
		EventType:  "earthquake",
		Importance: 4,
		Location: domain.Location{
			Name: "Fiji Region",
			Lat:  domain.Float64Ptr(-20.1),
			Lng:  domain.Float64Ptr(178.4),
			Type: domain.LocationLocal,
		},
		Timestamp: fetched.Add(-30 * time.Minute),
		FetchedAt: fetched,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("usgs-1a2b3c4d"), msg.Key)
	assert.Contains(t, string(msg.Value), `"eventType":"earthquake"`)
	assert.Contains(t, string(msg.Value), `"importance":4`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "source", msg.Headers[0].Key)
	assert.Equal(t, []byte("USGS"), msg.Headers[0].Value)
	assert.Equal(t, "fetched_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(fetched.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessage_NoCoordinates(t *testing.T) {
	event := domain.Event{
		ID:       "gdelt-9f8e7d6c",
		Title:    "Talks collapse ahead of the summit",
		Source:   "GDELT",
		Location: domain.GlobalLocation(),
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)
	// Missing coordinates serialize as explicit nulls, not zeroes.
	assert.Contains(t, string(msg.Value), `"lat":null`)
	assert.Contains(t, string(msg.Value), `"lng":null`)
}
