//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/event-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/event-feed-service/internal/config"
	"github.com/couchcryptid/event-feed-service/internal/domain"
	"github.com/couchcryptid/event-feed-service/internal/observability"
	"github.com/couchcryptid/event-feed-service/internal/pipeline"
	"github.com/couchcryptid/event-feed-service/internal/source"
)

const testSinkTopic = "test-merged-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type fixedSource struct {
	name   string
	events []domain.Event
}

func (s *fixedSource) Name() string { return s.name }

func (s *fixedSource) Fetch(_ context.Context) ([]domain.Event, error) {
	return domain.CloneEvents(s.events), nil
}

// TestFirehosePublishesSnapshot runs a refresh cycle against real Kafka and
// verifies the merged snapshot lands on the sink topic with one message per
// event, keyed by event ID.
func TestFirehosePublishesSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSinkTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testSinkTopic,
	}

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	now := time.Now().UTC()
	bbc := &fixedSource{name: "BBC News", events: []domain.Event{
		{
			ID: domain.EventID("BBC News", "https://example.org/grid"), Title: "Power grid damaged across the Ukraine region",
			Source: "BBC News", Timestamp: now.Add(-time.Hour), Importance: 3,
			Location: domain.GlobalLocation(), Keywords: []string{"power", "grid", "ukraine"},
			SourceCount: 1, FetchedAt: now,
		},
	}}
	gdelt := &fixedSource{name: "GDELT", events: []domain.Event{
		{
			ID: domain.EventID("GDELT", "https://example.com/grid"), Title: "Power grid failures reported across the Ukraine border",
			Source: "GDELT", Timestamp: now.Add(-2 * time.Hour), Importance: 3,
			Location: domain.GlobalLocation(), Keywords: []string{"power", "grid", "moldova", "ukraine"},
			SourceCount: 1, FetchedAt: now,
		},
	}}

	agg := pipeline.New([]source.Source{bbc, gdelt}, writer, discardLogger(),
		observability.NewMetricsForTesting(), 5*time.Minute, 24*time.Hour, 10*time.Second)

	events, err := agg.Refresh(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	received := make(map[string]domain.Event, 2)
	for len(received) < 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read from sink topic")

		var event domain.Event
		require.NoError(t, json.Unmarshal(msg.Value, &event))
		assert.Equal(t, event.ID, string(msg.Key), "message keyed by event ID")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.NotEmpty(t, headers["source"])
		_, err = time.Parse(time.RFC3339, headers["fetched_at"])
		assert.NoError(t, err, "fetched_at should be valid RFC3339")

		received[event.ID] = event
	}

	// Correlation survived serialization: both events corroborate each other.
	for id, event := range received {
		assert.Equal(t, 2, event.SourceCount, "event %s", id)
		assert.Equal(t, 4, event.Importance, "event %s", id)
		assert.Len(t, event.CorrelatedWith, 1, "event %s", id)
	}
}
