package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/event-feed-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/event-feed-service/internal/adapter/kafka"
	"github.com/couchcryptid/event-feed-service/internal/config"
	"github.com/couchcryptid/event-feed-service/internal/observability"
	"github.com/couchcryptid/event-feed-service/internal/pipeline"
	"github.com/couchcryptid/event-feed-service/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sources := []source.Source{
		source.NewSeismicSource(cfg.SeismicBaseURL, cfg.SeismicPeriod, cfg.FetchTimeout, logger),
		source.NewSentimentSource(cfg.SentimentBaseURL, cfg.SentimentQuery, cfg.SentimentMaxRecords, cfg.SentimentTimespan, cfg.FetchTimeout, logger),
		source.NewSyndicatedSource(cfg.ProxyTimeout, logger),
	}

	// Firehose sink is feature-flagged via KAFKA_ENABLED.
	var sink pipeline.EventSink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sink = writer
		logger.Info("kafka firehose enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka firehose disabled")
	}

	agg := pipeline.New(sources, sink, logger, metrics,
		cfg.CacheTTL, cfg.MaxEventAge, cfg.FetchTimeout)

	srv := httpadapter.NewServer(cfg.HTTPAddr, agg, agg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the snapshot keep-warm loop.
	go func() {
		if err := agg.Run(ctx); err != nil {
			logger.Error("aggregator error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
