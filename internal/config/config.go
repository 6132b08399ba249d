package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Pipeline cache and filtering policy.
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	MaxEventAge  time.Duration `env:"MAX_EVENT_AGE" envDefault:"24h"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`

	// Seismic feed (USGS-style GeoJSON summary).
	SeismicBaseURL string `env:"SEISMIC_BASE_URL" envDefault:"https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"`
	SeismicPeriod  string `env:"SEISMIC_PERIOD" envDefault:"4.5_day"`

	// Sentiment-scored news index (GDELT-style doc API).
	SentimentBaseURL    string `env:"SENTIMENT_BASE_URL" envDefault:"https://api.gdeltproject.org/api/v2/doc/doc"`
	SentimentQuery      string `env:"SENTIMENT_QUERY" envDefault:"(tone<-7 OR tone>7) sourcelang:english"`
	SentimentMaxRecords int    `env:"SENTIMENT_MAX_RECORDS" envDefault:"75"`
	SentimentTimespan   string `env:"SENTIMENT_TIMESPAN" envDefault:"1d"`

	// Syndicated feeds are a fixed registry; only the per-proxy attempt
	// timeout is tunable.
	ProxyTimeout time.Duration `env:"PROXY_TIMEOUT" envDefault:"10s"`

	// Optional Kafka firehose publishing each refresh cycle's merged events.
	KafkaEnabled   bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers   []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaSinkTopic string   `env:"KAFKA_SINK_TOPIC" envDefault:"merged-events"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file is honored when present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.CacheTTL <= 0 {
		return nil, errors.New("CACHE_TTL must be positive")
	}
	if cfg.MaxEventAge <= 0 {
		return nil, errors.New("MAX_EVENT_AGE must be positive")
	}
	if cfg.FetchTimeout <= 0 {
		return nil, errors.New("FETCH_TIMEOUT must be positive")
	}
	if cfg.ProxyTimeout <= 0 {
		return nil, errors.New("PROXY_TIMEOUT must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.SentimentMaxRecords <= 0 || cfg.SentimentMaxRecords > 250 {
		return nil, errors.New("SENTIMENT_MAX_RECORDS must be between 1 and 250")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	return cfg, nil
}
