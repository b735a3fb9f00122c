package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8082", cfg.HTTPAddr)
	require.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, BackendPostgres, cfg.Backend)
	require.Equal(t, []string{"localhost:9094"}, cfg.KafkaBrokers)
	require.Equal(t, SinkNone, cfg.EventSink)
	require.True(t, cfg.Ingest)
	require.False(t, cfg.NeedsAWS())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "dynamodb")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EVENT_SINK", "sqs")
	t.Setenv("EVENTS_QUEUE_URL", "http://localhost:4566/000000000000/events")
	t.Setenv("SHUTDOWN_TIMEOUT", "250ms")
	t.Setenv("INGEST_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 250*time.Millisecond, cfg.ShutdownTimeout)
	require.False(t, cfg.Ingest)
	require.True(t, cfg.NeedsAWS())
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	_, err := Load()
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "parse env:"), err.Error())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Backend:      BackendPostgres,
			DBDSN:        "postgres://x",
			EventSink:    SinkNone,
			MetricsSink:  SinkNone,
			KafkaBrokers: []string{"k:9092"},
			EventsTopic:  "events",
		}
	}
	require.NoError(t, base().Validate())

	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"unknown backend": {func(c *Config) { c.Backend = "mysql" }, "STORE_BACKEND"},
		"missing dsn":     {func(c *Config) { c.DBDSN = "" }, "DB_DSN"},
		"unknown sink":    {func(c *Config) { c.EventSink = "nats" }, "EVENT_SINK"},
		"sqs without url": {func(c *Config) { c.EventSink = SinkSQS }, "EVENTS_QUEUE_URL"},
		"bad metrics":     {func(c *Config) { c.MetricsSink = "statsd" }, "METRICS_SINK"},
		"ingest no kafka": {func(c *Config) { c.Ingest = true; c.KafkaBrokers = nil }, "INGEST_ENABLED"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
