package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_BACKEND", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.RequireAgeConfirmation)
	assert.Equal(t, cfg.S3Endpoint, cfg.S3PublicEndpoint)
	assert.Zero(t, cfg.CatalogRefreshInterval)
	assert.Equal(t, ProofStorageMemory, cfg.ProofStorage)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATA_BACKEND", "Postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/app")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHANNEL_ID", "-1001234")
	t.Setenv("CATALOG_REFRESH_INTERVAL", "5m")
	t.Setenv("REQUIRE_AGE_CONFIRMATION", "off")
	t.Setenv("ADMIN_IDS", "844012884, 7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.DataBackend)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, int64(-1001234), cfg.TelegramChannelID)
	assert.Equal(t, 5*time.Minute, cfg.CatalogRefreshInterval)
	assert.False(t, cfg.RequireAgeConfirmation)
	assert.Equal(t, []int64{844012884, 7}, cfg.AdminIDs)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"duration":        {"IDEMP_TTL": "soon"},
		"backoff":         {"RETRY_BACKOFF": "1s,x"},
		"bool":            {"S3_USE_SSL": "maybe"},
		"backend":         {"DATA_BACKEND": "sqlite"},
		"proof storage":   {"PROOF_STORAGE": "ftp"},
		"admin ids":       {"ADMIN_IDS": "1,me"},
		"missing dsn":     {"DATA_BACKEND": "postgres", "POSTGRES_DSN": ""},
		"missing channel": {"TELEGRAM_BOT_TOKEN": "t", "TELEGRAM_CHANNEL_ID": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestProduction(t *testing.T) {
	assert.False(t, Config{Env: "dev"}.Production())
	assert.True(t, Config{Env: "prod"}.Production())
}
