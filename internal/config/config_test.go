package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, DriverSQL, cfg.DBDriver)
	assert.Equal(t, "USD", cfg.BookingCurrency)
	assert.Equal(t, 30, cfg.BookingMinDuration)
	assert.Equal(t, 720, cfg.BookingMaxDuration)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Equal(t, 30*time.Second, cfg.StudioCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "Mongo")
	t.Setenv("BOOKING_CURRENCY", "eur")
	t.Setenv("BOOKING_MAX_DURATION_MIN", "240")
	t.Setenv("LOCK_TTL", "3s")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMongo, cfg.DBDriver)
	assert.Equal(t, "EUR", cfg.BookingCurrency)
	assert.Equal(t, 240, cfg.BookingMaxDuration)
	assert.Equal(t, 3*time.Second, cfg.LockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":        {"DB_DRIVER": "cassandra"},
		"min above max":         {"BOOKING_MIN_DURATION_MIN": "800"},
		"bad currency":          {"BOOKING_CURRENCY": "DOLLARS"},
		"zero lock ttl":         {"LOCK_TTL": "0s"},
		"prod default secret":   {"APP_ENV": "production"},
		"non-positive rate":     {"RATE_LIMIT_PER_SEC": "0"},
		"unparseable durations": {"JWT_TTL": "soon"},
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

func TestLoad_ProductionWithSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "a-real-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
