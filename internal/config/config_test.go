package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DB_DSN", "postgres://localhost:5432/scheduler")
	t.Setenv("JWT_SECRET", "test-secret")
	for _, key := range []string{
		"PROD_ORIGINS", "HTTP_ADDR", "RATE_LIMIT_PER_MINUTE",
		"EXPIRY_SWEEP_INTERVAL", "SHUTDOWN_TIMEOUT", "MIGRATE_ON_START", "SLOTS_ALL_RANGES",
		"DB_MAX_CONNS", "DB_LOG_QUERIES", "JWT_ISSUER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10, cfg.RateLimitPerMinute)
	assert.Equal(t, 5*time.Minute, cfg.ExpirySweepInterval)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.MigrateOnStart)
	assert.False(t, cfg.SlotsAllRanges)
	assert.Zero(t, cfg.DBMaxConns)
	assert.False(t, cfg.DBLogQueries)
	assert.Empty(t, cfg.JWTIssuer)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PROD_ORIGINS", "https://book.example")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("EXPIRY_SWEEP_INTERVAL", "1m")
	t.Setenv("MIGRATE_ON_START", "false")
	t.Setenv("SLOTS_ALL_RANGES", "true")
	t.Setenv("DB_MAX_CONNS", "8")
	t.Setenv("DB_LOG_QUERIES", "1")
	t.Setenv("JWT_ISSUER", "identity.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction)
	assert.Equal(t, "https://book.example", cfg.ProdOrigins)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, time.Minute, cfg.ExpirySweepInterval)
	assert.False(t, cfg.MigrateOnStart)
	assert.True(t, cfg.SlotsAllRanges)
	assert.Equal(t, 8, cfg.DBMaxConns)
	assert.True(t, cfg.DBLogQueries)
	assert.Equal(t, "identity.example", cfg.JWTIssuer)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{name: "missing dsn", key: "DB_DSN", value: "", wantErr: "DB_DSN is required"},
		{name: "missing secret", key: "JWT_SECRET", value: "", wantErr: "JWT_SECRET is required"},
		{name: "bad rate", key: "RATE_LIMIT_PER_MINUTE", value: "ten", wantErr: "RATE_LIMIT_PER_MINUTE"},
		{name: "zero rate", key: "RATE_LIMIT_PER_MINUTE", value: "0", wantErr: "must be positive"},
		{name: "bad duration", key: "EXPIRY_SWEEP_INTERVAL", value: "soon", wantErr: "EXPIRY_SWEEP_INTERVAL"},
		{name: "negative duration", key: "SHUTDOWN_TIMEOUT", value: "-1s", wantErr: "must be positive"},
		{name: "bad pool size", key: "DB_MAX_CONNS", value: "lots", wantErr: "DB_MAX_CONNS"},
		{name: "bad bool", key: "SLOTS_ALL_RANGES", value: "maybe", wantErr: "SLOTS_ALL_RANGES"},
		{name: "prod without origins", key: "APP_ENV", value: "prod", wantErr: "PROD_ORIGINS is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
