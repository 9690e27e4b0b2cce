package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "APP_ENV", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "DEFAULT_EDGE_LATENCY_MS",
		"LATENCY_ENTRY_NODE", "MAX_VISITS_PER_NODE", "TRAFFIC_TIMEOUT_MS", "TRAFFIC_RETRY_RATE",
		"TRAFFIC_FAILURE_RATE", "GROQ_API_KEY", "ENABLE_AI", "AI_BASE_URL", "AI_MODEL",
		"AI_TIMEOUT_MS", "AI_TEMPERATURE", "AI_MAX_TOKENS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
		"METRICS_ENABLED",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("SQLITE_DB_PATH", "")
	os.Unsetenv("SQLITE_DB_PATH")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENABLE_AI", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")
	t.Setenv("TRAFFIC_TIMEOUT_MS", "500")
	t.Setenv("SQLITE_DB_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Advisor.Enabled)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 500.0, cfg.Traffic.TimeoutMs)
	assert.Empty(t, cfg.SQLite.DBPath)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TRAFFIC_RETRY_RATE", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 1.0, cfg.Traffic.RetryRate)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Traffic.FailureRate = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Traffic.MaxVisitsPerNode = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Traffic.MaxVisitsPerNode = MaxVisitsPerNodeLimit + 1
	assert.Error(t, cfg.Validate())
}
