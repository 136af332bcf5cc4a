package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

const (
	defaultBroker   = "localhost:9092"
	testAPIKey      = "test-gemini-key"
	testMapboxToken = "pk.test-token"
)

// withKey sets the one required variable so other settings can be tested.
func withKey(t *testing.T) {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", testAPIKey)
}

func TestLoad_Defaults(t *testing.T) {
	withKey(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testAPIKey, cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "https://generativelanguage.googleapis.com", cfg.GeminiBaseURL)
	assert.Equal(t, 30*time.Second, cfg.ClassifyTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, domain.BengaluruBounds, cfg.MapBounds)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, "Asia/Kolkata", cfg.DisplayTimezone.String())
	assert.Equal(t, 3*time.Second, cfg.ToastDuration)
	assert.Equal(t, int64(10<<20), cfg.MaxImageBytes)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "city-pulse-reports", cfg.KafkaTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	withKey(t)
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("GEMINI_BASE_URL", "http://localhost:9999")
	t.Setenv("CLASSIFY_TIMEOUT", "5s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MAP_BOUNDS", "12.9,13.0,77.5,77.7")
	t.Setenv("SEED_SAMPLE_DATA", "false")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("TOAST_DURATION", "5s")
	t.Setenv("MAX_IMAGE_BYTES", "1024")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-reports")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	assert.Equal(t, "http://localhost:9999", cfg.GeminiBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ClassifyTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, domain.Bounds{LatMin: 12.9, LatMax: 13.0, LngMin: 77.5, LngMax: 77.7}, cfg.MapBounds)
	assert.False(t, cfg.SeedSampleData)
	assert.Equal(t, time.UTC, cfg.DisplayTimezone)
	assert.Equal(t, 5*time.Second, cfg.ToastDuration)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	_, err := Load()
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_APIKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", cfg.GeminiAPIKey)
}

func TestLoad_InvalidSettings(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration", "SHUTDOWN_TIMEOUT"},
		{"SHUTDOWN_TIMEOUT", "-1s", "SHUTDOWN_TIMEOUT"},
		{"CLASSIFY_TIMEOUT", "0s", "CLASSIFY_TIMEOUT"},
		{"TOAST_DURATION", "soon", "TOAST_DURATION"},
		{"BATCH_SIZE", "0", "BATCH_SIZE"},
		{"BATCH_SIZE", "9999", "BATCH_SIZE"},
		{"BATCH_FLUSH_INTERVAL", "not-a-duration", "BATCH_FLUSH_INTERVAL"},
		{"MAPBOX_TIMEOUT", "bad", "MAPBOX_TIMEOUT"},
		{"MAP_BOUNDS", "13.15,12.82,77.45,77.78", "MAP_BOUNDS"},
		{"MAP_BOUNDS", "1,2,3", "MAP_BOUNDS"},
		{"DISPLAY_TIMEZONE", "Mars/Olympus_Mons", "DISPLAY_TIMEZONE"},
		{"MAX_IMAGE_BYTES", "-5", "MAX_IMAGE_BYTES"},
		{"SEED_SAMPLE_DATA", "maybe", "SEED_SAMPLE_DATA"},
		{"KAFKA_ENABLED", "yes please", "KAFKA_ENABLED"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			withKey(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MapboxEnabledWithoutToken(t *testing.T) {
	withKey(t)
	t.Setenv("MAPBOX_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	withKey(t)
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	withKey(t)
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
