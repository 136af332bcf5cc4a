package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve on hosts without a zoneinfo database

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// ErrMissingAPIKey is returned when no classification credential is set. The
// process must not start without one.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY (or API_KEY) is required")

// Config holds all service settings, populated from environment variables.
type Config struct {
	GeminiAPIKey    string
	GeminiModel     string
	GeminiBaseURL   string
	ClassifyTimeout time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	MapBounds       domain.Bounds
	SeedSampleData  bool
	DisplayTimezone *time.Location
	ToastDuration   time.Duration
	MaxImageBytes   int64

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Report feed configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaTopic         string
	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	classifyTimeout, err := parsePositiveDuration("CLASSIFY_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	toastDuration, err := parsePositiveDuration("TOAST_DURATION", "3s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	bounds := domain.BengaluruBounds
	if s := os.Getenv("MAP_BOUNDS"); s != "" {
		if bounds, err = domain.ParseBounds(s); err != nil {
			return nil, fmt.Errorf("invalid MAP_BOUNDS: %w", err)
		}
	}

	tz, err := time.LoadLocation(sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "Asia/Kolkata"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
	}

	maxImageBytes, err := strconv.ParseInt(sharedcfg.EnvOrDefault("MAX_IMAGE_BYTES", "10485760"), 10, 64)
	if err != nil || maxImageBytes <= 0 {
		return nil, errors.New("invalid MAX_IMAGE_BYTES")
	}

	seed, err := parseBool("SEED_SAMPLE_DATA", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		GeminiAPIKey:    apiKey,
		GeminiModel:     sharedcfg.EnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:   sharedcfg.EnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		ClassifyTimeout: classifyTimeout,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		MapBounds:       bounds,
		SeedSampleData:  seed,
		DisplayTimezone: tz,
		ToastDuration:   toastDuration,
		MaxImageBytes:   maxImageBytes,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:         sharedcfg.EnvOrDefault("KAFKA_TOPIC", "city-pulse-reports"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.GeminiModel == "" {
		return nil, errors.New("GEMINI_MODEL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
