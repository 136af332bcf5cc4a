package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/adapter/gemini"
	"github.com/couchcryptid/city-pulse-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/city-pulse-service/internal/adapter/kafka"
	"github.com/couchcryptid/city-pulse-service/internal/adapter/mapbox"
	"github.com/couchcryptid/city-pulse-service/internal/classify"
	"github.com/couchcryptid/city-pulse-service/internal/config"
	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
	"github.com/couchcryptid/city-pulse-service/internal/pipeline"
	"github.com/couchcryptid/city-pulse-service/internal/render"
	"github.com/couchcryptid/city-pulse-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	events := store.New()
	if cfg.SeedSampleData {
		if err := events.Seed(domain.SampleEvents(time.Now())); err != nil {
			logger.Error("failed to seed sample events", "error", err)
			os.Exit(1)
		}
		logger.Info("seeded sample events", "count", events.Len())
	}

	classifier := classify.New(gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, logger), logger, metrics)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapBounds, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []controller.Option{
		controller.WithLogger(logger),
		controller.WithMetrics(metrics),
		controller.WithToastDuration(cfg.ToastDuration),
		controller.WithClassifyTimeout(cfg.ClassifyTimeout),
	}
	readiness := httpadapter.Readiness{}

	// Report feed (feature-flagged via KAFKA_ENABLED).
	var writer *kafkaadapter.Writer
	publisherDone := make(chan struct{})
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher := pipeline.New(writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		opts = append(opts, controller.WithPublisher(publisher))
		readiness = append(readiness, publisher)

		go func() {
			defer close(publisherDone)
			if err := publisher.Run(ctx); err != nil {
				logger.Error("report publisher error", "error", err)
			}
		}()
		logger.Info("report feed enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		close(publisherDone)
		logger.Info("report feed disabled")
	}

	ctl := controller.New(events, classifier, opts...)
	readiness = append(readiness, ctl)

	srv := httpadapter.NewServer(cfg.HTTPAddr, ctl, readiness, httpadapter.Options{
		Render:          render.Options{Bounds: cfg.MapBounds, Location: cfg.DisplayTimezone},
		Geocoder:        geocoder,
		MaxImageBytes:   cfg.MaxImageBytes,
		ClassifyTimeout: cfg.ClassifyTimeout,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("city pulse started", "addr", cfg.HTTPAddr, "model", cfg.GeminiModel)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-publisherDone:
	case <-shutdownCtx.Done():
		logger.Warn("report publisher did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
