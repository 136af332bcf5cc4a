// citypulse-tui is a terminal front end for City Pulse. It runs the same
// submission controller as the HTTP service against an in-memory store and
// draws the feed, a marker map, and the report form in the terminal.
//
// Configuration comes from the same environment variables as the service
// (GEMINI_API_KEY, MAPBOX_TOKEN, DISPLAY_TIMEZONE, ...). Flags override the
// few settings that matter interactively.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/couchcryptid/city-pulse-service/internal/adapter/gemini"
	"github.com/couchcryptid/city-pulse-service/internal/adapter/mapbox"
	"github.com/couchcryptid/city-pulse-service/internal/classify"
	"github.com/couchcryptid/city-pulse-service/internal/config"
	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
	"github.com/couchcryptid/city-pulse-service/internal/render"
	"github.com/couchcryptid/city-pulse-service/internal/store"
	"github.com/couchcryptid/city-pulse-service/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var noSamples bool
	var logFile string
	var model string

	flagSet := pflag.NewFlagSet("citypulse-tui", pflag.ContinueOnError)
	flagSet.BoolVar(&noSamples, "no-samples", false, "start with an empty feed instead of the sample events")
	flagSet.StringVar(&logFile, "log-file", "", "write JSON log records to this file")
	flagSet.StringVar(&model, "model", "", "Gemini model to classify with (default: GEMINI_MODEL)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if model != "" {
		cfg.GeminiModel = model
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logOutput io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	logger := observability.NewLoggerTo(logOutput, cfg.LogLevel, "json")
	metrics := observability.NewMetrics()

	events := store.New()
	if cfg.SeedSampleData && !noSamples {
		if err := events.Seed(domain.SampleEvents(time.Now())); err != nil {
			return fmt.Errorf("seed sample events: %w", err)
		}
	}

	classifier := classify.New(gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, logger), logger, metrics)

	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapBounds, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
	}

	ctl := controller.New(events, classifier,
		controller.WithLogger(logger),
		controller.WithMetrics(metrics),
		controller.WithToastDuration(cfg.ToastDuration),
		controller.WithClassifyTimeout(cfg.ClassifyTimeout),
	)

	ui := tui.NewModel(ctl, tui.Options{
		Render:   render.Options{Bounds: cfg.MapBounds, Location: cfg.DisplayTimezone},
		Geocoder: geocoder,
		Logger:   logger,
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `City Pulse terminal UI: browse synthesized city events and report new ones.

Reports are classified by Gemini (GEMINI_API_KEY is required). Enter a
location as "lat,lng" or, when MAPBOX_TOKEN is set, as an address.

Usage:
  citypulse-tui [flags]

Flags:
%s`, flagSet.FlagUsages())
}
