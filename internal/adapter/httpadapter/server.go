package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/city-pulse-service/internal/controller"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/render"
)

const (
	defaultWriteTimeout  = 10 * time.Second
	defaultMaxImageBytes = 10 << 20
	maxMultipartMemory   = 1 << 20
)

// Controller is the submission workflow the API drives.
type Controller interface {
	Open() controller.Snapshot
	Cancel(via controller.CancelVia) error
	SetDescription(text string) error
	AttachImage(ctx context.Context, src domain.ImageSource) error
	AcquireLocation(ctx context.Context, src domain.LocationSource) error
	Submit(ctx context.Context) (domain.EventReport, error)
	Snapshot() controller.Snapshot
	Events() []domain.EventReport
}

// Options configures the API handlers.
type Options struct {
	Render          render.Options
	Geocoder        domain.Geocoder // nil disables address lookup
	MaxImageBytes   int64
	ClassifyTimeout time.Duration
}

// Server exposes the report API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	ctl        Controller
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api routes.
func NewServer(addr string, ctl Controller, ready sharedobs.ReadinessChecker, opts Options, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = defaultMaxImageBytes
	}
	// Submit holds the response open for the whole classification round trip.
	writeTimeout := max(defaultWriteTimeout, opts.ClassifyTimeout+5*time.Second)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		ctl:    ctl,
		opts:   opts,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("POST /api/report/open", s.handleOpen)
	mux.HandleFunc("POST /api/report/close", s.handleClose)
	mux.HandleFunc("PUT /api/report/description", s.handleDescription)
	mux.HandleFunc("POST /api/report/image", s.handleImage)
	mux.HandleFunc("POST /api/report/location", s.handleLocation)
	mux.HandleFunc("POST /api/report/submit", s.handleSubmit)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// Readiness combines several checkers; it is ready when all of them are.
type Readiness []sharedobs.ReadinessChecker

// CheckReadiness returns the joined errors of every checker that is not ready.
func (rs Readiness) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, r := range rs {
		if err := r.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
