// Package controller owns the single report draft and drives it through the
// submission workflow: Idle, Composing, Submitting.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/city-pulse-service/internal/classify"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
	"github.com/couchcryptid/city-pulse-service/internal/store"
)

var (
	// ErrValidation is returned when a submit is attempted without a
	// description or location.
	ErrValidation = errors.New("description and location are required")
	// ErrSubmitting is returned for operations refused while a submission is
	// in flight.
	ErrSubmitting = errors.New("a submission is in progress")
	// ErrNotComposing is returned for draft operations while the modal is closed.
	ErrNotComposing = errors.New("no report is being composed")
	// ErrLocationPending is returned when a location lookup is already running.
	ErrLocationPending = errors.New("location lookup already in progress")
	// ErrAbandoned is returned when the draft was cancelled or replaced
	// while an operation ran. Its result was discarded.
	ErrAbandoned = errors.New("draft was abandoned")
	// ErrSuperseded is returned when a newer image selection replaced the one
	// being encoded.
	ErrSuperseded = errors.New("image selection superseded")
	// ErrClassification wraps every failure of the classification boundary.
	ErrClassification = errors.New("classification failed")
	// ErrCapability wraps location and image source failures.
	ErrCapability = errors.New("capability failed")
)

const (
	defaultToastDuration   = 3 * time.Second
	defaultClassifyTimeout = 30 * time.Second
)

// Classifier turns a description and optional image into a classification.
type Classifier interface {
	Classify(ctx context.Context, description string, image *domain.EncodedImage) (domain.Classification, error)
}

// Publisher receives every report added to the store. Publish must not block.
type Publisher interface {
	Publish(report domain.EventReport)
}

// kinded sources label their metrics.
type kinded interface {
	Kind() string
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock used for toast expiry.
func WithClock(c clockwork.Clock) Option { return func(ctl *Controller) { ctl.clock = c } }

// WithToastDuration sets how long notifications stay visible.
func WithToastDuration(d time.Duration) Option {
	return func(ctl *Controller) { ctl.toastDuration = d }
}

// WithClassifyTimeout bounds each classification round trip.
func WithClassifyTimeout(d time.Duration) Option {
	return func(ctl *Controller) { ctl.classifyTimeout = d }
}

// WithPublisher forwards stored reports to p.
func WithPublisher(p Publisher) Option { return func(ctl *Controller) { ctl.publisher = p } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(ctl *Controller) { ctl.logger = l } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option { return func(ctl *Controller) { ctl.metrics = m } }

// Controller is the sole writer of the event store and the owner of the
// draft and UI state. All methods are safe for concurrent use; the lock is
// released while a capability or the classifier runs.
type Controller struct {
	events     *store.EventStore
	classifier Classifier
	publisher  Publisher

	clock           clockwork.Clock
	toastDuration   time.Duration
	classifyTimeout time.Duration
	logger          *slog.Logger
	metrics         *observability.Metrics

	mu         sync.Mutex
	state      State
	outcome    Outcome
	generation uint64 // bumped whenever the draft is reset
	imageSeq   uint64 // bumped on every image selection
	draft      Draft
	errMsg     string
	location   LocationStatus
	image      ImageState
	toast      *Toast
}

// New creates a controller over events.
func New(events *store.EventStore, classifier Classifier, opts ...Option) *Controller {
	c := &Controller{
		events:          events,
		classifier:      classifier,
		clock:           clockwork.NewRealClock(),
		toastDuration:   defaultToastDuration,
		classifyTimeout: defaultClassifyTimeout,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:         observability.NewMetricsForTesting(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.resetDraft()
	c.metrics.StoreSize.Set(float64(events.Len()))
	return c
}

// Open starts composing a fresh draft. It is a no-op while a draft is open.
func (c *Controller) Open() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		c.resetDraft()
		c.state = Composing
		c.outcome = OutcomeNone
		c.logger.Debug("report modal opened")
	}
	return c.snapshot()
}

// Cancel discards the draft and closes the modal. A backdrop click while
// submitting is refused; the close button abandons the in-flight submission.
func (c *Controller) Cancel(via CancelVia) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		return ErrNotComposing
	case Submitting:
		if via == Backdrop {
			return ErrSubmitting
		}
		c.logger.Info("in-flight submission abandoned")
	}
	c.resetDraft()
	c.state = Idle
	return nil
}

// SetDescription replaces the draft description.
func (c *Controller) SetDescription(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editable(); err != nil {
		return err
	}
	c.draft.Description = text
	return nil
}

// AttachImage encodes an image into the draft. When several selections
// overlap, only the most recent is kept. A failure leaves any previous image
// in place.
func (c *Controller) AttachImage(ctx context.Context, src domain.ImageSource) error {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.imageSeq++
	gen, seq := c.generation, c.imageSeq
	c.image = ImagePending
	c.mu.Unlock()

	img, err := src.Encode(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return ErrAbandoned
	}
	if seq != c.imageSeq {
		return ErrSuperseded
	}
	if err != nil {
		c.metrics.ImageAttachments.WithLabelValues("error").Inc()
		c.image = ImageFailed
		if c.draft.Image != nil {
			c.image = ImageAttached
		}
		c.raise(MessageImageFailed, ToastError)
		c.logger.Warn("image attachment failed", "error", err)
		return fmt.Errorf("%w: encode image: %w", ErrCapability, err)
	}
	c.metrics.ImageAttachments.WithLabelValues("success").Inc()
	c.draft.Image = &img
	c.image = ImageAttached
	c.logger.Debug("image attached", "mime_type", img.MIMEType, "encoded_bytes", len(img.Base64))
	return nil
}

// AcquireLocation runs a single location lookup for the draft. On failure
// the draft keeps whatever location it had before.
func (c *Controller) AcquireLocation(ctx context.Context, src domain.LocationSource) error {
	c.mu.Lock()
	if err := c.editable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.location.State == LocationPending {
		c.mu.Unlock()
		return ErrLocationPending
	}
	gen := c.generation
	c.location = LocationStatus{State: LocationPending, Text: locationPendingText}
	c.mu.Unlock()

	loc, err := src.Locate(ctx)
	if err == nil && !loc.Valid() {
		err = errors.New("location is not finite")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return ErrAbandoned
	}
	kind := "unknown"
	if k, ok := src.(kinded); ok {
		kind = k.Kind()
	}
	if err != nil {
		c.metrics.LocationLookups.WithLabelValues(kind, "error").Inc()
		c.location = LocationStatus{State: LocationFailed, Text: locationFailedText}
		c.raise(MessageLocationFailed, ToastError)
		c.logger.Warn("location lookup failed", "source", kind, "error", err)
		return fmt.Errorf("%w: locate: %w", ErrCapability, err)
	}
	c.metrics.LocationLookups.WithLabelValues(kind, "success").Inc()
	c.draft.Location = &loc
	c.location = LocationStatus{
		State: LocationCaptured,
		Text:  fmt.Sprintf("Location captured: %.4f, %.4f", loc.Lat, loc.Lng),
	}
	return nil
}

// Submit classifies the draft and, on success, prepends the resulting report
// to the store and closes the modal. On classification failure the draft is
// kept so the user can retry.
func (c *Controller) Submit(ctx context.Context) (domain.EventReport, error) {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.mu.Unlock()
		return domain.EventReport{}, ErrNotComposing
	case Submitting:
		c.mu.Unlock()
		return domain.EventReport{}, ErrSubmitting
	}

	description := strings.TrimSpace(c.draft.Description)
	if description == "" || c.draft.Location == nil {
		c.errMsg = MessageValidation
		c.raise(MessageValidation, ToastError)
		c.metrics.Submissions.WithLabelValues("validation").Inc()
		c.mu.Unlock()
		return domain.EventReport{}, ErrValidation
	}

	c.state = Submitting
	gen := c.generation
	draft := c.draft.clone()
	c.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, c.classifyTimeout)
	ai, err := c.classifier.Classify(cctx, description, draft.Image)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.metrics.Submissions.WithLabelValues("abandoned").Inc()
		c.logger.Info("discarded classification for abandoned draft", "error", err)
		return domain.EventReport{}, ErrAbandoned
	}
	if err != nil {
		return domain.EventReport{}, c.fail(classify.UserMessage(err), "classification", err)
	}

	report := domain.NewEventReport(description, draft.Image, *draft.Location, ai)
	if err := c.events.Prepend(report); err != nil {
		return domain.EventReport{}, c.fail(classify.MessageUnknown, "rejected", err)
	}
	c.metrics.Submissions.WithLabelValues("success").Inc()
	c.metrics.StoreSize.Set(float64(c.events.Len()))
	if c.publisher != nil {
		c.publisher.Publish(report)
	}

	c.resetDraft()
	c.state = Idle
	c.outcome = OutcomeSucceeded
	c.raise(messageSubmitted+report.AI.Title, ToastSuccess)
	c.logger.Info("report submitted",
		"report_id", report.ID,
		"category", string(report.AI.Category),
		"has_image", report.UserImage != nil,
	)
	return report, nil
}

// fail returns a submission to Composing. Callers hold the lock.
func (c *Controller) fail(message, reason string, err error) error {
	outcome := reason
	switch {
	case errors.Is(err, classify.ErrInvalidFormat):
		outcome = "format_error"
	case errors.Is(err, classify.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		outcome = "transport_error"
	}
	c.metrics.Submissions.WithLabelValues(outcome).Inc()
	c.state = Composing
	c.outcome = OutcomeFailed
	c.errMsg = message
	c.raise(message, ToastError)
	c.logger.Warn("report submission failed", "outcome", outcome, "error", err)
	return fmt.Errorf("%w: %w", ErrClassification, err)
}

// Snapshot copies the current state. An expired toast is omitted.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Events returns the store contents, newest first.
func (c *Controller) Events() []domain.EventReport {
	return c.events.List()
}

// IsEmpty reports whether the store holds no reports.
func (c *Controller) IsEmpty() bool {
	return c.events.IsEmpty()
}

// CheckReadiness reports whether the controller has a store to write to.
func (c *Controller) CheckReadiness(_ context.Context) error {
	if c.events == nil {
		return errors.New("event store not initialized")
	}
	return nil
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:       c.state,
		LastOutcome: c.outcome,
		Draft:       c.draft.clone(),
		ModalOpen:   c.state != Idle,
		Submitting:  c.state == Submitting,
		Error:       c.errMsg,
		Location:    c.location,
		Image:       c.image,
	}
	if c.toast != nil && c.clock.Now().Before(c.toast.ExpiresAt) {
		t := *c.toast
		s.Toast = &t
	}
	return s
}

func (c *Controller) editable() error {
	switch c.state {
	case Idle:
		return ErrNotComposing
	case Submitting:
		return ErrSubmitting
	}
	return nil
}

func (c *Controller) raise(message string, kind ToastKind) {
	c.toast = &Toast{
		Message:   message,
		Kind:      kind,
		ExpiresAt: c.clock.Now().Add(c.toastDuration),
	}
}

func (c *Controller) resetDraft() {
	c.generation++
	c.draft = Draft{}
	c.errMsg = ""
	c.location = LocationStatus{State: LocationIdle, Text: locationIdleText}
	c.image = ImageNone
}
