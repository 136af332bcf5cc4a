// Package classify turns a free-text report (and optional photo) into a
// title, summary and category using a generative model.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
)

// ErrTransport marks failures to obtain any response from the model.
var ErrTransport = errors.New("classification request failed")

// Generator sends one prompt (plus an optional inline image) to a generative
// model and returns its text response.
type Generator interface {
	Generate(ctx context.Context, prompt string, image *domain.EncodedImage) (string, error)
}

// Classifier is the classification boundary used by the submission
// controller.
type Classifier struct {
	generator Generator
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Classifier backed by generator.
func New(generator Generator, logger *slog.Logger, metrics *observability.Metrics) *Classifier {
	return &Classifier{
		generator: generator,
		logger:    logger,
		metrics:   metrics,
	}
}

// Classify sends the report to the model and parses the reply. Errors wrap
// either ErrTransport or ErrInvalidFormat.
func (c *Classifier) Classify(ctx context.Context, description string, image *domain.EncodedImage) (domain.Classification, error) {
	start := time.Now()
	text, err := c.generator.Generate(ctx, BuildPrompt(description), image)
	c.metrics.ClassifyDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ClassifyRequests.WithLabelValues("transport_error").Inc()
		return domain.Classification{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	result, err := ParseResponse(text)
	if err != nil {
		c.metrics.ClassifyRequests.WithLabelValues("format_error").Inc()
		c.logger.Warn("unparseable classification response", "error", err)
		return domain.Classification{}, err
	}

	c.metrics.ClassifyRequests.WithLabelValues("success").Inc()
	c.logger.Debug("report classified",
		"title", result.Title,
		"category", result.Category,
		"has_image", image != nil,
	)
	return result, nil
}

// User-facing failure messages.
const (
	MessageInvalidFormat = "AI returned an invalid format."
	MessageUnreachable   = "Could not reach the AI service. Please try again."
	MessageTimeout       = "The AI service took too long to respond. Please try again."
	MessageUnknown       = "An unknown error occurred."
)

// UserMessage maps a Classify error to a short notification text.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return MessageTimeout
	case errors.Is(err, ErrInvalidFormat):
		return MessageInvalidFormat
	case errors.Is(err, ErrTransport):
		return MessageUnreachable
	default:
		return MessageUnknown
	}
}
