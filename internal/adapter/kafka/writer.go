package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/city-pulse-service/internal/config"
	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// Writer produces report messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes reports in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.EventReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write report messages: %w", err)
	}
	w.logger.Debug("report batch published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// reportMessage is the feed payload. Image bytes stay out of the feed.
type reportMessage struct {
	ID              string                `json:"id"`
	UserDescription string                `json:"userDescription"`
	Location        domain.GeoLocation    `json:"location"`
	Timestamp       time.Time             `json:"timestamp"`
	AI              domain.Classification `json:"ai"`
	HasImage        bool                  `json:"hasImage"`
	ImageMIMEType   string                `json:"imageMimeType,omitempty"`
}

// serializeToMessage marshals an EventReport into a Kafka message keyed by
// report id.
func serializeToMessage(report domain.EventReport) (kafkago.Message, error) {
	payload := reportMessage{
		ID:              report.ID,
		UserDescription: report.UserDescription,
		Location:        report.Location,
		Timestamp:       report.Timestamp,
		AI:              report.AI,
		HasImage:        report.UserImage != nil,
	}
	if report.UserImage != nil {
		payload.ImageMIMEType = report.UserImage.MIMEType
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize event report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(report.AI.Category)},
			{Key: "reported_at", Value: []byte(report.Timestamp.Format(time.RFC3339))},
			{Key: "has_image", Value: []byte(strconv.FormatBool(payload.HasImage))},
		},
	}, nil
}
