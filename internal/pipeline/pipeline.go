// Package pipeline forwards stored reports to an outbound feed in batches.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
	"github.com/couchcryptid/city-pulse-service/internal/observability"
)

const (
	initialBackoff    = 200 * time.Millisecond
	maxBackoff        = 5 * time.Second
	finalFlushTimeout = 2 * time.Second
	queueBatches      = 8 // queue capacity in batches
)

// BatchLoader writes multiple reports to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, reports []domain.EventReport) error
}

// Publisher queues reports and hands them to a BatchLoader from a single
// goroutine started with Run.
type Publisher struct {
	loader        BatchLoader
	logger        *slog.Logger
	metrics       *observability.Metrics
	queue         chan domain.EventReport
	batchSize     int
	flushInterval time.Duration
	running       atomic.Bool
}

// New creates a Publisher. A batch is written when it holds batchSize reports
// or flushInterval has passed since the last write.
func New(l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int, flushInterval time.Duration) *Publisher {
	return &Publisher{
		loader:        l,
		logger:        logger,
		metrics:       metrics,
		queue:         make(chan domain.EventReport, batchSize*queueBatches),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

// Publish enqueues a report without blocking. When the queue is full the
// report is dropped from the feed; it remains in the event store.
func (p *Publisher) Publish(report domain.EventReport) {
	select {
	case p.queue <- report.Clone():
	default:
		p.metrics.PublishDropped.Inc()
		p.logger.Warn("report feed queue full, dropping report", "report_id", report.ID)
	}
}

// CheckReadiness returns nil while Run is active.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("report publisher is not running")
	}
	return nil
}

// Run drains the queue until the context is cancelled, then makes one
// bounded attempt to write whatever is still pending.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("publisher started", "batch_size", p.batchSize, "flush_interval", p.flushInterval)
	p.running.Store(true)
	p.metrics.PublisherRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.EventReport, 0, p.batchSize)
	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("publisher stopping", "reason", ctx.Err())
			p.finalFlush(ctx, p.drain(batch))
			return nil
		case r := <-p.queue:
			batch = append(batch, r)
			if len(batch) < p.batchSize {
				continue
			}
		case <-ticker.C:
			if len(batch) == 0 {
				continue
			}
		}

		if !p.flush(ctx, batch, &backoff) {
			p.finalFlush(ctx, p.drain(batch))
			return nil
		}
		batch = make([]domain.EventReport, 0, p.batchSize)
	}
}

// flush writes the batch, retrying with exponential backoff. Returns false if
// the context ended first.
func (p *Publisher) flush(ctx context.Context, batch []domain.EventReport, backoff *time.Duration) bool {
	for {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.ReportsPublished.Add(float64(len(batch)))
			*backoff = initialBackoff
			return true
		}
		p.metrics.PublishErrors.Inc()
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(batch))
		if !p.backoffOrStop(ctx, backoff) {
			return false
		}
	}
}

// drain appends every report still queued to batch.
func (p *Publisher) drain(batch []domain.EventReport) []domain.EventReport {
	for {
		select {
		case r := <-p.queue:
			batch = append(batch, r)
		default:
			return batch
		}
	}
}

func (p *Publisher) finalFlush(ctx context.Context, batch []domain.EventReport) {
	if len(batch) == 0 {
		return
	}
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
	defer cancel()
	if err := p.loader.LoadBatch(fctx, batch); err != nil {
		p.metrics.PublishErrors.Inc()
		p.metrics.PublishDropped.Add(float64(len(batch)))
		p.logger.Error("final publish failed, reports dropped from feed", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.ReportsPublished.Add(float64(len(batch)))
}

// backoffOrStop sleeps with the current backoff and advances it. Returns
// false if the context ended first.
func (p *Publisher) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
