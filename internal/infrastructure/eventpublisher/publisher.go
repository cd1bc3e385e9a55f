package eventpublisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/walletfy/internal/domain"
)

// EventPublisher forwards committed ledger changes to a Publisher from a
// background worker. Notify never blocks the store: when the queue is full
// the change is dropped and counted.
type EventPublisher struct {
	queue     chan domain.LedgerChange
	publisher Publisher
	stats     Stats
	logger    zerolog.Logger
	batchSize int
	interval  time.Duration
}

// Publisher defines the interface for publishing changes to external systems.
type Publisher interface {
	Publish(ctx context.Context, change domain.LedgerChange) error
}

// Stats receives publishing outcomes.
type Stats interface {
	ChangePublished(err error)
	ChangeDropped()
}

// Config for EventPublisher.
type Config struct {
	Publisher Publisher
	Stats     Stats
	Logger    zerolog.Logger
	QueueSize int           // Buffered changes before Notify starts dropping
	BatchSize int           // Changes flushed at once
	Interval  time.Duration // Flush interval for partial batches
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1024
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}
	if cfg.Stats == nil {
		cfg.Stats = nopStats{}
	}

	return &EventPublisher{
		queue:     make(chan domain.LedgerChange, cfg.QueueSize),
		publisher: cfg.Publisher,
		stats:     cfg.Stats,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
		interval:  cfg.Interval,
	}
}

// Notify enqueues a change. It implements usecase.ChangeNotifier.
func (ep *EventPublisher) Notify(_ context.Context, change domain.LedgerChange) {
	select {
	case ep.queue <- change:
	default:
		ep.stats.ChangeDropped()
		ep.logger.Warn().
			Str("kind", string(change.Kind)).
			Str("event_id", change.EventID).
			Msg("change queue full, dropping notification")
	}
}

// Start begins the publishing worker. It runs until the context is
// cancelled, then flushes whatever is still queued.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	batch := make([]domain.LedgerChange, 0, ep.batchSize)

	for {
		select {
		case <-ctx.Done():
			batch = ep.drain(batch)
			ep.flush(context.WithoutCancel(ctx), batch)
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case change := <-ep.queue:
			batch = append(batch, change)
			if len(batch) >= ep.batchSize {
				ep.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			ep.flush(ctx, batch)
			batch = batch[:0]
		}
	}
}

func (ep *EventPublisher) drain(batch []domain.LedgerChange) []domain.LedgerChange {
	for {
		select {
		case change := <-ep.queue:
			batch = append(batch, change)
		default:
			return batch
		}
	}
}

// flush publishes a batch. A failed change is logged and skipped.
func (ep *EventPublisher) flush(ctx context.Context, batch []domain.LedgerChange) {
	if len(batch) == 0 {
		return
	}

	ep.logger.Debug().Int("count", len(batch)).Msg("publishing changes")

	for _, change := range batch {
		err := ep.publisher.Publish(ctx, change)
		ep.stats.ChangePublished(err)
		if err != nil {
			ep.logger.Error().
				Err(err).
				Str("kind", string(change.Kind)).
				Str("event_id", change.EventID).
				Msg("failed to publish change")
		}
	}
}

type nopStats struct{}

func (nopStats) ChangePublished(error) {}
func (nopStats) ChangeDropped()        {}

// LogPublisher is a simple publisher that logs changes.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the change.
func (p *LogPublisher) Publish(_ context.Context, change domain.LedgerChange) error {
	payload, err := json.Marshal(change.Payload())
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("kind", string(change.Kind)).
		Str("event_id", change.EventID).
		RawJSON("payload", payload).
		Msg("ledger change")

	return nil
}
