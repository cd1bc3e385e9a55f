package eventpublisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iho/walletfy/internal/domain"
)

func TestFlushPublishesBatch(t *testing.T) {
	pub := &stubPublisher{}
	stats := &stubStats{}
	ep := newTestPublisher(pub, stats)

	ep.flush(context.Background(), []domain.LedgerChange{
		{Kind: domain.ChangeEventCreated, EventID: "evt-1"},
		{Kind: domain.ChangeBalanceUpdated},
	})

	if got := pub.Published(); len(got) != 2 {
		t.Fatalf("expected two published changes, got %d", len(got))
	}
	if stats.ok != 2 {
		t.Fatalf("expected 2 successful publishes counted, got %d", stats.ok)
	}
}

func TestFlushContinuesOnPublishError(t *testing.T) {
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("fail")},
	}
	stats := &stubStats{}
	ep := newTestPublisher(pub, stats)

	ep.flush(context.Background(), []domain.LedgerChange{
		{Kind: domain.ChangeEventDeleted, EventID: "evt-1"},
		{Kind: domain.ChangeEventDeleted, EventID: "evt-2"},
	})

	got := pub.Published()
	if len(got) != 1 || got[0].EventID != "evt-2" {
		t.Fatalf("expected only evt-2 to be published, got %#v", got)
	}
	if stats.failed != 1 {
		t.Fatalf("expected 1 failed publish counted, got %d", stats.failed)
	}
}

func TestNotifyDropsWhenQueueFull(t *testing.T) {
	stats := &stubStats{}
	ep := NewEventPublisher(Config{
		Publisher: &stubPublisher{},
		Stats:     stats,
		Logger:    zerolog.Nop(),
		QueueSize: 1,
	})

	ep.Notify(context.Background(), domain.LedgerChange{Kind: domain.ChangeEventCreated, EventID: "a"})
	ep.Notify(context.Background(), domain.LedgerChange{Kind: domain.ChangeEventCreated, EventID: "b"})

	if stats.dropped != 1 {
		t.Fatalf("expected one dropped change, got %d", stats.dropped)
	}
}

func TestStartPublishesQueuedChanges(t *testing.T) {
	pub := &stubPublisher{}
	ep := newTestPublisher(pub, nil)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	ep.Notify(ctx, domain.LedgerChange{Kind: domain.ChangeEventCreated, EventID: "evt-1"})

	deadline := time.After(time.Second)
	for len(pub.Published()) == 0 {
		select {
		case <-deadline:
			t.Fatal("change was not published")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestStartFlushesOnShutdown(t *testing.T) {
	pub := &stubPublisher{}
	ep := newTestPublisher(pub, nil)
	ep.interval = time.Hour

	for i := 0; i < 3; i++ {
		ep.Notify(context.Background(), domain.LedgerChange{Kind: domain.ChangeThemeUpdated})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ep.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}

	if got := len(pub.Published()); got != 3 {
		t.Fatalf("expected queued changes to be flushed, got %d", got)
	}
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := NewLogPublisher(zerolog.New(&buf))

	err := p.Publish(context.Background(), domain.LedgerChange{
		Kind:       domain.ChangeEventUpdated,
		EventID:    "evt-9",
		OccurredAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"kind":"event.updated"`, `"event_id":"evt-9"`, `"occurred_at":"2025-03-01T12:00:00Z"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log to contain %s, got %s", want, out)
		}
	}
}

func TestAMQPPublisherPublish(t *testing.T) {
	ch := &stubChannel{}
	p := newAMQPPublisher(ch, "walletfy.changes", zerolog.Nop())

	occurred := time.Date(2025, time.February, 2, 8, 0, 0, 0, time.UTC)
	err := p.Publish(context.Background(), domain.LedgerChange{
		Kind:       domain.ChangeEventDeleted,
		EventID:    "evt-3",
		OccurredAt: occurred,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if ch.exchange != "walletfy.changes" || ch.key != "event.deleted" {
		t.Fatalf("unexpected routing %q/%q", ch.exchange, ch.key)
	}
	if ch.msg.DeliveryMode != amqp.Persistent || ch.msg.ContentType != "application/json" {
		t.Fatalf("unexpected message properties %+v", ch.msg)
	}

	var payload domain.ChangePayload
	if err := json.Unmarshal(ch.msg.Body, &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.EventID != "evt-3" || payload.Kind != "event.deleted" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !ch.closed {
		t.Fatal("expected channel to be closed")
	}
}

func TestAMQPPublisherWrapsErrors(t *testing.T) {
	ch := &stubChannel{err: amqp.ErrClosed}
	p := newAMQPPublisher(ch, "walletfy.changes", zerolog.Nop())

	err := p.Publish(context.Background(), domain.LedgerChange{Kind: domain.ChangeThemeUpdated})
	if !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected wrapped ErrClosed, got %v", err)
	}
}

func newTestPublisher(pub *stubPublisher, stats *stubStats) *EventPublisher {
	cfg := Config{
		Publisher: pub,
		Logger:    zerolog.Nop(),
		BatchSize: 10,
		Interval:  10 * time.Millisecond,
	}
	if stats != nil {
		cfg.Stats = stats
	}
	return NewEventPublisher(cfg)
}

type stubPublisher struct {
	mu         sync.Mutex
	published  []domain.LedgerChange
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(_ context.Context, change domain.LedgerChange) error {
	if err := s.errorsByID[change.EventID]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, change)
	return nil
}

func (s *stubPublisher) Published() []domain.LedgerChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LedgerChange(nil), s.published...)
}

type stubStats struct {
	ok, failed, dropped int
}

func (s *stubStats) ChangePublished(err error) {
	if err != nil {
		s.failed++
		return
	}
	s.ok++
}

func (s *stubStats) ChangeDropped() { s.dropped++ }

type stubChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (s *stubChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if s.err != nil {
		return s.err
	}
	s.exchange, s.key, s.msg = exchange, key, msg
	return nil
}

func (s *stubChannel) Close() error {
	s.closed = true
	return nil
}
