package broker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"barberia/internal/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu     sync.Mutex
	sent   []published
	err    error
	closed bool
	notify chan struct{}
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	if f.notify != nil {
		f.notify <- struct{}{}
	}
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "reservation.created", RoutingKey(events.EventReservationCreated))
	assert.Equal(t, "reservation.status_changed", RoutingKey(events.EventReservationStatusChanged))
	assert.Equal(t, "product.out_of_stock", RoutingKey(events.EventProductOutOfStock))
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	logger := zerolog.New(io.Discard)
	p := newPublisher(ch, "barberia.events", &logger)

	created := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	ev := &events.Event{Type: events.EventReservationDeleted, Payload: []byte(`{"reservation_id":"r1"}`), CreatedAt: created}
	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, "barberia.events", got.exchange)
	assert.Equal(t, "reservation.deleted", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, events.EventReservationDeleted, got.msg.Type)
	assert.Equal(t, created, got.msg.Timestamp)
	assert.NotEmpty(t, got.msg.MessageId)
	assert.JSONEq(t, `{"reservation_id":"r1"}`, string(got.msg.Body))

	ch.err = errors.New("channel closed")
	assert.Error(t, p.Publish(context.Background(), ev))

	p.Close()
	assert.True(t, ch.closed)
}

func TestPublisher_ForwardsBusEvents(t *testing.T) {
	ch := &fakeChannel{notify: make(chan struct{}, 4)}
	logger := zerolog.New(io.Discard)
	p := newPublisher(ch, "x", &logger)
	bus := events.NewEventBus()
	p.Subscribe(bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	require.NoError(t, bus.PublishJSON(events.EventReservationCreated, map[string]string{"reservation_id": "r1"}))
	require.NoError(t, bus.PublishJSON(events.EventProductOutOfStock, map[string]string{"product_id": "p1"}))
	require.NoError(t, bus.PublishJSON("unrelated", map[string]string{}))

	for i := 0; i < 2; i++ {
		select {
		case <-ch.notify:
		case <-time.After(2 * time.Second):
			t.Fatal("event not forwarded")
		}
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	require.Len(t, ch.sent, 2)
	assert.Equal(t, "reservation.created", ch.sent[0].key)
	assert.Equal(t, "product.out_of_stock", ch.sent[1].key)
}
