package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"barberia/internal/config"
	"barberia/internal/events"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	queueSize      = 256
	publishTimeout = 5 * time.Second
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards bus events to a topic exchange. reservation_created is
// routed as reservation.created, product_out_of_stock as product.out_of_stock.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	queue    chan *events.Event
	logger   *zerolog.Logger
}

// Dial connects to the broker and declares a durable topic exchange.
func Dial(cfg config.AMQPConfig, logger *zerolog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}
	p := newPublisher(ch, cfg.Exchange, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *zerolog.Logger) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		queue:    make(chan *events.Event, queueSize),
		logger:   logger,
	}
}

// RoutingKey maps an event type to its topic routing key.
func RoutingKey(eventType string) string {
	return strings.Replace(eventType, "_", ".", 1)
}

// Subscribe forwards every known event type.
func (p *Publisher) Subscribe(bus *events.EventBus) {
	bus.SubscribeAll(func(ev *events.Event) error {
		select {
		case p.queue <- ev:
		default:
			p.logger.Warn().Str("event", ev.Type).Msg("broker: queue full, event dropped")
		}
		return nil
	})
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info().Str("exchange", p.exchange).Msg("AMQP publisher started")
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.queue:
			if err := p.Publish(ctx, ev); err != nil {
				p.logger.Error().Err(err).Str("event", ev.Type).Msg("broker: publish failed")
			}
		}
	}
}

// Publish sends one event as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, ev *events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ts := ev.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(ev.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    ts,
		Type:         ev.Type,
		Body:         ev.Payload,
	})
}

func (p *Publisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
