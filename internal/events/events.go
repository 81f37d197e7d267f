package events

import (
	"encoding/json"
	"sync"
	"time"

	"barberia/internal/models"

	"github.com/shopspring/decimal"
)

const (
	EventReservationCreated       = "reservation_created"
	EventReservationStatusChanged = "reservation_status_changed"
	EventReservationItemsUpdated  = "reservation_items_updated"
	EventReservationDeleted       = "reservation_deleted"
	EventProductOutOfStock        = "product_out_of_stock"
)

// AllEventTypes lists every event type published by the services.
var AllEventTypes = []string{
	EventReservationCreated,
	EventReservationStatusChanged,
	EventReservationItemsUpdated,
	EventReservationDeleted,
	EventProductOutOfStock,
}

// ReservationEventPayload describes the reservation snapshot for event consumers.
type ReservationEventPayload struct {
	ReservationID  string          `json:"reservation_id"`
	Kind           string          `json:"kind"`
	CustomerName   string          `json:"customer_name"`
	CustomerPhone  string          `json:"customer_phone"`
	ServiceLabel   string          `json:"service_label"`
	BarberName     string          `json:"barber_name,omitempty"`
	Date           string          `json:"date"`
	Time           string          `json:"time"`
	Status         string          `json:"status"`
	PreviousStatus string          `json:"previous_status,omitempty"`
	Total          decimal.Decimal `json:"total"`
	ChangedBy      string          `json:"changed_by,omitempty"`
}

// NewReservationPayload snapshots r.
func NewReservationPayload(r *models.Reservation) ReservationEventPayload {
	return ReservationEventPayload{
		ReservationID: r.ID,
		Kind:          r.Kind,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		ServiceLabel:  r.ServiceLabel,
		BarberName:    r.BarberName,
		Date:          r.Date,
		Time:          r.Time,
		Status:        r.Status,
		Total:         r.Total,
	}
}

// StockEventPayload is published when a product runs out.
type StockEventPayload struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	ReservationID string `json:"reservation_id,omitempty"`
}

// Event represents a lightweight domain event.
type Event struct {
	ID        int64
	Type      string
	Payload   []byte
	CreatedAt time.Time
	Processed bool
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// SubscribeAll registers handler for every type in AllEventTypes.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	for _, t := range AllEventTypes {
		b.Subscribe(t, handler)
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
