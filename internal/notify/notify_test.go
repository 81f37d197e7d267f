package notify

import (
	"context"
	"io"
	"testing"
	"time"

	"barberia/internal/events"
	"barberia/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func createdEvent(t *testing.T, kind string) *events.Event {
	t.Helper()
	ev, err := events.NewJSONEvent(events.EventReservationCreated, events.ReservationEventPayload{
		ReservationID: "r1",
		Kind:          kind,
		CustomerName:  "Ana",
		CustomerPhone: "555-0101",
		ServiceLabel:  "Corte clásico",
		Date:          "2026-03-11",
		Time:          "10:00",
		Total:         decimal.RequireFromString("25"),
	})
	require.NoError(t, err)
	return &ev
}

func TestFormatEvent(t *testing.T) {
	t.Run("Booking", func(t *testing.T) {
		text, err := FormatEvent(createdEvent(t, models.KindBooking))
		require.NoError(t, err)
		assert.Contains(t, text, "Nueva reserva")
		assert.Contains(t, text, "Barbero: Cualquiera")
		assert.Contains(t, text, "Ana (555-0101)")
		assert.Contains(t, text, "Total: $25.00")
	})

	t.Run("Invoice", func(t *testing.T) {
		text, err := FormatEvent(createdEvent(t, models.KindProductInvoice))
		require.NoError(t, err)
		assert.Contains(t, text, "Nueva factura de productos")
		assert.NotContains(t, text, "Barbero")
	})

	t.Run("StatusChanged", func(t *testing.T) {
		ev, err := events.NewJSONEvent(events.EventReservationStatusChanged, events.ReservationEventPayload{
			CustomerName:   "Ana",
			Status:         models.StatusConfirmed,
			PreviousStatus: models.StatusPending,
			ChangedBy:      "admin",
		})
		require.NoError(t, err)
		text, err := FormatEvent(&ev)
		require.NoError(t, err)
		assert.Contains(t, text, "pendiente -> confirmada (por admin)")
	})

	t.Run("OutOfStock", func(t *testing.T) {
		ev, err := events.NewJSONEvent(events.EventProductOutOfStock, events.StockEventPayload{ProductID: "p1"})
		require.NoError(t, err)
		text, err := FormatEvent(&ev)
		require.NoError(t, err)
		assert.Contains(t, text, "Producto agotado: p1")
	})

	t.Run("OutOfStockWithName", func(t *testing.T) {
		ev, err := events.NewJSONEvent(events.EventProductOutOfStock, events.StockEventPayload{ProductID: "p1", ProductName: "Cera mate"})
		require.NoError(t, err)
		text, err := FormatEvent(&ev)
		require.NoError(t, err)
		assert.Contains(t, text, "Producto agotado: Cera mate")
		assert.NotContains(t, text, "p1")
	})

	t.Run("Ignored", func(t *testing.T) {
		text, err := FormatEvent(&events.Event{Type: events.EventReservationDeleted, Payload: []byte(`{}`)})
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("BadPayload", func(t *testing.T) {
		_, err := FormatEvent(&events.Event{Type: events.EventReservationCreated, Payload: []byte(`{`)})
		assert.Error(t, err)
	})
}

func TestNotifier_DeliversToEveryChat(t *testing.T) {
	sender := new(mockTelegramSender)
	logger := zerolog.New(io.Discard)
	n := NewNotifier(sender, []int64{100, 200}, &logger)
	bus := events.NewEventBus()
	n.Subscribe(bus)

	sent := make(chan int64, 2)
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.Text != ""
	})).Run(func(args mock.Arguments) {
		sent <- args.Get(0).(tgbotapi.MessageConfig).ChatID
	}).Return(tgbotapi.Message{}, nil).Twice()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	require.NoError(t, bus.PublishJSON(events.EventReservationCreated, events.ReservationEventPayload{CustomerName: "Ana"}))
	require.NoError(t, bus.PublishJSON(events.EventReservationDeleted, events.ReservationEventPayload{CustomerName: "Ana"}))

	got := map[int64]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-sent:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Equal(t, map[int64]bool{100: true, 200: true}, got)
	sender.AssertExpectations(t)
}
