package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"barberia/internal/config"
	"barberia/internal/domain"
	"barberia/internal/events"
	"barberia/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const queueSize = 100

// Notifier forwards reservation events to Telegram chats. Bus handlers only
// queue the text; Run delivers it.
type Notifier struct {
	sender  domain.TelegramSender
	chatIDs []int64
	queue   chan string
	logger  *zerolog.Logger
}

// NewBotSender connects to the Telegram Bot API.
func NewBotSender(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	api.Debug = cfg.Debug
	return api, nil
}

func NewNotifier(sender domain.TelegramSender, chatIDs []int64, logger *zerolog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		chatIDs: chatIDs,
		queue:   make(chan string, queueSize),
		logger:  logger,
	}
}

// Subscribe registers the notifier on the events it reports.
func (n *Notifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.handle)
	bus.Subscribe(events.EventReservationStatusChanged, n.handle)
	bus.Subscribe(events.EventProductOutOfStock, n.handle)
}

func (n *Notifier) handle(ev *events.Event) error {
	text, err := FormatEvent(ev)
	if err != nil {
		n.logger.Error().Err(err).Str("event", ev.Type).Msg("notify: decode payload")
		return nil
	}
	if text == "" {
		return nil
	}
	select {
	case n.queue <- text:
	default:
		n.logger.Warn().Str("event", ev.Type).Msg("notify: queue full, message dropped")
	}
	return nil
}

// Run sends queued messages until ctx is done.
func (n *Notifier) Run(ctx context.Context) {
	n.logger.Info().Int("chats", len(n.chatIDs)).Msg("Telegram notifier started")
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-n.queue:
			n.send(text)
		}
	}
}

func (n *Notifier) send(text string) {
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true
		if _, err := n.sender.Send(msg); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("notify: send failed")
		}
	}
}

// FormatEvent renders the chat text for ev. It returns "" for events that
// are not reported.
func FormatEvent(ev *events.Event) (string, error) {
	switch ev.Type {
	case events.EventReservationCreated, events.EventReservationStatusChanged:
		var p events.ReservationEventPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", err
		}
		if ev.Type == events.EventReservationCreated {
			return formatCreated(p), nil
		}
		return formatStatus(p), nil
	case events.EventProductOutOfStock:
		var p events.StockEventPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return "", err
		}
		name := p.ProductName
		if name == "" {
			name = p.ProductID
		}
		return fmt.Sprintf("Producto agotado: %s\nSe ocultó de la página.", name), nil
	}
	return "", nil
}

func formatCreated(p events.ReservationEventPayload) string {
	var b strings.Builder
	if p.Kind == models.KindProductInvoice {
		b.WriteString("Nueva factura de productos\n")
	} else {
		b.WriteString("Nueva reserva\n")
		fmt.Fprintf(&b, "Servicio: %s\n", p.ServiceLabel)
		barber := p.BarberName
		if barber == "" {
			barber = "Cualquiera"
		}
		fmt.Fprintf(&b, "Barbero: %s\n", barber)
	}
	fmt.Fprintf(&b, "Cliente: %s", p.CustomerName)
	if p.CustomerPhone != "" {
		fmt.Fprintf(&b, " (%s)", p.CustomerPhone)
	}
	fmt.Fprintf(&b, "\nFecha: %s %s\nTotal: $%s", p.Date, p.Time, p.Total.StringFixed(2))
	return b.String()
}

func formatStatus(p events.ReservationEventPayload) string {
	text := fmt.Sprintf("Reserva de %s el %s %s: %s -> %s", p.CustomerName, p.Date, p.Time, p.PreviousStatus, p.Status)
	if p.ChangedBy != "" {
		text += fmt.Sprintf(" (por %s)", p.ChangedBy)
	}
	return text
}
