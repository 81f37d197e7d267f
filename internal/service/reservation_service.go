package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/config"
	"barberia/internal/database"
	"barberia/internal/domain"
	"barberia/internal/events"
	"barberia/internal/metrics"
	"barberia/internal/models"

	"github.com/rs/zerolog"
)

// productCache is invalidated when checkouts or item edits change stock.
type productCache interface {
	InvalidateProducts(ctx context.Context)
}

type ReservationService struct {
	repo           domain.ReservationRepository
	eventBus       domain.EventPublisher
	sheetsWorker   domain.SyncWorker
	products       productCache
	maxBookingDays int
	loc            *time.Location
	clock          func() time.Time
	logger         *zerolog.Logger
}

func NewReservationService(
	repo domain.ReservationRepository,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	products productCache,
	cfg config.BookingConfig,
	loc *time.Location,
	logger *zerolog.Logger,
) *ReservationService {
	maxDays := cfg.MaxBookingDays
	if maxDays <= 0 {
		maxDays = 90
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationService{
		repo:           repo,
		eventBus:       eventBus,
		sheetsWorker:   sheetsWorker,
		products:       products,
		maxBookingDays: maxDays,
		loc:            loc,
		clock:          time.Now,
		logger:         logger,
	}
}

// Now returns the current time in the shop's time zone.
func (s *ReservationService) Now() time.Time {
	return s.clock().In(s.loc)
}

// ValidateSlot checks the format of date and time and that the slot lies
// between now and maxBookingDays ahead.
func (s *ReservationService) ValidateSlot(date, tm string) error {
	day, err := time.ParseInLocation(models.DateLayout, date, s.loc)
	if err != nil {
		return ErrInvalidDate
	}
	clock, err := time.Parse(models.TimeLayout, tm)
	if err != nil || len(tm) != len(models.TimeLayout) {
		return ErrInvalidTime
	}

	now := s.Now()
	slot := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, s.loc)
	if slot.Before(now) {
		return ErrPastDate
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if day.After(today.AddDate(0, 0, s.maxBookingDays)) {
		return ErrDateTooFar
	}
	return nil
}

func (s *ReservationService) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if err := s.ValidateSlot(r.Date, r.Time); err != nil {
		return err
	}
	if (r.ServiceID == nil || *r.ServiceID == "") && r.ServiceLabel == "" {
		return ErrMissingService
	}

	r.Status = models.StatusPending
	if err := s.repo.CreateReservation(ctx, r); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
		}
		return err
	}

	metrics.IncReservation(r.Kind)
	s.logger.Info().Str("reservation_id", r.ID).Str("date", r.Date).Str("time", r.Time).Msg("Reservation created")
	s.publishEvent(events.EventReservationCreated, r, "", "customer")
	s.enqueueSync(ctx, r, models.SyncTaskUpsert)
	return nil
}

// CreateFromCart validates a cart and checks it out. Slot conflicts are
// reported per line in the result.
func (s *ReservationService) CreateFromCart(ctx context.Context, cart *models.Cart) (*models.CartResult, error) {
	if len(cart.Lines) == 0 {
		return nil, ErrEmptyCartRequest
	}
	var fields []apperr.FieldError
	for idx, line := range cart.Lines {
		if err := s.validateCartLine(line); err != nil {
			msg := err.Error()
			if e, ok := apperr.As(err); ok {
				msg = e.Message
			}
			fields = append(fields, apperr.FieldError{Field: fmt.Sprintf("cartItems[%d]", idx), Message: msg})
		}
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields[0].Message, fields)
	}

	result, err := s.repo.CreateReservationsFromCart(ctx, cart, s.Now())
	if err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	for _, f := range result.Errors {
		if f.Message == database.ErrSlotTaken.Message {
			metrics.IncSlotConflict()
		}
	}
	if hasProducts(cart.Lines) && s.products != nil {
		s.products.InvalidateProducts(ctx)
	}
	for _, r := range result.Reservations {
		metrics.IncReservation(r.Kind)
		s.publishEvent(events.EventReservationCreated, r, "", "customer")
		s.enqueueSync(ctx, r, models.SyncTaskUpsert)
	}
	s.productsDepleted(result.Depleted, result.MainReservationID)

	s.logger.Info().
		Int("success", result.Success).
		Int("failed", result.Failed).
		Str("main_reservation_id", result.MainReservationID).
		Msg("Cart checked out")
	return result, nil
}

func (s *ReservationService) validateCartLine(line models.CartLine) error {
	if !models.ValidItemType(line.Type) {
		return ErrInvalidItemType
	}
	if line.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if line.Type == models.ItemTypeProduct {
		return nil
	}
	if !line.IsBooking() {
		return database.ErrSlotRequired
	}
	return s.ValidateSlot(line.Date, line.Time)
}

func (s *ReservationService) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *ReservationService) ListReservations(ctx context.Context, f models.ReservationFilter) ([]*models.Reservation, error) {
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return nil, ErrInvalidStatus
	}
	for _, d := range []string{f.Date, f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(models.DateLayout, d); err != nil {
			return nil, ErrInvalidDate
		}
	}
	return s.repo.ListReservations(ctx, f)
}

// OccupiedTimes lists taken times on date for barberID ("" for any barber).
func (s *ReservationService) OccupiedTimes(ctx context.Context, date, barberID string) ([]string, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.repo.OccupiedTimes(ctx, date, barberID)
}

func (s *ReservationService) UpdateStatus(ctx context.Context, id, status, changedBy string) (*models.Reservation, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	previous, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateReservationStatus(ctx, id, status); err != nil {
		if errors.Is(err, database.ErrSlotTaken) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	updated, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventReservationStatusChanged, updated, previous.Status, changedBy)
	s.enqueueSync(ctx, updated, models.SyncTaskStatus)
	return updated, nil
}

func (s *ReservationService) UpdateDeliveryStatus(ctx context.Context, id, status string) (*models.Reservation, error) {
	if !models.ValidDeliveryStatus(status) {
		return nil, ErrInvalidDeliveryStatus
	}
	if err := s.repo.UpdateDeliveryStatus(ctx, id, status); err != nil {
		return nil, err
	}
	updated, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	s.enqueueSync(ctx, updated, models.SyncTaskUpsert)
	return updated, nil
}

// ReplaceItems swaps the items of a reservation and re-applies discountCodeID.
func (s *ReservationService) ReplaceItems(ctx context.Context, id string, lines []models.ItemLine, discountCodeID, changedBy string) (*models.Reservation, error) {
	for _, line := range lines {
		if !models.ValidItemType(line.ItemType) {
			return nil, ErrInvalidItemType
		}
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	upd, err := s.repo.ReplaceReservationItems(ctx, id, lines, discountCodeID, s.Now())
	if err != nil {
		return nil, err
	}
	if s.products != nil {
		s.products.InvalidateProducts(ctx)
	}
	s.productsDepleted(upd.Depleted, id)

	r := upd.Reservation
	s.publishEvent(events.EventReservationItemsUpdated, r, "", changedBy)
	s.enqueueSync(ctx, r, models.SyncTaskUpsert)
	return r, nil
}

// DeleteReservation removes a reservation. Stock is not given back.
func (s *ReservationService) DeleteReservation(ctx context.Context, id, changedBy string) error {
	r, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReservation(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("reservation_id", id).Str("changed_by", changedBy).Msg("Reservation deleted")
	s.publishEvent(events.EventReservationDeleted, r, "", changedBy)
	s.enqueueSync(ctx, r, models.SyncTaskDelete)
	return nil
}

func hasProducts(lines []models.CartLine) bool {
	for _, l := range lines {
		if l.Type == models.ItemTypeProduct {
			return true
		}
	}
	return false
}

func (s *ReservationService) productsDepleted(products []models.DepletedProduct, reservationID string) {
	for _, p := range products {
		metrics.IncStockDepleted()
		s.logger.Warn().Str("product_id", p.ID).Str("product", p.Name).Msg("Product out of stock")
		if s.eventBus == nil {
			continue
		}
		payload := events.StockEventPayload{ProductID: p.ID, ProductName: p.Name, ReservationID: reservationID}
		if err := s.eventBus.PublishJSON(events.EventProductOutOfStock, payload); err != nil {
			s.logger.Error().Err(err).Str("product_id", p.ID).Msg("publish event error")
		}
	}
}

func (s *ReservationService) publishEvent(eventType string, r *models.Reservation, previousStatus, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.NewReservationPayload(r)
	payload.PreviousStatus = previousStatus
	payload.ChangedBy = changedBy

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("reservation_id", r.ID).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context, r *models.Reservation, taskType string) {
	if s.sheetsWorker == nil {
		return
	}

	var status string
	if taskType == models.SyncTaskStatus {
		status = r.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, r.ID, r, status); err != nil {
		s.logger.Error().Err(err).Str("reservation_id", r.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
