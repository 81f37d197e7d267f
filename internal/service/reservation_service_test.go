package service

import (
	"context"
	"io"
	"testing"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/config"
	"barberia/internal/database"
	"barberia/internal/events"
	"barberia/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newReservationService(t *testing.T) (*ReservationService, *mockReservationRepo, *mockEventBus, *mockWorker, *mockProductCache) {
	t.Helper()
	repo := new(mockReservationRepo)
	bus := new(mockEventBus)
	worker := new(mockWorker)
	products := new(mockProductCache)
	logger := zerolog.New(io.Discard)
	svc := NewReservationService(repo, bus, worker, products, config.BookingConfig{MaxBookingDays: 30}, time.UTC, &logger)
	svc.clock = func() time.Time { return fixedNow }
	return svc, repo, bus, worker, products
}

func withEvent(eventType string) interface{} {
	return mock.MatchedBy(func(s string) bool { return s == eventType })
}

func TestReservationService_ValidateSlot(t *testing.T) {
	svc, _, _, _, _ := newReservationService(t)

	assert.NoError(t, svc.ValidateSlot("2026-03-10", "10:30"))
	assert.NoError(t, svc.ValidateSlot("2026-04-09", "18:00"))

	assert.ErrorIs(t, svc.ValidateSlot("2026-03-10", "09:30"), ErrPastDate)
	assert.ErrorIs(t, svc.ValidateSlot("2026-03-09", "18:00"), ErrPastDate)
	assert.ErrorIs(t, svc.ValidateSlot("2026-04-10", "10:00"), ErrDateTooFar)
	assert.ErrorIs(t, svc.ValidateSlot("10/03/2026", "10:00"), ErrInvalidDate)
	assert.ErrorIs(t, svc.ValidateSlot("2026-03-11", "9:00"), ErrInvalidTime)
	assert.ErrorIs(t, svc.ValidateSlot("2026-03-11", "25:00"), ErrInvalidTime)
}

func TestReservationService_CreateReservation(t *testing.T) {
	ctx := context.Background()
	serviceID := "svc-1"

	t.Run("Success", func(t *testing.T) {
		svc, repo, bus, worker, _ := newReservationService(t)
		r := &models.Reservation{ServiceID: &serviceID, Date: "2026-03-11", Time: "10:00", CustomerName: "Ana", Status: models.StatusConfirmed}

		repo.On("CreateReservation", ctx, r).Return(nil).Once()
		bus.On("PublishJSON", withEvent(events.EventReservationCreated), mock.Anything).Return(nil).Once()
		worker.On("EnqueueTask", ctx, models.SyncTaskUpsert, r.ID, r, "").Return(nil).Once()

		require.NoError(t, svc.CreateReservation(ctx, r))
		assert.Equal(t, models.StatusPending, r.Status)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
	})

	t.Run("SlotTaken", func(t *testing.T) {
		svc, repo, bus, worker, _ := newReservationService(t)
		r := &models.Reservation{ServiceID: &serviceID, Date: "2026-03-11", Time: "10:00"}

		repo.On("CreateReservation", ctx, r).Return(database.ErrSlotTaken).Once()

		err := svc.CreateReservation(ctx, r)
		assert.ErrorIs(t, err, database.ErrSlotTaken)
		bus.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
		worker.AssertNotCalled(t, "EnqueueTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MissingService", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		err := svc.CreateReservation(ctx, &models.Reservation{Date: "2026-03-11", Time: "10:00"})
		assert.ErrorIs(t, err, ErrMissingService)
		repo.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
	})

	t.Run("PastSlot", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		err := svc.CreateReservation(ctx, &models.Reservation{ServiceID: &serviceID, Date: "2026-03-09", Time: "10:00"})
		assert.ErrorIs(t, err, ErrPastDate)
		repo.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
	})
}

func TestReservationService_CreateFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("LineErrorsAreIndexed", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		cart := &models.Cart{Lines: []models.CartLine{
			{Type: models.ItemTypeService, ID: "s1", Date: "2026-03-11", Time: "10:00"},
			{Type: "gift", ID: "x"},
			{Type: models.ItemTypeService, ID: "s2", Date: "2026-03-01", Time: "10:00"},
		}}

		_, err := svc.CreateFromCart(ctx, cart)
		require.Error(t, err)
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		require.Len(t, appErr.Fields, 2)
		assert.Equal(t, "cartItems[1]", appErr.Fields[0].Field)
		assert.Equal(t, "cartItems[2]", appErr.Fields[1].Field)
		repo.AssertNotCalled(t, "CreateReservationsFromCart", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("BookableLinesNeedSlot", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		cart := &models.Cart{Lines: []models.CartLine{
			{Type: models.ItemTypeProduct, ID: "p1", Quantity: 1},
			{Type: models.ItemTypeService, ID: "s1"},
			{Type: models.ItemTypeOffer, ID: "o1", Date: "2026-03-11"},
		}}

		_, err := svc.CreateFromCart(ctx, cart)
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		require.Len(t, appErr.Fields, 2)
		assert.Equal(t, "cartItems[1]", appErr.Fields[0].Field)
		assert.Equal(t, database.ErrSlotRequired.Message, appErr.Fields[0].Message)
		assert.Equal(t, "cartItems[2]", appErr.Fields[1].Field)
		repo.AssertNotCalled(t, "CreateReservationsFromCart", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Empty", func(t *testing.T) {
		svc, _, _, _, _ := newReservationService(t)
		_, err := svc.CreateFromCart(ctx, &models.Cart{})
		assert.ErrorIs(t, err, ErrEmptyCartRequest)
	})

	t.Run("ProductsDepleted", func(t *testing.T) {
		svc, repo, bus, worker, products := newReservationService(t)
		cart := &models.Cart{
			CustomerName: "Luis",
			Lines: []models.CartLine{
				{Type: models.ItemTypeService, ID: "s1", Date: "2026-03-11", Time: "10:00"},
				{Type: models.ItemTypeProduct, ID: "p1", Quantity: 2},
			},
		}
		booked := &models.Reservation{ID: "r1", Kind: models.KindBooking, Total: decimal.NewFromInt(30)}
		result := &models.CartResult{
			Success:           1,
			Reservations:      []*models.Reservation{booked},
			MainReservationID: "r1",
			Depleted:          []models.DepletedProduct{{ID: "p1", Name: "Cera"}},
		}

		repo.On("CreateReservationsFromCart", ctx, cart, fixedNow).Return(result, nil).Once()
		products.On("InvalidateProducts", ctx).Once()
		bus.On("PublishJSON", withEvent(events.EventReservationCreated), mock.Anything).Return(nil).Once()
		bus.On("PublishJSON", withEvent(events.EventProductOutOfStock), events.StockEventPayload{ProductID: "p1", ProductName: "Cera", ReservationID: "r1"}).Return(nil).Once()
		worker.On("EnqueueTask", ctx, models.SyncTaskUpsert, "r1", booked, "").Return(nil).Once()

		got, err := svc.CreateFromCart(ctx, cart)
		require.NoError(t, err)
		assert.Equal(t, result, got)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
		products.AssertExpectations(t)
	})

	t.Run("ServicesOnlySkipProductCache", func(t *testing.T) {
		svc, repo, bus, worker, products := newReservationService(t)
		cart := &models.Cart{Lines: []models.CartLine{
			{Type: models.ItemTypeOffer, ID: "o1", Date: "2026-03-12", Time: "11:00"},
		}}
		r := &models.Reservation{ID: "r2", Kind: models.KindBooking}
		result := &models.CartResult{Success: 1, Reservations: []*models.Reservation{r}, MainReservationID: "r2"}

		repo.On("CreateReservationsFromCart", ctx, cart, fixedNow).Return(result, nil).Once()
		bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()
		worker.On("EnqueueTask", ctx, models.SyncTaskUpsert, "r2", r, "").Return(nil).Once()

		_, err := svc.CreateFromCart(ctx, cart)
		require.NoError(t, err)
		products.AssertNotCalled(t, "InvalidateProducts", mock.Anything)
	})
}

func TestReservationService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidStatus", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		_, err := svc.UpdateStatus(ctx, "r1", "done", "admin")
		assert.ErrorIs(t, err, ErrInvalidStatus)
		repo.AssertNotCalled(t, "GetReservation", mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		repo.On("GetReservation", ctx, "missing").Return(nil, database.ErrReservationNotFound).Once()

		_, err := svc.UpdateStatus(ctx, "missing", models.StatusConfirmed, "admin")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("PublishesPreviousStatus", func(t *testing.T) {
		svc, repo, bus, worker, _ := newReservationService(t)
		before := &models.Reservation{ID: "r1", Status: models.StatusPending}
		after := &models.Reservation{ID: "r1", Status: models.StatusConfirmed}

		repo.On("GetReservation", ctx, "r1").Return(before, nil).Once()
		repo.On("UpdateReservationStatus", ctx, "r1", models.StatusConfirmed).Return(nil).Once()
		repo.On("GetReservation", ctx, "r1").Return(after, nil).Once()
		bus.On("PublishJSON", events.EventReservationStatusChanged, mock.MatchedBy(func(p events.ReservationEventPayload) bool {
			return p.PreviousStatus == models.StatusPending && p.Status == models.StatusConfirmed && p.ChangedBy == "admin"
		})).Return(nil).Once()
		worker.On("EnqueueTask", ctx, models.SyncTaskStatus, "r1", after, models.StatusConfirmed).Return(nil).Once()

		got, err := svc.UpdateStatus(ctx, "r1", models.StatusConfirmed, "admin")
		require.NoError(t, err)
		assert.Equal(t, after, got)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
	})
}

func TestReservationService_UpdateDeliveryStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, worker, _ := newReservationService(t)

	_, err := svc.UpdateDeliveryStatus(ctx, "r1", "lost")
	assert.ErrorIs(t, err, ErrInvalidDeliveryStatus)

	invoice := &models.Reservation{ID: "r1", Kind: models.KindProductInvoice}
	repo.On("UpdateDeliveryStatus", ctx, "r1", models.DeliveryDelivered).Return(nil).Once()
	repo.On("GetReservation", ctx, "r1").Return(invoice, nil).Once()
	worker.On("EnqueueTask", ctx, models.SyncTaskUpsert, "r1", invoice, "").Return(nil).Once()

	got, err := svc.UpdateDeliveryStatus(ctx, "r1", models.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, invoice, got)
	repo.AssertExpectations(t)
}

func TestReservationService_ReplaceItems(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidLines", func(t *testing.T) {
		svc, repo, _, _, _ := newReservationService(t)
		_, err := svc.ReplaceItems(ctx, "r1", []models.ItemLine{{ItemType: models.ItemTypeProduct, ItemID: "p1"}}, "", "admin")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		_, err = svc.ReplaceItems(ctx, "r1", []models.ItemLine{{ItemType: "coupon", ItemID: "c", Quantity: 1}}, "", "admin")
		assert.ErrorIs(t, err, ErrInvalidItemType)
		repo.AssertNotCalled(t, "ReplaceReservationItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success", func(t *testing.T) {
		svc, repo, bus, worker, products := newReservationService(t)
		lines := []models.ItemLine{{ItemType: models.ItemTypeProduct, ItemID: "p1", Quantity: 1}}
		r := &models.Reservation{ID: "r1"}

		repo.On("ReplaceReservationItems", ctx, "r1", lines, "d1", fixedNow).
			Return(&models.ItemsUpdate{Reservation: r}, nil).Once()
		products.On("InvalidateProducts", ctx).Once()
		bus.On("PublishJSON", withEvent(events.EventReservationItemsUpdated), mock.Anything).Return(nil).Once()
		worker.On("EnqueueTask", ctx, models.SyncTaskUpsert, "r1", r, "").Return(nil).Once()

		got, err := svc.ReplaceItems(ctx, "r1", lines, "d1", "admin")
		require.NoError(t, err)
		assert.Equal(t, r, got)
		repo.AssertExpectations(t)
		bus.AssertExpectations(t)
		products.AssertExpectations(t)
	})
}

func TestReservationService_DeleteReservation(t *testing.T) {
	ctx := context.Background()
	svc, repo, bus, worker, _ := newReservationService(t)
	r := &models.Reservation{ID: "r1"}

	repo.On("GetReservation", ctx, "r1").Return(r, nil).Once()
	repo.On("DeleteReservation", ctx, "r1").Return(nil).Once()
	bus.On("PublishJSON", withEvent(events.EventReservationDeleted), mock.Anything).Return(nil).Once()
	worker.On("EnqueueTask", ctx, models.SyncTaskDelete, "r1", r, "").Return(nil).Once()

	require.NoError(t, svc.DeleteReservation(ctx, "r1", "admin"))
	repo.AssertExpectations(t)
	bus.AssertExpectations(t)
	worker.AssertExpectations(t)
}

func TestReservationService_Queries(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _, _ := newReservationService(t)

	_, err := svc.ListReservations(ctx, models.ReservationFilter{Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = svc.ListReservations(ctx, models.ReservationFilter{From: "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.OccupiedTimes(ctx, "tomorrow", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	f := models.ReservationFilter{Status: models.StatusPending, From: "2026-03-01", To: "2026-03-31"}
	list := []*models.Reservation{{ID: "r1"}}
	repo.On("ListReservations", ctx, f).Return(list, nil).Once()
	repo.On("OccupiedTimes", ctx, "2026-03-11", "b1").Return([]string{"10:00"}, nil).Once()

	got, err := svc.ListReservations(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, list, got)

	times, err := svc.OccupiedTimes(ctx, "2026-03-11", "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00"}, times)
	repo.AssertExpectations(t)
}
