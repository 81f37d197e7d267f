package service

import (
	"context"
	"time"

	"barberia/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReservationRepo) CreateReservationsFromCart(ctx context.Context, c *models.Cart, at time.Time) (*models.CartResult, error) {
	args := m.Called(ctx, c, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartResult), args.Error(1)
}
func (m *mockReservationRepo) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockReservationRepo) ListReservations(ctx context.Context, f models.ReservationFilter) ([]*models.Reservation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Reservation), args.Error(1)
}
func (m *mockReservationRepo) OccupiedTimes(ctx context.Context, date, barberID string) ([]string, error) {
	args := m.Called(ctx, date, barberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
func (m *mockReservationRepo) UpdateReservationStatus(ctx context.Context, id, s string) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockReservationRepo) UpdateDeliveryStatus(ctx context.Context, id, s string) error {
	return m.Called(ctx, id, s).Error(0)
}
func (m *mockReservationRepo) ReplaceReservationItems(ctx context.Context, id string, l []models.ItemLine, code string, at time.Time) (*models.ItemsUpdate, error) {
	args := m.Called(ctx, id, l, code, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemsUpdate), args.Error(1)
}
func (m *mockReservationRepo) DeleteReservation(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) CreateBarber(ctx context.Context, b *models.Barber) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockCatalogRepo) UpdateBarber(ctx context.Context, b *models.Barber) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockCatalogRepo) GetBarber(ctx context.Context, id string) (*models.Barber, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Barber), args.Error(1)
}
func (m *mockCatalogRepo) ListBarbers(ctx context.Context, a bool) ([]*models.Barber, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Barber), args.Error(1)
}
func (m *mockCatalogRepo) DeleteBarber(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockCatalogRepo) CreateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockCatalogRepo) UpdateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockCatalogRepo) ListServices(ctx context.Context, a bool) ([]*models.Service, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}
func (m *mockCatalogRepo) DeleteService(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockCatalogRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockCatalogRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockCatalogRepo) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *mockCatalogRepo) ListProducts(ctx context.Context, v bool) ([]*models.Product, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}
func (m *mockCatalogRepo) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockCatalogRepo) CreateOffer(ctx context.Context, o *models.Offer) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockCatalogRepo) UpdateOffer(ctx context.Context, o *models.Offer) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockCatalogRepo) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}
func (m *mockCatalogRepo) ListOffers(ctx context.Context) ([]*models.Offer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Offer), args.Error(1)
}
func (m *mockCatalogRepo) DeleteOffer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockDiscountRepo struct {
	mock.Mock
}

func (m *mockDiscountRepo) CreateDiscountCode(ctx context.Context, d *models.DiscountCode) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDiscountRepo) UpdateDiscountCode(ctx context.Context, d *models.DiscountCode) error {
	return m.Called(ctx, d).Error(0)
}
func (m *mockDiscountRepo) GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscountCode), args.Error(1)
}
func (m *mockDiscountRepo) GetDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscountCode), args.Error(1)
}
func (m *mockDiscountRepo) ListDiscountCodes(ctx context.Context) ([]*models.DiscountCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.DiscountCode), args.Error(1)
}
func (m *mockDiscountRepo) DeleteDiscountCode(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) GetUserByUsername(ctx context.Context, n string) (*models.User, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserRepo) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Setting), args.Error(1)
}
func (m *mockSettingsRepo) UpsertSetting(ctx context.Context, s *models.Setting) error {
	return m.Called(ctx, s).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueTask(ctx context.Context, tt, id string, r *models.Reservation, s string) error {
	return m.Called(ctx, tt, id, r, s).Error(0)
}

type mockProductCache struct {
	mock.Mock
}

func (m *mockProductCache) InvalidateProducts(ctx context.Context) { m.Called(ctx) }
