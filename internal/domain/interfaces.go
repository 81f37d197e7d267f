package domain

import (
	"context"
	"time"

	"barberia/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ReservationRepository interface {
	CreateReservation(ctx context.Context, r *models.Reservation) error
	CreateReservationsFromCart(ctx context.Context, cart *models.Cart, at time.Time) (*models.CartResult, error)
	GetReservation(ctx context.Context, id string) (*models.Reservation, error)
	ListReservations(ctx context.Context, f models.ReservationFilter) ([]*models.Reservation, error)
	OccupiedTimes(ctx context.Context, date, barberID string) ([]string, error)
	UpdateReservationStatus(ctx context.Context, id, status string) error
	UpdateDeliveryStatus(ctx context.Context, id, status string) error
	ReplaceReservationItems(ctx context.Context, id string, lines []models.ItemLine, discountCodeID string, at time.Time) (*models.ItemsUpdate, error)
	DeleteReservation(ctx context.Context, id string) error
}

type CatalogRepository interface {
	CreateBarber(ctx context.Context, b *models.Barber) error
	UpdateBarber(ctx context.Context, b *models.Barber) error
	GetBarber(ctx context.Context, id string) (*models.Barber, error)
	ListBarbers(ctx context.Context, activeOnly bool) ([]*models.Barber, error)
	DeleteBarber(ctx context.Context, id string) error

	CreateService(ctx context.Context, s *models.Service) error
	UpdateService(ctx context.Context, s *models.Service) error
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]*models.Service, error)
	DeleteService(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context, visibleOnly bool) ([]*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	CreateOffer(ctx context.Context, o *models.Offer) error
	UpdateOffer(ctx context.Context, o *models.Offer) error
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	ListOffers(ctx context.Context) ([]*models.Offer, error)
	DeleteOffer(ctx context.Context, id string) error
}

type DiscountRepository interface {
	CreateDiscountCode(ctx context.Context, d *models.DiscountCode) error
	UpdateDiscountCode(ctx context.Context, d *models.DiscountCode) error
	GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error)
	GetDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error)
	ListDiscountCodes(ctx context.Context) ([]*models.DiscountCode, error)
	DeleteDiscountCode(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CountUsers(ctx context.Context) (int, error)
}

type SettingsRepository interface {
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	UpsertSetting(ctx context.Context, s *models.Setting) error
}

type SyncRepository interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// KeyValueStore backs the catalogue cache and login throttling.
// GetJSON reports false when the key does not exist.
type KeyValueStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	UpsertReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, reservationID, status string) error
	DeleteReservation(ctx context.Context, reservationID string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType, reservationID string, r *models.Reservation, status string) error
}
