package service

import (
	"context"
	"strings"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/domain"
	"barberia/internal/models"

	"github.com/rs/zerolog"
)

const (
	cacheBarbers  = "catalog:barbers"
	cacheServices = "catalog:services"
	cacheProducts = "catalog:products"
	cacheOffers   = "catalog:offers"
)

// CatalogService manages barbers, services, products and offers. Public
// listings are cached in the key-value store and dropped on every write.
type CatalogService struct {
	repo   domain.CatalogRepository
	cache  domain.KeyValueStore
	ttl    time.Duration
	clock  func() time.Time
	logger *zerolog.Logger
}

func NewCatalogService(repo domain.CatalogRepository, cache domain.KeyValueStore, ttl time.Duration, logger *zerolog.Logger) *CatalogService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		clock:  time.Now,
		logger: logger,
	}
}

func cached[T any](ctx context.Context, s *CatalogService, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		found, err := s.cache.GetJSON(ctx, key, &out)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		} else if found {
			return out, nil
		}
	}

	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return out, nil
}

func (s *CatalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("catalog cache invalidation failed")
	}
}

// InvalidateProducts drops the cached public product list.
func (s *CatalogService) InvalidateProducts(ctx context.Context) {
	s.invalidate(ctx, cacheProducts)
}

func (s *CatalogService) PublicBarbers(ctx context.Context) ([]*models.Barber, error) {
	return cached(ctx, s, cacheBarbers, func(ctx context.Context) ([]*models.Barber, error) {
		return s.repo.ListBarbers(ctx, true)
	})
}

func (s *CatalogService) PublicServices(ctx context.Context) ([]*models.Service, error) {
	return cached(ctx, s, cacheServices, func(ctx context.Context) ([]*models.Service, error) {
		return s.repo.ListServices(ctx, true)
	})
}

func (s *CatalogService) PublicProducts(ctx context.Context) ([]*models.Product, error) {
	return cached(ctx, s, cacheProducts, func(ctx context.Context) ([]*models.Product, error) {
		return s.repo.ListProducts(ctx, true)
	})
}

// PublicOffers returns the offers that are active and inside their window now.
func (s *CatalogService) PublicOffers(ctx context.Context) ([]*models.Offer, error) {
	all, err := cached(ctx, s, cacheOffers, s.repo.ListOffers)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	current := make([]*models.Offer, 0, len(all))
	for _, o := range all {
		if o.Current(now) {
			current = append(current, o)
		}
	}
	return current, nil
}

// Barbers

func (s *CatalogService) ListBarbers(ctx context.Context) ([]*models.Barber, error) {
	return s.repo.ListBarbers(ctx, false)
}

func (s *CatalogService) GetBarber(ctx context.Context, id string) (*models.Barber, error) {
	return s.repo.GetBarber(ctx, id)
}

func (s *CatalogService) CreateBarber(ctx context.Context, b *models.Barber) error {
	if err := validateName(b.Name, "barbero"); err != nil {
		return err
	}
	if err := s.repo.CreateBarber(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx, cacheBarbers)
	return nil
}

func (s *CatalogService) UpdateBarber(ctx context.Context, b *models.Barber) error {
	if err := validateName(b.Name, "barbero"); err != nil {
		return err
	}
	if err := s.repo.UpdateBarber(ctx, b); err != nil {
		return err
	}
	s.invalidate(ctx, cacheBarbers)
	return nil
}

// DeleteBarber also deletes the barber's reservations.
func (s *CatalogService) DeleteBarber(ctx context.Context, id string) error {
	if err := s.repo.DeleteBarber(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("barber_id", id).Msg("Barber deleted with reservations")
	s.invalidate(ctx, cacheBarbers)
	return nil
}

// Services

func (s *CatalogService) ListServices(ctx context.Context) ([]*models.Service, error) {
	return s.repo.ListServices(ctx, false)
}

func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	return s.repo.GetService(ctx, id)
}

func (s *CatalogService) CreateService(ctx context.Context, svc *models.Service) error {
	if err := validateService(svc); err != nil {
		return err
	}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return err
	}
	s.invalidate(ctx, cacheServices)
	return nil
}

func (s *CatalogService) UpdateService(ctx context.Context, svc *models.Service) error {
	if err := validateService(svc); err != nil {
		return err
	}
	if err := s.repo.UpdateService(ctx, svc); err != nil {
		return err
	}
	s.invalidate(ctx, cacheServices)
	return nil
}

// DeleteService also deletes the reservations that booked the service.
func (s *CatalogService) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("service_id", id).Msg("Service deleted with reservations")
	s.invalidate(ctx, cacheServices)
	return nil
}

// Products

func (s *CatalogService) ListProducts(ctx context.Context) ([]*models.Product, error) {
	return s.repo.ListProducts(ctx, false)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return err
	}
	s.InvalidateProducts(ctx)
	return nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return err
	}
	s.InvalidateProducts(ctx)
	return nil
}

// DeleteProduct keeps reservation items that reference the product.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.InvalidateProducts(ctx)
	return nil
}

// Offers

func (s *CatalogService) ListOffers(ctx context.Context) ([]*models.Offer, error) {
	return s.repo.ListOffers(ctx)
}

func (s *CatalogService) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	return s.repo.GetOffer(ctx, id)
}

func (s *CatalogService) CreateOffer(ctx context.Context, o *models.Offer) error {
	if err := validateOffer(o); err != nil {
		return err
	}
	if err := s.repo.CreateOffer(ctx, o); err != nil {
		return err
	}
	s.invalidate(ctx, cacheOffers)
	return nil
}

func (s *CatalogService) UpdateOffer(ctx context.Context, o *models.Offer) error {
	if err := validateOffer(o); err != nil {
		return err
	}
	if err := s.repo.UpdateOffer(ctx, o); err != nil {
		return err
	}
	s.invalidate(ctx, cacheOffers)
	return nil
}

func (s *CatalogService) DeleteOffer(ctx context.Context, id string) error {
	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cacheOffers)
	return nil
}

func validateName(name, what string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.Validationf("El nombre del %s es obligatorio", what)
	}
	return nil
}

func validateService(svc *models.Service) error {
	if err := validateName(svc.Name, "servicio"); err != nil {
		return err
	}
	if svc.Price.IsNegative() {
		return apperr.Validation("El precio no puede ser negativo")
	}
	if svc.DurationMinutes < 0 {
		return apperr.Validation("La duración no puede ser negativa")
	}
	return nil
}

func validateProduct(p *models.Product) error {
	if err := validateName(p.Name, "producto"); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return apperr.Validation("El precio no puede ser negativo")
	}
	if p.Stock != nil && *p.Stock < 0 {
		return apperr.Validation("El stock no puede ser negativo")
	}
	return nil
}

func validateOffer(o *models.Offer) error {
	if strings.TrimSpace(o.Title) == "" {
		return apperr.Validation("El título de la oferta es obligatorio")
	}
	if o.Price.IsNegative() {
		return apperr.Validation("El precio no puede ser negativo")
	}
	if o.ValidFrom != nil && o.ValidUntil != nil && o.ValidUntil.Before(*o.ValidFrom) {
		return apperr.Validation("La fecha de fin debe ser posterior a la de inicio")
	}
	return nil
}
