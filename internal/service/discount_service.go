package service

import (
	"context"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/domain"
	"barberia/internal/metrics"
	"barberia/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type DiscountService struct {
	repo   domain.DiscountRepository
	clock  func() time.Time
	logger *zerolog.Logger
}

func NewDiscountService(repo domain.DiscountRepository, logger *zerolog.Logger) *DiscountService {
	return &DiscountService{
		repo:   repo,
		clock:  time.Now,
		logger: logger,
	}
}

// Validate quotes code against totalAmount without consuming a use.
// Unknown codes are reported as a validation error, not as missing.
func (s *DiscountService) Validate(ctx context.Context, code string, totalAmount decimal.Decimal) (*models.DiscountQuote, error) {
	if models.NormalizeCode(code) == "" {
		metrics.IncDiscount("rejected")
		return nil, models.ErrDiscountNotFound
	}

	d, err := s.repo.GetDiscountByCode(ctx, code)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			metrics.IncDiscount("rejected")
			return nil, models.ErrDiscountNotFound
		}
		return nil, err
	}

	quote, err := d.Quote(totalAmount, s.clock())
	if err != nil {
		metrics.IncDiscount("rejected")
		return nil, err
	}

	metrics.IncDiscount("valid")
	s.logger.Debug().
		Str("code", quote.Code).
		Str("total", totalAmount.StringFixed(2)).
		Str("discount", quote.DiscountAmount.StringFixed(2)).
		Msg("Discount code validated")
	return quote, nil
}

func (s *DiscountService) List(ctx context.Context) ([]*models.DiscountCode, error) {
	return s.repo.ListDiscountCodes(ctx)
}

func (s *DiscountService) Get(ctx context.Context, id string) (*models.DiscountCode, error) {
	return s.repo.GetDiscountCode(ctx, id)
}

func (s *DiscountService) Create(ctx context.Context, d *models.DiscountCode) error {
	d.Code = models.NormalizeCode(d.Code)
	if err := d.Validate(); err != nil {
		return err
	}
	return s.repo.CreateDiscountCode(ctx, d)
}

func (s *DiscountService) Update(ctx context.Context, d *models.DiscountCode) error {
	d.Code = models.NormalizeCode(d.Code)
	if err := d.Validate(); err != nil {
		return err
	}
	return s.repo.UpdateDiscountCode(ctx, d)
}

func (s *DiscountService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteDiscountCode(ctx, id)
}
