package models

import (
	"strings"
	"time"

	"barberia/internal/apperr"

	"github.com/shopspring/decimal"
)

var (
	ErrDiscountNotFound  = apperr.Validation("Código de descuento no válido")
	ErrDiscountInactive  = apperr.Validation("El código de descuento no está activo")
	ErrDiscountNotYet    = apperr.Validation("El código de descuento aún no es válido")
	ErrDiscountExpired   = apperr.Validation("El código de descuento ha expirado")
	ErrDiscountExhausted = apperr.Validation("El código de descuento alcanzó su límite de usos")
	ErrAmountOutOfRange  = apperr.Validation("El monto total debe estar entre 0 y 999999.99")
)

type DiscountCode struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Description   string              `json:"description"`
	DiscountType  string              `json:"discountType"`
	DiscountValue decimal.Decimal     `json:"discountValue"`
	MinPurchase   decimal.Decimal     `json:"minPurchase"`
	MaxDiscount   decimal.NullDecimal `json:"maxDiscount"`
	UsageLimit    *int                `json:"usageLimit"`
	UsageCount    int                 `json:"usageCount"`
	ValidFrom     *time.Time          `json:"validFrom"`
	ValidUntil    *time.Time          `json:"validUntil"`
	IsActive      bool                `json:"isActive"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// DiscountQuote is the outcome of applying a code to a total.
type DiscountQuote struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discountType"`
	DiscountValue  decimal.Decimal `json:"discountValue"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// NormalizeCode trims and upper-cases a user supplied code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CheckUsable verifies activity, validity window and usage limit at now.
func (d *DiscountCode) CheckUsable(now time.Time) error {
	if !d.IsActive {
		return ErrDiscountInactive
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return ErrDiscountNotYet
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return ErrDiscountExpired
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return ErrDiscountExhausted
	}
	return nil
}

// Quote applies the code to total. Percentage discounts are rounded to cents
// and capped by MaxDiscount when it is positive; fixed discounts never exceed total.
func (d *DiscountCode) Quote(total decimal.Decimal, now time.Time) (*DiscountQuote, error) {
	if total.IsNegative() || total.GreaterThan(MaxAmount) {
		return nil, ErrAmountOutOfRange
	}
	if err := d.CheckUsable(now); err != nil {
		return nil, err
	}
	if total.LessThan(d.MinPurchase) {
		return nil, apperr.Validationf("La compra mínima para este código es %s", d.MinPurchase.StringFixed(2))
	}

	var amount decimal.Decimal
	switch d.DiscountType {
	case DiscountPercentage:
		amount = total.Mul(d.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
		if d.MaxDiscount.Valid && d.MaxDiscount.Decimal.IsPositive() && amount.GreaterThan(d.MaxDiscount.Decimal) {
			amount = d.MaxDiscount.Decimal
		}
	case DiscountFixed:
		amount = d.DiscountValue
	default:
		return nil, apperr.Validationf("Tipo de descuento desconocido: %s", d.DiscountType)
	}
	if amount.GreaterThan(total) {
		amount = total
	}

	return &DiscountQuote{
		ID:             d.ID,
		Code:           d.Code,
		DiscountType:   d.DiscountType,
		DiscountValue:  d.DiscountValue,
		DiscountAmount: amount,
		FinalAmount:    total.Sub(amount),
	}, nil
}

// Validate checks admin input for a new or edited code.
func (d *DiscountCode) Validate() error {
	var fields []apperr.FieldError
	if d.Code == "" {
		fields = append(fields, apperr.FieldError{Field: "code", Message: "es obligatorio"})
	}
	switch d.DiscountType {
	case DiscountPercentage:
		if !d.DiscountValue.IsPositive() || d.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			fields = append(fields, apperr.FieldError{Field: "discountValue", Message: "debe estar entre 0 y 100"})
		}
	case DiscountFixed:
		if !d.DiscountValue.IsPositive() || d.DiscountValue.GreaterThan(MaxAmount) {
			fields = append(fields, apperr.FieldError{Field: "discountValue", Message: "debe ser mayor que 0"})
		}
	default:
		fields = append(fields, apperr.FieldError{Field: "discountType", Message: "debe ser percentage o fixed"})
	}
	if d.MinPurchase.IsNegative() {
		fields = append(fields, apperr.FieldError{Field: "minPurchase", Message: "no puede ser negativo"})
	}
	if d.UsageLimit != nil && *d.UsageLimit < 0 {
		fields = append(fields, apperr.FieldError{Field: "usageLimit", Message: "no puede ser negativo"})
	}
	if d.ValidFrom != nil && d.ValidUntil != nil && d.ValidUntil.Before(*d.ValidFrom) {
		fields = append(fields, apperr.FieldError{Field: "validUntil", Message: "debe ser posterior a validFrom"})
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("Código de descuento inválido", fields)
	}
	return nil
}
