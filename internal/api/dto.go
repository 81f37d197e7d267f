package api

import (
	"time"

	"barberia/internal/models"

	"github.com/shopspring/decimal"
)

type createReservationRequest struct {
	ServiceID     string `json:"serviceId"`
	ServiceLabel  string `json:"serviceLabel" validate:"required_without=ServiceID,max=200"`
	BarberID      string `json:"barberId"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,datetime=15:04"`
	CustomerName  string `json:"customerName" validate:"max=120"`
	CustomerPhone string `json:"customerPhone" validate:"max=40"`
}

func (req createReservationRequest) toModel() *models.Reservation {
	r := &models.Reservation{
		Kind:          models.KindBooking,
		ServiceLabel:  req.ServiceLabel,
		Date:          req.Date,
		Time:          req.Time,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
	}
	if req.ServiceID != "" {
		id := req.ServiceID
		r.ServiceID = &id
	}
	if req.BarberID != "" {
		id := req.BarberID
		r.BarberID = &id
	}
	return r
}

type cartItemRequest struct {
	Type     string `json:"type" validate:"required,oneof=service offer product"`
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=1000"`
	BarberID string `json:"barberId"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time     string `json:"time" validate:"omitempty,datetime=15:04"`
}

type cartRequest struct {
	CartItems      []cartItemRequest `json:"cartItems" validate:"required,min=1,max=50,dive"`
	CustomerName   string            `json:"customerName" validate:"required,max=120"`
	CustomerPhone  string            `json:"customerPhone" validate:"required,max=40"`
	DiscountCodeID string            `json:"discountCodeId"`
}

func (req cartRequest) toCart() *models.Cart {
	cart := &models.Cart{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		DiscountCodeID: req.DiscountCodeID,
		Lines:          make([]models.CartLine, 0, len(req.CartItems)),
	}
	for _, it := range req.CartItems {
		cart.Lines = append(cart.Lines, models.CartLine{
			Type:     it.Type,
			ID:       it.ID,
			Quantity: it.Quantity,
			BarberID: it.BarberID,
			Date:     it.Date,
			Time:     it.Time,
		})
	}
	return cart
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pendiente confirmada cancelada"`
}

type deliveryRequest struct {
	DeliveryStatus string `json:"deliveryStatus" validate:"required,oneof=pendiente entregado"`
}

type itemRequest struct {
	ItemType  string          `json:"itemType" validate:"required,oneof=service offer product"`
	ItemID    string          `json:"itemId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"gt=0,lte=1000"`
	ItemName  string          `json:"itemName"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type itemsRequest struct {
	Items          []itemRequest `json:"items" validate:"dive"`
	DiscountCodeID string        `json:"discountCodeId"`
}

func (req itemsRequest) toLines() []models.ItemLine {
	lines := make([]models.ItemLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, models.ItemLine{
			ItemType:  it.ItemType,
			ItemID:    it.ItemID,
			Quantity:  it.Quantity,
			ItemName:  it.ItemName,
			UnitPrice: it.UnitPrice,
		})
	}
	return lines
}

type validateDiscountRequest struct {
	Code        string           `json:"code" validate:"required,max=50"`
	TotalAmount *decimal.Decimal `json:"totalAmount" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type barberRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Specialty string `json:"specialty" validate:"max=200"`
	ImageURL  string `json:"imageUrl"`
	IsActive  *bool  `json:"isActive"`
	SortOrder int    `json:"sortOrder"`
}

func (req barberRequest) toModel(id string) *models.Barber {
	return &models.Barber{
		ID:        id,
		Name:      req.Name,
		Specialty: req.Specialty,
		ImageURL:  req.ImageURL,
		IsActive:  boolOr(req.IsActive, true),
		SortOrder: req.SortOrder,
	}
}

type serviceRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes" validate:"gte=0,lte=600"`
	ImageURL        string          `json:"imageUrl"`
	IsActive        *bool           `json:"isActive"`
}

func (req serviceRequest) toModel(id string) *models.Service {
	return &models.Service{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		ImageURL:        req.ImageURL,
		IsActive:        boolOr(req.IsActive, true),
	}
}

type productRequest struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        *int            `json:"stock" validate:"omitempty,gte=0"`
	ImageURL     string          `json:"imageUrl"`
	IsActivePage *bool           `json:"isActivePage"`
}

func (req productRequest) toModel(id string) *models.Product {
	return &models.Product{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Stock:        req.Stock,
		ImageURL:     req.ImageURL,
		IsActivePage: boolOr(req.IsActivePage, true),
	}
}

type offerRequest struct {
	Title         string              `json:"title" validate:"required,max=150"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	ImageURL      string              `json:"imageUrl"`
	IsActive      *bool               `json:"isActive"`
	ValidFrom     *time.Time          `json:"validFrom"`
	ValidUntil    *time.Time          `json:"validUntil"`
}

func (req offerRequest) toModel(id string) *models.Offer {
	return &models.Offer{
		ID:            id,
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		ImageURL:      req.ImageURL,
		IsActive:      boolOr(req.IsActive, true),
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
	}
}

type discountRequest struct {
	Code          string              `json:"code" validate:"required,max=50"`
	Description   string              `json:"description"`
	DiscountType  string              `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue decimal.Decimal     `json:"discountValue"`
	MinPurchase   decimal.Decimal     `json:"minPurchase"`
	MaxDiscount   decimal.NullDecimal `json:"maxDiscount"`
	UsageLimit    *int                `json:"usageLimit" validate:"omitempty,gte=0"`
	ValidFrom     *time.Time          `json:"validFrom"`
	ValidUntil    *time.Time          `json:"validUntil"`
	IsActive      *bool               `json:"isActive"`
}

func (req discountRequest) toModel(id string) *models.DiscountCode {
	return &models.DiscountCode{
		ID:            id,
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinPurchase:   req.MinPurchase,
		MaxDiscount:   req.MaxDiscount,
		UsageLimit:    req.UsageLimit,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      boolOr(req.IsActive, true),
	}
}

type settingRequest struct {
	Value string `json:"value" validate:"max=5000"`
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
