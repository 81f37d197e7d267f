package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Barber struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	ImageURL  string    `json:"imageUrl"`
	IsActive  bool      `json:"isActive"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Service struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"durationMinutes"`
	ImageURL        string          `json:"imageUrl"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Product is a sellable item. A nil Stock means unlimited.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Stock        *int            `json:"stock"`
	ImageURL     string          `json:"imageUrl"`
	IsActivePage bool            `json:"isActivePage"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Depleted reports a tracked stock at or below zero.
func (p *Product) Depleted() bool {
	return p.Stock != nil && *p.Stock <= 0
}

// NormalizeVisibility hides depleted products from the public page.
func (p *Product) NormalizeVisibility() {
	if p.Depleted() {
		p.IsActivePage = false
	}
}

type Offer struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	OriginalPrice decimal.NullDecimal `json:"originalPrice"`
	ImageURL      string              `json:"imageUrl"`
	IsActive      bool                `json:"isActive"`
	ValidFrom     *time.Time          `json:"validFrom"`
	ValidUntil    *time.Time          `json:"validUntil"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// Current reports whether the offer is active and inside its window at now.
func (o *Offer) Current(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if o.ValidFrom != nil && now.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidUntil != nil && now.After(*o.ValidUntil) {
		return false
	}
	return true
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StockMovement is an append-only record of one stock change.
type StockMovement struct {
	ID            int64     `json:"id"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"-"`
	ReservationID *string   `json:"reservationId"`
	Delta         int       `json:"delta"`
	StockBefore   int       `json:"stockBefore"`
	StockAfter    int       `json:"stockAfter"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"createdAt"`
}
