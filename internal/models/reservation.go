package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation is either a barber booking or a product-only invoice.
// Service and barber names and prices are snapshots taken at write time.
type Reservation struct {
	ID             string             `json:"id"`
	Kind           string             `json:"kind"`
	ServiceID      *string            `json:"serviceId"`
	ServiceLabel   string             `json:"serviceLabel"`
	BarberID       *string            `json:"barberId"`
	BarberName     string             `json:"barberName"`
	ServicePrice   decimal.Decimal    `json:"servicePrice"`
	Date           string             `json:"date"`
	Time           string             `json:"time"`
	Status         string             `json:"status"`
	CustomerName   string             `json:"customerName"`
	CustomerPhone  string             `json:"customerPhone"`
	DeliveryStatus *string            `json:"deliveryStatus"`
	DiscountCodeID *string            `json:"discountCodeId"`
	DiscountAmount decimal.Decimal    `json:"discountAmount"`
	Total          decimal.Decimal    `json:"total"`
	Items          []*ReservationItem `json:"items,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

func (r *Reservation) IsProductInvoice() bool {
	return r.Kind == KindProductInvoice
}

// BarberKey returns the barber id or "" for "any barber".
func (r *Reservation) BarberKey() string {
	if r.BarberID == nil {
		return ""
	}
	return *r.BarberID
}

// ApplyItemTotals recomputes discount and total from the attached items.
// A reservation without items keeps the service price as its total.
func (r *Reservation) ApplyItemTotals() {
	if len(r.Items) == 0 {
		r.DiscountAmount = decimal.Zero
		r.Total = r.ServicePrice
		return
	}
	discount := decimal.Zero
	total := decimal.Zero
	for _, it := range r.Items {
		discount = discount.Add(it.DiscountAmount)
		total = total.Add(it.Subtotal)
	}
	r.DiscountAmount = discount
	r.Total = total
}

// ReservationItem is one priced line attached to a reservation.
type ReservationItem struct {
	ID             string          `json:"id"`
	ReservationID  string          `json:"reservationId"`
	ItemType       string          `json:"itemType"`
	ItemID         string          `json:"itemId"`
	ItemName       string          `json:"itemName"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	DiscountCodeID *string         `json:"discountCodeId"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Gross is unit price times quantity before discount.
func (i *ReservationItem) Gross() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SetDiscount clamps the discount to [0, gross] and recomputes the subtotal.
func (i *ReservationItem) SetDiscount(codeID *string, amount decimal.Decimal) {
	gross := i.Gross()
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	if amount.GreaterThan(gross) {
		amount = gross
	}
	i.DiscountAmount = amount
	if amount.IsZero() {
		i.DiscountCodeID = nil
	} else {
		i.DiscountCodeID = codeID
	}
	i.Subtotal = gross.Sub(amount)
}

// AllocateDiscount spreads discount across items in proportion to their gross
// amount. Cents lost to rounding go to the last item with a positive gross;
// whatever that item cannot absorb goes to the earlier items with room left,
// so the allocated sum always equals discount (capped at the total).
func AllocateDiscount(items []*ReservationItem, codeID *string, discount decimal.Decimal) {
	total := decimal.Zero
	last := -1
	for idx, it := range items {
		g := it.Gross()
		total = total.Add(g)
		if g.IsPositive() {
			last = idx
		}
	}
	if total.IsZero() || discount.IsZero() || last < 0 {
		for _, it := range items {
			it.SetDiscount(nil, decimal.Zero)
		}
		return
	}
	if discount.GreaterThan(total) {
		discount = total
	}

	remaining := discount
	for idx, it := range items {
		if idx == last {
			it.SetDiscount(codeID, remaining)
			continue
		}
		share := discount.Mul(it.Gross()).Div(total).Round(2)
		if share.GreaterThan(remaining) {
			share = remaining
		}
		it.SetDiscount(codeID, share)
		remaining = remaining.Sub(it.DiscountAmount)
	}

	remaining = remaining.Sub(items[last].DiscountAmount)
	for idx := last; idx >= 0 && remaining.IsPositive(); idx-- {
		it := items[idx]
		room := it.Gross().Sub(it.DiscountAmount)
		if !room.IsPositive() {
			continue
		}
		extra := decimal.Min(room, remaining)
		it.SetDiscount(codeID, it.DiscountAmount.Add(extra))
		remaining = remaining.Sub(extra)
	}
}

// ReservationFilter narrows ListReservations. Empty fields are ignored.
type ReservationFilter struct {
	Date     string
	From     string
	To       string
	Status   string
	BarberID string
	Kind     string
}

// CartLine is one entry of a public checkout cart.
type CartLine struct {
	Type     string
	ID       string
	Quantity int
	BarberID string
	Date     string
	Time     string
}

// IsBooking reports whether the line asks for an appointment slot.
func (l CartLine) IsBooking() bool {
	return l.Type != ItemTypeProduct && l.Date != "" && l.Time != ""
}

// Cart is a validated checkout request.
type Cart struct {
	CustomerName   string
	CustomerPhone  string
	DiscountCodeID string
	Lines          []CartLine
}

// CartFailure describes one cart line that could not be booked.
type CartFailure struct {
	Index   int    `json:"index"`
	ItemID  string `json:"itemId"`
	Message string `json:"message"`
}

// CartResult summarises a checkout.
type CartResult struct {
	Success           int            `json:"success"`
	Failed            int            `json:"failed"`
	Reservations      []*Reservation `json:"reservations"`
	MainReservationID string         `json:"mainReservationId"`
	Errors            []CartFailure  `json:"errors,omitempty"`
	// Depleted lists products whose stock reached zero during checkout.
	Depleted []DepletedProduct `json:"-"`
}

// ItemLine is an admin edit of a reservation's items. Name and price are used
// only when the referenced catalogue entry no longer exists.
type ItemLine struct {
	ItemType  string
	ItemID    string
	Quantity  int
	ItemName  string
	UnitPrice decimal.Decimal
}

// ItemsUpdate is the result of replacing a reservation's items.
type ItemsUpdate struct {
	Reservation *Reservation
	// Depleted lists products whose stock reached zero during the edit.
	Depleted []DepletedProduct
}

// DepletedProduct names a product whose tracked stock ran out.
type DepletedProduct struct {
	ID   string
	Name string
}
