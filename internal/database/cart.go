package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/models"

	"github.com/shopspring/decimal"
)

// CreateReservationsFromCart checks out a cart in one transaction. at is the
// shop-local clock used for discount windows and product-only invoices. Booking
// lines whose slot is taken are reported as failures without aborting the
// others. Product lines attach to the first booking, or to a product-only
// invoice when no booking was made. Stock, discount usage and totals commit
// together with the reservations.
func (db *DB) CreateReservationsFromCart(ctx context.Context, cart *models.Cart, at time.Time) (*models.CartResult, error) {
	var result *models.CartResult
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = db.checkout(ctx, tx, cart, at)
		return err
	})
	if err != nil {
		return nil, conflictError(ErrSlotTaken, err)
	}
	return result, nil
}

func (db *DB) checkout(ctx context.Context, tx *sql.Tx, cart *models.Cart, at time.Time) (*models.CartResult, error) {
	result := &models.CartResult{Reservations: []*models.Reservation{}}
	var loose []*models.ReservationItem

	for idx, line := range cart.Lines {
		if line.Type != models.ItemTypeProduct && !line.IsBooking() {
			return nil, &apperr.Error{
				Kind:    apperr.KindValidation,
				Message: ErrSlotRequired.Message,
				Fields:  []apperr.FieldError{{Field: fmt.Sprintf("cartItems[%d]", idx), Message: ErrSlotRequired.Message}},
				Err:     ErrSlotRequired,
			}
		}
		if !line.IsBooking() {
			qty := line.Quantity
			if qty <= 0 {
				qty = 1
			}
			item, err := db.resolveLine(ctx, tx, line.Type, line.ID, qty)
			if err != nil {
				return nil, err
			}
			loose = append(loose, item)
			continue
		}

		r, err := db.bookCartLine(ctx, tx, cart, line)
		if err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				return nil, err
			}
			msg := err.Error()
			if e, ok := apperr.As(err); ok {
				msg = e.Message
			}
			result.Failed++
			result.Errors = append(result.Errors, models.CartFailure{Index: idx, ItemID: line.ID, Message: msg})
			continue
		}
		result.Reservations = append(result.Reservations, r)
	}

	if len(result.Reservations) == 0 {
		if len(loose) == 0 {
			return nil, cartFailure(result)
		}
		invoice, err := db.insertInvoice(ctx, tx, cart, at)
		if err != nil {
			return nil, err
		}
		result.Reservations = append(result.Reservations, invoice)
	}

	main := result.Reservations[0]
	main.Items = append(main.Items, loose...)
	result.MainReservationID = main.ID
	result.Success = len(result.Reservations)

	var all []*models.ReservationItem
	for _, r := range result.Reservations {
		all = append(all, r.Items...)
	}
	codeID, err := db.applyCartDiscount(ctx, tx, cart.DiscountCodeID, all, at)
	if err != nil {
		return nil, err
	}

	for _, r := range result.Reservations {
		if err := db.insertItems(ctx, tx, r.ID, r.Items); err != nil {
			return nil, err
		}
		for _, it := range r.Items {
			if it.ItemType != models.ItemTypeProduct {
				continue
			}
			rid := r.ID
			m, err := db.ReduceProductStock(ctx, tx, it.ItemID, it.Quantity, &rid)
			if err != nil {
				return nil, err
			}
			if m != nil && m.StockAfter <= 0 {
				result.Depleted = append(result.Depleted, models.DepletedProduct{ID: m.ProductID, Name: m.ProductName})
			}
		}
		r.ApplyItemTotals()
		if codeID != nil && r.DiscountAmount.IsPositive() {
			r.DiscountCodeID = codeID
		}
		if err := db.updateReservationTotals(ctx, tx, r); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// bookCartLine creates the reservation for one booking line with its single item.
func (db *DB) bookCartLine(ctx context.Context, tx *sql.Tx, cart *models.Cart, line models.CartLine) (*models.Reservation, error) {
	r := &models.Reservation{
		Kind:          models.KindBooking,
		Date:          line.Date,
		Time:          line.Time,
		Status:        models.StatusPending,
		CustomerName:  cart.CustomerName,
		CustomerPhone: cart.CustomerPhone,
	}
	if line.BarberID != "" {
		barberID := line.BarberID
		r.BarberID = &barberID
	}
	if err := db.resolveBarber(ctx, tx, r); err != nil {
		return nil, err
	}

	item, err := db.resolveLine(ctx, tx, line.Type, line.ID, 1)
	if err != nil {
		return nil, err
	}
	if line.Type == models.ItemTypeService {
		serviceID := line.ID
		r.ServiceID = &serviceID
	}
	r.ServiceLabel = item.ItemName
	r.ServicePrice = item.UnitPrice

	if err := db.checkSlot(ctx, tx, r.Date, r.Time, r.BarberKey()); err != nil {
		return nil, err
	}

	r.Items = []*models.ReservationItem{item}
	r.ApplyItemTotals()
	if err := db.insertReservation(ctx, tx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (db *DB) insertInvoice(ctx context.Context, tx *sql.Tx, cart *models.Cart, at time.Time) (*models.Reservation, error) {
	date, tm := invoiceSlot(at)
	delivery := models.DeliveryPending
	r := &models.Reservation{
		Kind:           models.KindProductInvoice,
		ServiceLabel:   models.ProductInvoiceLabel,
		Date:           date,
		Time:           tm,
		Status:         models.StatusConfirmed,
		CustomerName:   cart.CustomerName,
		CustomerPhone:  cart.CustomerPhone,
		DeliveryStatus: &delivery,
	}
	if err := db.insertReservation(ctx, tx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// invoiceSlot formats an invoice timestamp. The minute is shifted by the
// millisecond component so invoices placed in the same minute rarely share a time.
func invoiceSlot(at time.Time) (string, string) {
	ms := at.Nanosecond() / int(time.Millisecond)
	minute := (at.Minute() + ms%60) % 60
	return at.Format(models.DateLayout), fmt.Sprintf("%02d:%02d", at.Hour(), minute)
}

// resolveLine snapshots name and current price of a catalogue entry.
func (db *DB) resolveLine(ctx context.Context, tx *sql.Tx, itemType, id string, quantity int) (*models.ReservationItem, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("La cantidad debe ser mayor que 0")
	}

	var query string
	var missing *apperr.Error
	switch itemType {
	case models.ItemTypeService:
		query = `SELECT name, price FROM services WHERE id = $1`
		missing = apperr.Validationf("El servicio %s no existe", id)
	case models.ItemTypeOffer:
		query = `SELECT title, price FROM offers WHERE id = $1`
		missing = apperr.Validationf("La oferta %s no existe", id)
	case models.ItemTypeProduct:
		query = `SELECT name, price FROM products WHERE id = $1`
		missing = apperr.Validationf("El producto %s no existe", id)
	default:
		return nil, apperr.Validationf("Tipo de item desconocido: %s", itemType)
	}

	item := &models.ReservationItem{ItemType: itemType, ItemID: id, Quantity: quantity}
	err := tx.QueryRowContext(ctx, query, id).Scan(&item.ItemName, &item.UnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, missing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s %s: %w", itemType, id, err)
	}
	item.SetDiscount(nil, decimal.Zero)
	return item, nil
}

// applyCartDiscount validates the code against the cart total, spreads the
// discount over the items and counts one use.
func (db *DB) applyCartDiscount(ctx context.Context, tx *sql.Tx, codeID string, items []*models.ReservationItem, at time.Time) (*string, error) {
	if codeID == "" {
		return nil, nil
	}
	code, err := db.lockDiscount(ctx, tx, codeID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Gross())
	}
	quote, err := code.Quote(total, at)
	if err != nil {
		return nil, err
	}

	id := code.ID
	models.AllocateDiscount(items, &id, quote.DiscountAmount)
	if err := db.incrementDiscountUsage(ctx, tx, code.ID); err != nil {
		return nil, err
	}
	return &id, nil
}

func cartFailure(result *models.CartResult) error {
	fields := make([]apperr.FieldError, 0, len(result.Errors))
	for _, f := range result.Errors {
		fields = append(fields, apperr.FieldError{Field: fmt.Sprintf("cartItems[%d]", f.Index), Message: f.Message})
	}
	if len(fields) == 1 {
		return &apperr.Error{Kind: apperr.KindValidation, Message: fields[0].Message, Fields: fields, Err: ErrEmptyCart}
	}
	return &apperr.Error{Kind: apperr.KindValidation, Message: ErrEmptyCart.Message, Fields: fields, Err: ErrEmptyCart}
}
