package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"barberia/internal/apperr"
	"barberia/internal/models"

	"github.com/shopspring/decimal"
)

// ReplaceReservationItems swaps the item list of a reservation. Stock of the
// previous product lines is given back before the new lines are taken, all in
// one transaction, so replacing a list with itself leaves stock unchanged and
// a shortage leaves everything as it was.
func (db *DB) ReplaceReservationItems(ctx context.Context, id string, lines []models.ItemLine, discountCodeID string, at time.Time) (*models.ItemsUpdate, error) {
	var out *models.ItemsUpdate
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		r, err := db.lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}

		previous, err := db.itemsFor(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		for _, it := range previous[id] {
			if it.ItemType != models.ItemTypeProduct {
				continue
			}
			if _, err := db.RestoreProductStock(ctx, tx, it.ItemID, it.Quantity, &r.ID); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_items WHERE reservation_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete reservation items: %w", err)
		}

		items := make([]*models.ReservationItem, 0, len(lines))
		for _, line := range lines {
			item, err := db.resolveEditLine(ctx, tx, line)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		codeID, err := db.applyEditDiscount(ctx, tx, r, discountCodeID, items, at)
		if err != nil {
			return err
		}

		if err := db.insertItems(ctx, tx, r.ID, items); err != nil {
			return err
		}
		var depleted []models.DepletedProduct
		for _, it := range items {
			if it.ItemType != models.ItemTypeProduct {
				continue
			}
			m, err := db.ReduceProductStock(ctx, tx, it.ItemID, it.Quantity, &r.ID)
			if err != nil {
				return err
			}
			if m != nil && m.StockAfter <= 0 {
				depleted = append(depleted, models.DepletedProduct{ID: m.ProductID, Name: m.ProductName})
			}
		}

		r.Items = items
		r.ApplyItemTotals()
		r.DiscountCodeID = nil
		if codeID != nil && r.DiscountAmount.IsPositive() {
			r.DiscountCodeID = codeID
		}
		if err := db.updateReservationTotals(ctx, tx, r); err != nil {
			return err
		}
		out = &models.ItemsUpdate{Reservation: r, Depleted: depleted}
		return nil
	})
	if err != nil {
		return nil, conflictError(ErrConcurrentWrite, err)
	}
	return out, nil
}

// resolveEditLine prefers the live catalogue and falls back to the name and
// price sent by the client when the entry was deleted.
func (db *DB) resolveEditLine(ctx context.Context, tx *sql.Tx, line models.ItemLine) (*models.ReservationItem, error) {
	item, err := db.resolveLine(ctx, tx, line.ItemType, line.ItemID, line.Quantity)
	if err == nil {
		return item, nil
	}
	if apperr.KindOf(err) != apperr.KindValidation || line.ItemName == "" || line.Quantity <= 0 || !models.ValidItemType(line.ItemType) {
		return nil, err
	}
	if line.UnitPrice.IsNegative() {
		return nil, apperr.Validation("El precio unitario no puede ser negativo")
	}
	item = &models.ReservationItem{
		ItemType:  line.ItemType,
		ItemID:    line.ItemID,
		ItemName:  line.ItemName,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
	}
	item.SetDiscount(nil, decimal.Zero)
	return item, nil
}

// applyEditDiscount re-applies a code to edited items. Keeping the code the
// reservation already used does not count another use.
func (db *DB) applyEditDiscount(ctx context.Context, tx *sql.Tx, r *models.Reservation, codeID string, items []*models.ReservationItem, at time.Time) (*string, error) {
	if codeID == "" {
		models.AllocateDiscount(items, nil, decimal.Zero)
		return nil, nil
	}
	code, err := db.lockDiscount(ctx, tx, codeID)
	if err != nil {
		return nil, err
	}

	alreadyUsed := r.DiscountCodeID != nil && *r.DiscountCodeID == code.ID
	if alreadyUsed {
		code.UsageLimit = nil
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
	if !alreadyUsed {
		if err := db.incrementDiscountUsage(ctx, tx, code.ID); err != nil {
			return nil, err
		}
	}
	return &id, nil
}
