package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"barberia/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const reservationColumns = `id, kind, service_id, service_label, barber_id, barber_name, service_price,
	date, time, status, customer_name, customer_phone, delivery_status,
	discount_code_id, discount_amount, total, created_at, updated_at`

const itemColumns = `id, reservation_id, item_type, item_id, item_name, quantity, unit_price,
	discount_code_id, discount_amount, subtotal, created_at`

func scanReservation(row rowScanner) (*models.Reservation, error) {
	r := &models.Reservation{}
	err := row.Scan(
		&r.ID, &r.Kind, &r.ServiceID, &r.ServiceLabel, &r.BarberID, &r.BarberName, &r.ServicePrice,
		&r.Date, &r.Time, &r.Status, &r.CustomerName, &r.CustomerPhone, &r.DeliveryStatus,
		&r.DiscountCodeID, &r.DiscountAmount, &r.Total, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanItem(row rowScanner) (*models.ReservationItem, error) {
	it := &models.ReservationItem{}
	err := row.Scan(
		&it.ID, &it.ReservationID, &it.ItemType, &it.ItemID, &it.ItemName, &it.Quantity, &it.UnitPrice,
		&it.DiscountCodeID, &it.DiscountAmount, &it.Subtotal, &it.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return it, nil
}

// CreateReservation books one slot. The barber check, the conflict check,
// the snapshot and the insert share one transaction.
func (db *DB) CreateReservation(ctx context.Context, r *models.Reservation) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		r.Kind = models.KindBooking
		if r.Status == "" {
			r.Status = models.StatusPending
		}
		if err := db.resolveBarber(ctx, tx, r); err != nil {
			return err
		}
		if err := db.checkSlot(ctx, tx, r.Date, r.Time, r.BarberKey()); err != nil {
			return err
		}
		if err := db.snapshotService(ctx, tx, r); err != nil {
			return err
		}
		r.Items = nil
		r.ApplyItemTotals()
		return db.insertReservation(ctx, tx, r)
	})
	if err != nil {
		return conflictError(ErrSlotTaken, err)
	}
	return nil
}

// checkSlot fails with ErrSlotTaken when an active booking overlaps the slot.
// A booking without barber overlaps every barber and vice versa.
func (db *DB) checkSlot(ctx context.Context, tx *sql.Tx, date, tm, barberID string) error {
	return db.checkSlotExcept(ctx, tx, date, tm, barberID, "")
}

// checkSlotExcept is checkSlot ignoring the reservation excludeID.
func (db *DB) checkSlotExcept(ctx context.Context, tx *sql.Tx, date, tm, barberID, excludeID string) error {
	query := `SELECT id FROM reservations
		WHERE date = $1 AND time = $2 AND status <> $3 AND kind = $4
		  AND (barber_id = $5 OR barber_id IS NULL OR $5 = '')
		  AND id <> $6
		LIMIT 1` + db.dialect.forUpdate()

	var id string
	err := tx.QueryRowContext(ctx, query, date, tm, models.StatusCancelled, models.KindBooking, barberID, excludeID).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check slot: %w", err)
	default:
		return ErrSlotTaken
	}
}

// resolveBarber fills BarberName for a chosen barber.
func (db *DB) resolveBarber(ctx context.Context, tx *sql.Tx, r *models.Reservation) error {
	if r.BarberID == nil || *r.BarberID == "" {
		r.BarberID = nil
		r.BarberName = ""
		return nil
	}
	err := tx.QueryRowContext(ctx, `SELECT name FROM barbers WHERE id = $1`, *r.BarberID).Scan(&r.BarberName)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUnknownBarber
	}
	if err != nil {
		return fmt.Errorf("failed to load barber: %w", err)
	}
	return nil
}

// snapshotService copies the current service name and price. A missing
// service leaves service_id NULL and a zero price.
func (db *DB) snapshotService(ctx context.Context, tx *sql.Tx, r *models.Reservation) error {
	r.ServicePrice = decimal.Zero
	if r.ServiceID == nil || *r.ServiceID == "" {
		r.ServiceID = nil
		return nil
	}

	var name string
	var price decimal.Decimal
	err := tx.QueryRowContext(ctx, `SELECT name, price FROM services WHERE id = $1`, *r.ServiceID).Scan(&name, &price)
	if errors.Is(err, sql.ErrNoRows) {
		r.ServiceID = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load service snapshot: %w", err)
	}
	r.ServiceLabel = name
	r.ServicePrice = price
	return nil
}

func (db *DB) insertReservation(ctx context.Context, tx *sql.Tx, r *models.Reservation) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	ts := now()
	r.CreatedAt = ts
	r.UpdatedAt = ts

	query := `INSERT INTO reservations (` + reservationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := tx.ExecContext(ctx, query,
		r.ID, r.Kind, r.ServiceID, r.ServiceLabel, r.BarberID, r.BarberName, r.ServicePrice,
		r.Date, r.Time, r.Status, r.CustomerName, r.CustomerPhone, r.DeliveryStatus,
		r.DiscountCodeID, r.DiscountAmount, r.Total, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (db *DB) updateReservationTotals(ctx context.Context, tx *sql.Tx, r *models.Reservation) error {
	r.UpdatedAt = now()
	query := `UPDATE reservations SET discount_code_id = $1, discount_amount = $2, total = $3, updated_at = $4 WHERE id = $5`
	_, err := tx.ExecContext(ctx, query, r.DiscountCodeID, r.DiscountAmount, r.Total, r.UpdatedAt, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update reservation totals: %w", err)
	}
	return nil
}

func (db *DB) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
	r, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	items, err := db.itemsFor(ctx, db, []string{id})
	if err != nil {
		return nil, err
	}
	r.Items = items[id]
	return r, nil
}

// lockReservation reads a reservation row inside tx with a row lock.
func (db *DB) lockReservation(ctx context.Context, tx *sql.Tx, id string) (*models.Reservation, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`+db.dialect.forUpdate(), id)
	r, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock reservation: %w", err)
	}
	return r, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// itemsFor loads the items of the given reservations keyed by reservation id.
func (db *DB) itemsFor(ctx context.Context, q querier, ids []string) (map[string][]*models.ReservationItem, error) {
	out := make(map[string][]*models.ReservationItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + itemColumns + ` FROM reservation_items
		WHERE reservation_id IN (` + placeholders(1, len(ids)) + `)
		ORDER BY created_at ASC, id ASC`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation item: %w", err)
		}
		out[it.ReservationID] = append(out[it.ReservationID], it)
	}
	return out, rows.Err()
}

// ListReservations returns reservations newest slot first, with their items.
func (db *DB) ListReservations(ctx context.Context, f models.ReservationFilter) ([]*models.Reservation, error) {
	var where []string
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if f.Date != "" {
		add("date = $%d", f.Date)
	}
	if f.From != "" {
		add("date >= $%d", f.From)
	}
	if f.To != "" {
		add("date <= $%d", f.To)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.BarberID != "" {
		add("barber_id = $%d", f.BarberID)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date DESC, time DESC, created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var list []*models.Reservation
	var ids []string
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		list = append(list, r)
		ids = append(ids, r.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	items, err := db.itemsFor(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		r.Items = items[r.ID]
	}
	return list, nil
}

// OccupiedTimes lists the times on date that a booking for barberID would
// conflict with. An empty barberID means "any barber".
func (db *DB) OccupiedTimes(ctx context.Context, date, barberID string) ([]string, error) {
	query := `SELECT DISTINCT time FROM reservations
		WHERE date = $1 AND status <> $2 AND kind = $3
		  AND (barber_id = $4 OR barber_id IS NULL OR $4 = '')
		ORDER BY time`
	rows, err := db.QueryContext(ctx, query, date, models.StatusCancelled, models.KindBooking, barberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get occupied times: %w", err)
	}
	defer rows.Close()

	times := []string{}
	for rows.Next() {
		var tm string
		if err := rows.Scan(&tm); err != nil {
			return nil, err
		}
		times = append(times, tm)
	}
	return times, rows.Err()
}

// UpdateReservationStatus sets the status. Reactivating a cancelled booking
// re-checks its slot, since another booking may have taken it meanwhile.
func (db *DB) UpdateReservationStatus(ctx context.Context, id, status string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		r, err := db.lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if r.Kind == models.KindBooking && r.Status == models.StatusCancelled && status != models.StatusCancelled {
			if err := db.checkSlotExcept(ctx, tx, r.Date, r.Time, r.BarberKey(), r.ID); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `UPDATE reservations SET status = $1, updated_at = $2 WHERE id = $3`, status, now(), id)
		if err != nil {
			return fmt.Errorf("failed to update reservation status: %w", err)
		}
		return nil
	})
	return conflictError(ErrSlotTaken, err)
}

// UpdateDeliveryStatus changes the delivery state of a product invoice.
func (db *DB) UpdateDeliveryStatus(ctx context.Context, id, status string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		r, err := db.lockReservation(ctx, tx, id)
		if err != nil {
			return err
		}
		if !r.IsProductInvoice() {
			return ErrNotProductInvoice
		}
		_, err = tx.ExecContext(ctx, `UPDATE reservations SET delivery_status = $1, updated_at = $2 WHERE id = $3`, status, now(), id)
		if err != nil {
			return fmt.Errorf("failed to update delivery status: %w", err)
		}
		return nil
	})
	return conflictError(ErrConcurrentWrite, err)
}

// DeleteReservation removes a reservation and its items.
func (db *DB) DeleteReservation(ctx context.Context, id string) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservation_items WHERE reservation_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete reservation items: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete reservation: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrReservationNotFound
		}
		return nil
	})
	return conflictError(ErrConcurrentWrite, err)
}

func (db *DB) insertItems(ctx context.Context, tx *sql.Tx, reservationID string, items []*models.ReservationItem) error {
	query := `INSERT INTO reservation_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	ts := now()
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.ReservationID = reservationID
		it.CreatedAt = ts
		_, err := tx.ExecContext(ctx, query,
			it.ID, it.ReservationID, it.ItemType, it.ItemID, it.ItemName, it.Quantity, it.UnitPrice,
			it.DiscountCodeID, it.DiscountAmount, it.Subtotal, it.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert reservation item: %w", err)
		}
	}
	return nil
}
