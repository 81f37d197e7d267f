package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/apperr"
	"barberia/internal/models"
)

// ReduceProductStock takes quantity units of a product inside tx. Products
// without tracked stock are left alone. When the remaining stock reaches zero
// the product is hidden from the public page. The returned movement is nil
// when nothing changed.
func (db *DB) ReduceProductStock(ctx context.Context, tx *sql.Tx, productID string, quantity int, reservationID *string) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("La cantidad debe ser mayor que 0")
	}

	var name string
	var stock sql.NullInt64
	var activePage bool
	query := `SELECT name, stock, is_active_page FROM products WHERE id = $1` + db.dialect.forUpdate()
	err := tx.QueryRowContext(ctx, query, productID).Scan(&name, &stock, &activePage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	if !stock.Valid {
		return nil, nil
	}

	before := int(stock.Int64)
	if quantity > before {
		return nil, stockError(name, before)
	}
	after := before - quantity
	if after <= 0 {
		activePage = false
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET stock = $1, is_active_page = $2, updated_at = $3 WHERE id = $4`,
		after, activePage, now(), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce stock: %w", err)
	}

	m, err := db.recordMovement(ctx, tx, productID, reservationID, before, after, models.StockReasonSale)
	if err != nil {
		return nil, err
	}
	m.ProductName = name
	return m, nil
}

// RestoreProductStock gives quantity units back. Deleted products and products
// without tracked stock are skipped. Page visibility is left to the admin.
func (db *DB) RestoreProductStock(ctx context.Context, tx *sql.Tx, productID string, quantity int, reservationID *string) (*models.StockMovement, error) {
	if quantity <= 0 {
		return nil, nil
	}

	var stock sql.NullInt64
	query := `SELECT stock FROM products WHERE id = $1` + db.dialect.forUpdate()
	err := tx.QueryRowContext(ctx, query, productID).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !stock.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}

	before := int(stock.Int64)
	after := before + quantity
	_, err = tx.ExecContext(ctx, `UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`, after, now(), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to restore stock: %w", err)
	}

	return db.recordMovement(ctx, tx, productID, reservationID, before, after, models.StockReasonRestore)
}

func (db *DB) recordMovement(ctx context.Context, tx *sql.Tx, productID string, reservationID *string, before, after int, reason string) (*models.StockMovement, error) {
	m := &models.StockMovement{
		ProductID:     productID,
		ReservationID: reservationID,
		Delta:         after - before,
		StockBefore:   before,
		StockAfter:    after,
		Reason:        reason,
		CreatedAt:     now(),
	}
	query := `INSERT INTO stock_movements (product_id, reservation_id, delta, stock_before, stock_after, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := tx.QueryRowContext(ctx, query,
		m.ProductID, m.ReservationID, m.Delta, m.StockBefore, m.StockAfter, m.Reason, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return m, nil
}

// StockMovements returns the ledger of a product, newest first.
func (db *DB) StockMovements(ctx context.Context, productID string) ([]*models.StockMovement, error) {
	query := `SELECT id, product_id, reservation_id, delta, stock_before, stock_after, reason, created_at
		FROM stock_movements WHERE product_id = $1 ORDER BY id DESC`
	rows, err := db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock movements: %w", err)
	}
	defer rows.Close()

	var list []*models.StockMovement
	for rows.Next() {
		m := &models.StockMovement{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ReservationID, &m.Delta, &m.StockBefore, &m.StockAfter, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
