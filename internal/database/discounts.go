package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/models"

	"github.com/google/uuid"
)

const discountColumns = `id, code, description, discount_type, discount_value, min_purchase, max_discount,
	usage_limit, usage_count, valid_from, valid_until, is_active, created_at, updated_at`

func scanDiscount(row rowScanner) (*models.DiscountCode, error) {
	d := &models.DiscountCode{}
	err := row.Scan(&d.ID, &d.Code, &d.Description, &d.DiscountType, &d.DiscountValue, &d.MinPurchase, &d.MaxDiscount,
		&d.UsageLimit, &d.UsageCount, &d.ValidFrom, &d.ValidUntil, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (db *DB) CreateDiscountCode(ctx context.Context, d *models.DiscountCode) error {
	d.ID = uuid.NewString()
	d.Code = models.NormalizeCode(d.Code)
	ts := now()
	d.CreatedAt, d.UpdatedAt = ts, ts
	query := `INSERT INTO discount_codes (` + discountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := db.ExecContext(ctx, query, d.ID, d.Code, d.Description, d.DiscountType, d.DiscountValue, d.MinPurchase,
		d.MaxDiscount, d.UsageLimit, d.UsageCount, d.ValidFrom, d.ValidUntil, d.IsActive, d.CreatedAt, d.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("failed to create discount code: %w", err)
	}
	return nil
}

// UpdateDiscountCode edits a code. usage_count is only changed by checkouts.
func (db *DB) UpdateDiscountCode(ctx context.Context, d *models.DiscountCode) error {
	d.Code = models.NormalizeCode(d.Code)
	d.UpdatedAt = now()
	query := `UPDATE discount_codes SET code = $1, description = $2, discount_type = $3, discount_value = $4,
		min_purchase = $5, max_discount = $6, usage_limit = $7, valid_from = $8, valid_until = $9,
		is_active = $10, updated_at = $11 WHERE id = $12`
	res, err := db.ExecContext(ctx, query, d.Code, d.Description, d.DiscountType, d.DiscountValue, d.MinPurchase,
		d.MaxDiscount, d.UsageLimit, d.ValidFrom, d.ValidUntil, d.IsActive, d.UpdatedAt, d.ID)
	if isUniqueViolation(err) {
		return ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("failed to update discount code: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

func (db *DB) GetDiscountCode(ctx context.Context, id string) (*models.DiscountCode, error) {
	d, err := scanDiscount(db.QueryRowContext(ctx, `SELECT `+discountColumns+` FROM discount_codes WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	return d, nil
}

// GetDiscountByCode looks a code up case-insensitively.
func (db *DB) GetDiscountByCode(ctx context.Context, code string) (*models.DiscountCode, error) {
	row := db.QueryRowContext(ctx, `SELECT `+discountColumns+` FROM discount_codes WHERE code = $1`, models.NormalizeCode(code))
	d, err := scanDiscount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discount code: %w", err)
	}
	return d, nil
}

func (db *DB) ListDiscountCodes(ctx context.Context) ([]*models.DiscountCode, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+discountColumns+` FROM discount_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list discount codes: %w", err)
	}
	defer rows.Close()

	list := []*models.DiscountCode{}
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount code: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (db *DB) DeleteDiscountCode(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete discount code: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDiscountNotFound
	}
	return nil
}

// lockDiscount reads a code by id with a row lock.
func (db *DB) lockDiscount(ctx context.Context, tx *sql.Tx, id string) (*models.DiscountCode, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+discountColumns+` FROM discount_codes WHERE id = $1`+db.dialect.forUpdate(), id)
	d, err := scanDiscount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDiscountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock discount code: %w", err)
	}
	return d, nil
}

func (db *DB) incrementDiscountUsage(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE discount_codes SET usage_count = usage_count + 1, updated_at = $1 WHERE id = $2`, now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment discount usage: %w", err)
	}
	return nil
}
