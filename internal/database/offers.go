package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/models"

	"github.com/google/uuid"
)

const offerColumns = `id, title, description, price, original_price, image_url, is_active, valid_from, valid_until, created_at, updated_at`

func scanOffer(row rowScanner) (*models.Offer, error) {
	o := &models.Offer{}
	err := row.Scan(&o.ID, &o.Title, &o.Description, &o.Price, &o.OriginalPrice, &o.ImageURL, &o.IsActive,
		&o.ValidFrom, &o.ValidUntil, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (db *DB) CreateOffer(ctx context.Context, o *models.Offer) error {
	o.ID = uuid.NewString()
	ts := now()
	o.CreatedAt, o.UpdatedAt = ts, ts
	query := `INSERT INTO offers (` + offerColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := db.ExecContext(ctx, query, o.ID, o.Title, o.Description, o.Price, o.OriginalPrice, o.ImageURL, o.IsActive,
		o.ValidFrom, o.ValidUntil, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (db *DB) UpdateOffer(ctx context.Context, o *models.Offer) error {
	o.UpdatedAt = now()
	query := `UPDATE offers SET title = $1, description = $2, price = $3, original_price = $4, image_url = $5,
		is_active = $6, valid_from = $7, valid_until = $8, updated_at = $9 WHERE id = $10`
	res, err := db.ExecContext(ctx, query, o.Title, o.Description, o.Price, o.OriginalPrice, o.ImageURL, o.IsActive,
		o.ValidFrom, o.ValidUntil, o.UpdatedAt, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOfferNotFound
	}
	return nil
}

func (db *DB) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	o, err := scanOffer(db.QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return o, nil
}

// ListOffers returns every offer; callers filter by validity window.
func (db *DB) ListOffers(ctx context.Context) ([]*models.Offer, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	list := []*models.Offer{}
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func (db *DB) DeleteOffer(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOfferNotFound
	}
	return nil
}
