package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/models"

	"github.com/google/uuid"
)

const barberColumns = `id, name, specialty, image_url, is_active, sort_order, created_at, updated_at`

func scanBarber(row rowScanner) (*models.Barber, error) {
	b := &models.Barber{}
	if err := row.Scan(&b.ID, &b.Name, &b.Specialty, &b.ImageURL, &b.IsActive, &b.SortOrder, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return b, nil
}

func (db *DB) CreateBarber(ctx context.Context, b *models.Barber) error {
	b.ID = uuid.NewString()
	ts := now()
	b.CreatedAt, b.UpdatedAt = ts, ts
	query := `INSERT INTO barbers (` + barberColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.ExecContext(ctx, query, b.ID, b.Name, b.Specialty, b.ImageURL, b.IsActive, b.SortOrder, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create barber: %w", err)
	}
	return nil
}

func (db *DB) UpdateBarber(ctx context.Context, b *models.Barber) error {
	b.UpdatedAt = now()
	query := `UPDATE barbers SET name = $1, specialty = $2, image_url = $3, is_active = $4, sort_order = $5, updated_at = $6 WHERE id = $7`
	res, err := db.ExecContext(ctx, query, b.Name, b.Specialty, b.ImageURL, b.IsActive, b.SortOrder, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update barber: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBarberNotFound
	}
	return nil
}

func (db *DB) GetBarber(ctx context.Context, id string) (*models.Barber, error) {
	b, err := scanBarber(db.QueryRowContext(ctx, `SELECT `+barberColumns+` FROM barbers WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get barber: %w", err)
	}
	return b, nil
}

func (db *DB) ListBarbers(ctx context.Context, activeOnly bool) ([]*models.Barber, error) {
	query := `SELECT ` + barberColumns + ` FROM barbers`
	var args []any
	if activeOnly {
		query += ` WHERE is_active = $1`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order ASC, name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list barbers: %w", err)
	}
	defer rows.Close()

	list := []*models.Barber{}
	for rows.Next() {
		b, err := scanBarber(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan barber: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// DeleteBarber removes a barber together with all of their reservations.
func (db *DB) DeleteBarber(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM barbers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete barber: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBarberNotFound
	}
	return nil
}
