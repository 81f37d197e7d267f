package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/models"

	"github.com/google/uuid"
)

const serviceColumns = `id, name, description, price, duration_minutes, image_url, is_active, created_at, updated_at`

func scanService(row rowScanner) (*models.Service, error) {
	s := &models.Service{}
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes, &s.ImageURL, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) CreateService(ctx context.Context, s *models.Service) error {
	s.ID = uuid.NewString()
	ts := now()
	s.CreatedAt, s.UpdatedAt = ts, ts
	query := `INSERT INTO services (` + serviceColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := db.ExecContext(ctx, query, s.ID, s.Name, s.Description, s.Price, s.DurationMinutes, s.ImageURL, s.IsActive, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (db *DB) UpdateService(ctx context.Context, s *models.Service) error {
	s.UpdatedAt = now()
	query := `UPDATE services SET name = $1, description = $2, price = $3, duration_minutes = $4, image_url = $5,
		is_active = $6, updated_at = $7 WHERE id = $8`
	res, err := db.ExecContext(ctx, query, s.Name, s.Description, s.Price, s.DurationMinutes, s.ImageURL, s.IsActive, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrServiceNotFound
	}
	return nil
}

func (db *DB) GetService(ctx context.Context, id string) (*models.Service, error) {
	s, err := scanService(db.QueryRowContext(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

func (db *DB) ListServices(ctx context.Context, activeOnly bool) ([]*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services`
	var args []any
	if activeOnly {
		query += ` WHERE is_active = $1`
		args = append(args, true)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	list := []*models.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// DeleteService removes a service together with the reservations that booked it.
func (db *DB) DeleteService(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrServiceNotFound
	}
	return nil
}
