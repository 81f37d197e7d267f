package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/models"
)

func (db *DB) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	list := []*models.Setting{}
	for rows.Next() {
		s := &models.Setting{}
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (db *DB) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	s := &models.Setting{}
	err := db.QueryRowContext(ctx, `SELECT key, value, updated_at FROM settings WHERE key = $1`, key).Scan(&s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	return s, nil
}

// UpsertSetting creates or replaces a key.
func (db *DB) UpsertSetting(ctx context.Context, s *models.Setting) error {
	s.UpdatedAt = now()
	query := `INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, s.Key, s.Value, s.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}
	return nil
}
