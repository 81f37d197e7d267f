package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"barberia/internal/models"

	"github.com/google/uuid"
)

const productColumns = `id, name, description, price, stock, image_url, is_active_page, created_at, updated_at`

func scanProduct(row rowScanner) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.IsActivePage, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct inserts a product, enforcing the catalogue and page limits.
func (db *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		total, err := countRows(ctx, tx, `SELECT COUNT(*) FROM products`)
		if err != nil {
			return err
		}
		if total >= models.MaxProducts {
			return ErrTooManyProducts
		}

		p.NormalizeVisibility()
		if p.IsActivePage {
			if err := checkActivePageLimit(ctx, tx, ""); err != nil {
				return err
			}
		}

		p.ID = uuid.NewString()
		ts := now()
		p.CreatedAt, p.UpdatedAt = ts, ts
		query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
		_, err = tx.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.IsActivePage, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	return conflictError(ErrConcurrentWrite, err)
}

// UpdateProduct overwrites a product. Manual stock changes are recorded as
// adjustments in the stock ledger.
func (db *DB) UpdateProduct(ctx context.Context, p *models.Product) error {
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`+db.dialect.forUpdate(), p.ID)
		current, err := scanProduct(row)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load product: %w", err)
		}

		p.NormalizeVisibility()
		if p.IsActivePage && !current.IsActivePage {
			if err := checkActivePageLimit(ctx, tx, p.ID); err != nil {
				return err
			}
		}

		p.CreatedAt = current.CreatedAt
		p.UpdatedAt = now()
		query := `UPDATE products SET name = $1, description = $2, price = $3, stock = $4, image_url = $5,
			is_active_page = $6, updated_at = $7 WHERE id = $8`
		_, err = tx.ExecContext(ctx, query, p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.IsActivePage, p.UpdatedAt, p.ID)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if current.Stock != nil && p.Stock != nil && *current.Stock != *p.Stock {
			if _, err := db.recordMovement(ctx, tx, p.ID, nil, *current.Stock, *p.Stock, models.StockReasonAdjustment); err != nil {
				return err
			}
		}
		return nil
	})
	return conflictError(ErrConcurrentWrite, err)
}

func checkActivePageLimit(ctx context.Context, tx *sql.Tx, excludeID string) error {
	active, err := countRows(ctx, tx, `SELECT COUNT(*) FROM products WHERE is_active_page = $1 AND id <> $2`, true, excludeID)
	if err != nil {
		return err
	}
	if active >= models.MaxActivePageProducts {
		return ErrTooManyActiveProducts
	}
	return nil
}

func countRows(ctx context.Context, tx *sql.Tx, query string, args ...any) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

func (db *DB) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanProduct(db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// ListProducts returns all products, or only the ones visible on the public
// page when visibleOnly is set.
func (db *DB) ListProducts(ctx context.Context, visibleOnly bool) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if visibleOnly {
		query += ` WHERE is_active_page = $1 AND (stock IS NULL OR stock > 0)`
		args = append(args, true)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	list := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// DeleteProduct removes a product. Reservation items keep their snapshots.
func (db *DB) DeleteProduct(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}
