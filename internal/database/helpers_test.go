package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"barberia/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func seedBarber(t *testing.T, db *DB, name string) *models.Barber {
	t.Helper()
	b := &models.Barber{Name: name, IsActive: true}
	require.NoError(t, db.CreateBarber(context.Background(), b))
	return b
}

func seedService(t *testing.T, db *DB, name, amount string) *models.Service {
	t.Helper()
	s := &models.Service{Name: name, Price: price(amount), DurationMinutes: 30, IsActive: true}
	require.NoError(t, db.CreateService(context.Background(), s))
	return s
}

func seedProduct(t *testing.T, db *DB, name, amount string, stock *int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price(amount), Stock: stock, IsActivePage: true}
	require.NoError(t, db.CreateProduct(context.Background(), p))
	return p
}

func seedDiscount(t *testing.T, db *DB, code, kind, value string, limit *int) *models.DiscountCode {
	t.Helper()
	d := &models.DiscountCode{
		Code:          code,
		DiscountType:  kind,
		DiscountValue: price(value),
		UsageLimit:    limit,
		IsActive:      true,
	}
	require.NoError(t, db.CreateDiscountCode(context.Background(), d))
	return d
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(models.DateLayout)
}
