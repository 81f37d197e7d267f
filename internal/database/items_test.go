package database

import (
	"context"
	"testing"
	"time"

	"barberia/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceReservationItems_SameListKeepsStock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	wax := seedProduct(t, db, "Cera", "10000", intPtr(5))

	res, err := db.CreateReservationsFromCart(ctx, cart(
		models.CartLine{Type: models.ItemTypeProduct, ID: wax.ID, Quantity: 2},
	), time.Now())
	require.NoError(t, err)

	lines := []models.ItemLine{{ItemType: models.ItemTypeProduct, ItemID: wax.ID, Quantity: 2}}
	for i := 0; i < 3; i++ {
		_, err := db.ReplaceReservationItems(ctx, res.MainReservationID, lines, "", time.Now())
		require.NoError(t, err)
	}

	product, err := db.GetProduct(ctx, wax.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, *product.Stock)
}

func TestReplaceReservationItems_ChangesQuantities(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	wax := seedProduct(t, db, "Cera", "10000", intPtr(4))
	svc := seedService(t, db, "Barba", "15000")

	res, err := db.CreateReservationsFromCart(ctx, cart(
		models.CartLine{Type: models.ItemTypeProduct, ID: wax.ID, Quantity: 1},
	), time.Now())
	require.NoError(t, err)

	upd, err := db.ReplaceReservationItems(ctx, res.MainReservationID, []models.ItemLine{
		{ItemType: models.ItemTypeProduct, ItemID: wax.ID, Quantity: 4},
		{ItemType: models.ItemTypeService, ItemID: svc.ID, Quantity: 1},
	}, "", time.Now())
	require.NoError(t, err)
	assert.Equal(t, []models.DepletedProduct{{ID: wax.ID, Name: wax.Name}}, upd.Depleted)
	assert.True(t, upd.Reservation.Total.Equal(price("55000")), upd.Reservation.Total.String())

	got, err := db.GetReservation(ctx, res.MainReservationID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.True(t, got.Total.Equal(price("55000")))

	product, err := db.GetProduct(ctx, wax.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *product.Stock)
	assert.False(t, product.IsActivePage)

	_, err = db.ReplaceReservationItems(ctx, res.MainReservationID, nil, "", time.Now())
	require.NoError(t, err)
	product, err = db.GetProduct(ctx, wax.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, *product.Stock)
	assert.False(t, product.IsActivePage, "restoring stock does not republish the product")
}

func TestReplaceReservationItems_ShortageLeavesEverything(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	wax := seedProduct(t, db, "Cera", "10000", intPtr(3))

	res, err := db.CreateReservationsFromCart(ctx, cart(
		models.CartLine{Type: models.ItemTypeProduct, ID: wax.ID, Quantity: 1},
	), time.Now())
	require.NoError(t, err)

	_, err = db.ReplaceReservationItems(ctx, res.MainReservationID, []models.ItemLine{
		{ItemType: models.ItemTypeProduct, ItemID: wax.ID, Quantity: 10},
	}, "", time.Now())
	assert.ErrorIs(t, err, ErrInsufficientStock)

	product, err := db.GetProduct(ctx, wax.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, *product.Stock)

	got, err := db.GetReservation(ctx, res.MainReservationID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)
}

func TestReplaceReservationItems_DeletedCatalogueEntry(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	r := booking(nil, nil, tomorrow(), "10:00")
	require.NoError(t, db.CreateReservation(ctx, r))

	upd, err := db.ReplaceReservationItems(ctx, r.ID, []models.ItemLine{
		{ItemType: models.ItemTypeOffer, ItemID: "retired", Quantity: 2, ItemName: "Combo verano", UnitPrice: price("12500")},
	}, "", time.Now())
	require.NoError(t, err)
	require.Len(t, upd.Reservation.Items, 1)
	assert.Equal(t, "Combo verano", upd.Reservation.Items[0].ItemName)
	assert.True(t, upd.Reservation.Total.Equal(price("25000")))

	_, err = db.ReplaceReservationItems(ctx, r.ID, []models.ItemLine{
		{ItemType: models.ItemTypeOffer, ItemID: "retired", Quantity: 1},
	}, "", time.Now())
	assert.Error(t, err)
}

func TestReplaceReservationItems_KeepingCodeDoesNotCountAgain(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	wax := seedProduct(t, db, "Cera", "10000", nil)
	code := seedDiscount(t, db, "FIX5", models.DiscountFixed, "5000", intPtr(1))

	c := cart(models.CartLine{Type: models.ItemTypeProduct, ID: wax.ID, Quantity: 1})
	c.DiscountCodeID = code.ID
	res, err := db.CreateReservationsFromCart(ctx, c, time.Now())
	require.NoError(t, err)

	upd, err := db.ReplaceReservationItems(ctx, res.MainReservationID, []models.ItemLine{
		{ItemType: models.ItemTypeProduct, ItemID: wax.ID, Quantity: 3},
	}, code.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, upd.Reservation.DiscountAmount.Equal(price("5000")))
	assert.True(t, upd.Reservation.Total.Equal(price("25000")))

	stored, err := db.GetDiscountCode(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	upd, err = db.ReplaceReservationItems(ctx, res.MainReservationID, []models.ItemLine{
		{ItemType: models.ItemTypeProduct, ItemID: wax.ID, Quantity: 3},
	}, "", time.Now())
	require.NoError(t, err)
	assert.Nil(t, upd.Reservation.DiscountCodeID)
	assert.True(t, upd.Reservation.Total.Equal(price("30000")))
}

func TestReplaceReservationItems_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.ReplaceReservationItems(context.Background(), "missing", nil, "", time.Now())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
