package database

import (
	"context"
	"testing"
	"time"

	"barberia/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarberCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	b := &models.Barber{Name: "Carlos", Specialty: "Fade", IsActive: true, SortOrder: 2}
	require.NoError(t, db.CreateBarber(ctx, b))
	require.NoError(t, db.CreateBarber(ctx, &models.Barber{Name: "Luis", IsActive: false, SortOrder: 1}))

	all, err := db.ListBarbers(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Luis", all[0].Name)

	active, err := db.ListBarbers(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)

	b.Specialty = "Barba"
	require.NoError(t, db.UpdateBarber(ctx, b))
	got, err := db.GetBarber(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Barba", got.Specialty)

	require.NoError(t, db.DeleteBarber(ctx, b.ID))
	_, err = db.GetBarber(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBarberNotFound)
	assert.ErrorIs(t, db.UpdateBarber(ctx, b), ErrBarberNotFound)
}

func TestServiceCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	s := seedService(t, db, "Corte", "25000.50")
	got, err := db.GetService(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(price("25000.50")))

	s.IsActive = false
	require.NoError(t, db.UpdateService(ctx, s))
	active, err := db.ListServices(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	r := booking(&s.ID, nil, tomorrow(), "10:00")
	require.NoError(t, db.CreateReservation(ctx, r))
	require.NoError(t, db.DeleteService(ctx, s.ID))
	_, err = db.GetReservation(ctx, r.ID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
	assert.ErrorIs(t, db.DeleteService(ctx, s.ID), ErrServiceNotFound)
}

func TestOfferCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	until := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)

	o := &models.Offer{
		Title:         "Combo",
		Price:         price("30000"),
		OriginalPrice: decimal.NewNullDecimal(price("40000")),
		IsActive:      true,
		ValidUntil:    &until,
	}
	require.NoError(t, db.CreateOffer(ctx, o))

	got, err := db.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.OriginalPrice.Valid)
	assert.True(t, got.OriginalPrice.Decimal.Equal(price("40000")))
	require.NotNil(t, got.ValidUntil)
	assert.True(t, got.ValidUntil.Equal(until))
	assert.True(t, got.Current(time.Now()))

	o.OriginalPrice = decimal.NullDecimal{}
	require.NoError(t, db.UpdateOffer(ctx, o))
	got, err = db.GetOffer(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, got.OriginalPrice.Valid)

	list, err := db.ListOffers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, db.DeleteOffer(ctx, o.ID))
	assert.ErrorIs(t, db.DeleteOffer(ctx, o.ID), ErrOfferNotFound)
}

func TestDiscountCodeCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := seedDiscount(t, db, "  save20 ", models.DiscountPercentage, "20", nil)
	assert.Equal(t, "SAVE20", d.Code)

	got, err := db.GetDiscountByCode(ctx, "Save20")
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Nil(t, got.UsageLimit)
	assert.False(t, got.MaxDiscount.Valid)

	dup := &models.DiscountCode{Code: "SAVE20", DiscountType: models.DiscountFixed, DiscountValue: price("1"), IsActive: true}
	assert.ErrorIs(t, db.CreateDiscountCode(ctx, dup), ErrDuplicateCode)

	d.MaxDiscount = decimal.NewNullDecimal(price("15"))
	d.UsageLimit = intPtr(3)
	require.NoError(t, db.UpdateDiscountCode(ctx, d))
	got, err = db.GetDiscountCode(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.MaxDiscount.Decimal.Equal(price("15")))
	assert.Equal(t, 3, *got.UsageLimit)

	list, err := db.ListDiscountCodes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, db.DeleteDiscountCode(ctx, d.ID))
	_, err = db.GetDiscountByCode(ctx, "SAVE20")
	assert.ErrorIs(t, err, ErrDiscountNotFound)
}

func TestSettings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.GetSetting(ctx, "whatsapp")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	require.NoError(t, db.UpsertSetting(ctx, &models.Setting{Key: "whatsapp", Value: "573001234567"}))
	require.NoError(t, db.UpsertSetting(ctx, &models.Setting{Key: "whatsapp", Value: "573009999999"}))
	require.NoError(t, db.UpsertSetting(ctx, &models.Setting{Key: "address", Value: "Calle 1"}))

	got, err := db.GetSetting(ctx, "whatsapp")
	require.NoError(t, err)
	assert.Equal(t, "573009999999", got.Value)

	list, err := db.ListSettings(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "address", list[0].Key)
}

func TestUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	u := &models.User{Username: "admin", PasswordHash: "hash", Role: models.RoleAdmin}
	require.NoError(t, db.CreateUser(ctx, u))
	assert.ErrorIs(t, db.CreateUser(ctx, &models.User{Username: "admin", PasswordHash: "x", Role: models.RoleStaff}), ErrDuplicateUsername)

	byName, err := db.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, "hash", byName.PasswordHash)

	byID, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, byID.Role)

	_, err = db.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	n, err = db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
