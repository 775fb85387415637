package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/pkg/db/models"
	"github.com/chowline/chowline-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	merchants := `
CREATE TABLE IF NOT EXISTS merchants (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  min_order_cents INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	menuItems := `
CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL,
  discounted_price_cents INTEGER,
  in_stock INTEGER NOT NULL DEFAULT 1,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{merchants, menuItems} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func createMerchant(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	merchant := models.Merchant{
		ID:               uuid.New(),
		Name:             "Noodle House",
		Active:           true,
		DeliveryFeeCents: 200,
		MinOrderCents:    1500,
	}
	require.NoError(t, db.Create(&merchant).Error)
	return merchant.ID
}

func createItem(t *testing.T, db *gorm.DB, merchantID uuid.UUID, name string, priceCents int, active bool, createdAt time.Time) uuid.UUID {
	t.Helper()

	item := models.MenuItem{
		ID:         uuid.New(),
		MerchantID: merchantID,
		Name:       name,
		PriceCents: priceCents,
		InStock:    true,
		Active:     active,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&item).Error)
	return item.ID
}

func TestRepositoryGetItemScopedToMerchant(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := createMerchant(t, db)
	itemID := createItem(t, db, merchantID, "Pad Thai", 1400, true, time.Now())

	item, err := repo.GetItem(ctx, merchantID, itemID)
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", item.Name)
	assert.Equal(t, 1400, item.PriceCents)
	assert.Equal(t, 1400, item.EffectivePriceCents())

	// The same item id under a different merchant must not resolve.
	_, err = repo.GetItem(ctx, uuid.New(), itemID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestItemDTOEffectivePricePrefersDiscount(t *testing.T) {
	discounted := 999
	item := ItemDTO{PriceCents: 1400, DiscountedPriceCents: &discounted}
	assert.Equal(t, 999, item.EffectivePriceCents())
}

func TestRepositoryGetMerchant(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := createMerchant(t, db)

	merchant, err := repo.GetMerchant(ctx, merchantID)
	require.NoError(t, err)
	assert.Equal(t, "Noodle House", merchant.Name)
	assert.Equal(t, 200, merchant.DeliveryFeeCents)
	assert.Equal(t, 1500, merchant.MinOrderCents)
	assert.True(t, merchant.Active)

	_, err = repo.GetMerchant(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListItemsPaginates(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	merchantID := createMerchant(t, db)
	base := time.Now().UTC().Add(-time.Hour)
	createItem(t, db, merchantID, "Spring Rolls", 600, true, base)
	createItem(t, db, merchantID, "Pad Thai", 1400, true, base.Add(time.Minute))
	createItem(t, db, merchantID, "Green Curry", 1600, true, base.Add(2*time.Minute))
	createItem(t, db, merchantID, "Retired Dish", 900, false, base.Add(3*time.Minute))

	page, next, err := repo.ListItems(ctx, merchantID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Green Curry", page[0].Name)
	assert.Equal(t, "Pad Thai", page[1].Name)
	require.NotEmpty(t, next)

	rest, last, err := repo.ListItems(ctx, merchantID, pagination.Params{Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Spring Rolls", rest[0].Name)
	assert.Empty(t, last)
}

func TestInactiveFlagsPersistOnCreate(t *testing.T) {
	db := setupCatalogTestDB(t)

	// The table defaults lean active; explicit false must still win on insert.
	merchant := models.Merchant{ID: uuid.New(), Name: "Shuttered Deli", Active: false}
	require.NoError(t, db.Create(&merchant).Error)

	var gotMerchant models.Merchant
	require.NoError(t, db.Where("id = ?", merchant.ID).First(&gotMerchant).Error)
	assert.False(t, gotMerchant.Active)

	item := models.MenuItem{
		ID:         uuid.New(),
		MerchantID: merchant.ID,
		Name:       "Ghost Special",
		PriceCents: 700,
		InStock:    false,
		Active:     false,
	}
	require.NoError(t, db.Create(&item).Error)

	var gotItem models.MenuItem
	require.NoError(t, db.Where("id = ?", item.ID).First(&gotItem).Error)
	assert.False(t, gotItem.Active)
	assert.False(t, gotItem.InStock)
}

func TestRepositoryListItemsRejectsBadCursor(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)

	_, _, err := repo.ListItems(context.Background(), uuid.New(), pagination.Params{Cursor: "not-base64!"})
	require.Error(t, err)
}
