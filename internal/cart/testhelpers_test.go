package cart

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/internal/catalog"
	"github.com/chowline/chowline-backend/pkg/config"
	"github.com/chowline/chowline-backend/pkg/db/models"
	"github.com/chowline/chowline-backend/pkg/logger"
	"github.com/chowline/chowline-backend/pkg/metrics"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
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
	cartSessions := `
CREATE TABLE IF NOT EXISTS cart_sessions (
  id TEXT PRIMARY KEY,
  external_ref TEXT NOT NULL UNIQUE,
  owner_user_id TEXT,
  owner_token TEXT,
  merchant_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  merged_into_user_id TEXT,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartLines := `
CREATE TABLE IF NOT EXISTS cart_lines (
  id TEXT PRIMARY KEY,
  cart_session_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  line_total_cents INTEGER NOT NULL,
  customization TEXT,
  customization_fp TEXT NOT NULL DEFAULT '',
  special_instructions TEXT,
  removed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineIdentityIdx := `
CREATE UNIQUE INDEX IF NOT EXISTS uniq_cart_lines_identity
  ON cart_lines (cart_session_id, menu_item_id, customization_fp)
  WHERE removed = 0;`

	for _, stmt := range []string{merchants, menuItems, cartSessions, cartLines, lineIdentityIdx} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
}

func newCartTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	return newCartTestServiceWith(t, db, NewLineRepository(db), testLogger(), metrics.NewCartOpMetrics(nil))
}

func newCartTestServiceWith(t *testing.T, db *gorm.DB, lines LineStore, logg *logger.Logger, ops *metrics.CartOpMetrics) Service {
	t.Helper()

	svc, err := NewService(
		NewSessionRepository(db),
		lines,
		testTxRunner{db: db},
		catalog.NewRepository(db),
		logg,
		ops,
		config.CartConfig{TaxRate: "0.165", SessionTTL: 168 * time.Hour, MaxLineQuantity: 50},
	)
	require.NoError(t, err)
	return svc
}

func seedMerchant(t *testing.T, db *gorm.DB, active bool, deliveryFeeCents, minOrderCents int) uuid.UUID {
	t.Helper()

	merchant := models.Merchant{
		ID:               uuid.New(),
		Name:             "Test Kitchen",
		Active:           active,
		DeliveryFeeCents: deliveryFeeCents,
		MinOrderCents:    minOrderCents,
	}
	require.NoError(t, db.Create(&merchant).Error)
	return merchant.ID
}

func seedMenuItem(t *testing.T, db *gorm.DB, merchantID uuid.UUID, priceCents int, discounted *int) uuid.UUID {
	t.Helper()
	return seedMenuItemState(t, db, merchantID, priceCents, discounted, true, true)
}

func seedMenuItemState(t *testing.T, db *gorm.DB, merchantID uuid.UUID, priceCents int, discounted *int, inStock, active bool) uuid.UUID {
	t.Helper()

	item := models.MenuItem{
		ID:                   uuid.New(),
		MerchantID:           merchantID,
		Name:                 "Classic Burger",
		Description:          "quarter pounder",
		PriceCents:           priceCents,
		DiscountedPriceCents: discounted,
		InStock:              inStock,
		Active:               active,
	}
	require.NoError(t, db.Create(&item).Error)
	return item.ID
}

func loadSession(t *testing.T, db *gorm.DB, id uuid.UUID) models.CartSession {
	t.Helper()

	var session models.CartSession
	require.NoError(t, db.Where("id = ?", id).First(&session).Error)
	return session
}

func loadAllLines(t *testing.T, db *gorm.DB, sessionID uuid.UUID) []models.CartLine {
	t.Helper()

	var rows []models.CartLine
	require.NoError(t, db.Where("cart_session_id = ?", sessionID).Order("created_at ASC").Find(&rows).Error)
	return rows
}
