package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is a purchasable catalog entry scoped to one merchant.
type MenuItem struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MerchantID           uuid.UUID `gorm:"column:merchant_id;type:uuid;not null"`
	Name                 string    `gorm:"column:name;not null"`
	Description          string    `gorm:"column:description"`
	PriceCents           int       `gorm:"column:price_cents;not null"`
	DiscountedPriceCents *int      `gorm:"column:discounted_price_cents"`
	InStock              bool      `gorm:"column:in_stock;not null"`
	Active               bool      `gorm:"column:active;not null"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
