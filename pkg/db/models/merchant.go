package models

import (
	"time"

	"github.com/google/uuid"
)

// Merchant is the catalog-side record for a restaurant the cart engine sells
// from. Only the fields the engine consumes live here.
type Merchant struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string    `gorm:"column:name;not null"`
	Active           bool      `gorm:"column:active;not null"`
	DeliveryFeeCents int       `gorm:"column:delivery_fee_cents;not null;default:0"`
	MinOrderCents    int       `gorm:"column:min_order_cents;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
