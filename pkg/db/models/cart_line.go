package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chowline/chowline-backend/pkg/types"
)

// CartLine persists one distinct (menu item, customization) entry of a cart
// session. Name, description and price are snapshotted at add-time so later
// catalog edits never rewrite a pending cart. LineTotalCents is recomputed on
// every quantity change; no code path updates one without the other.
type CartLine struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartSessionID       uuid.UUID           `gorm:"column:cart_session_id;type:uuid;not null"`
	MenuItemID          uuid.UUID           `gorm:"column:menu_item_id;type:uuid;not null"`
	Name                string              `gorm:"column:name;not null"`
	Description         string              `gorm:"column:description"`
	Quantity            int                 `gorm:"column:quantity;not null"`
	UnitPriceCents      int                 `gorm:"column:unit_price_cents;not null"`
	LineTotalCents      int                 `gorm:"column:line_total_cents;not null"`
	Customization       types.Customization `gorm:"column:customization"`
	CustomizationFP     string              `gorm:"column:customization_fp;not null;default:''"`
	SpecialInstructions string              `gorm:"column:special_instructions"`
	Removed             bool                `gorm:"column:removed;not null;default:false"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
