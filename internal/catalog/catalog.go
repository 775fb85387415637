package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ItemDTO is the catalog view of a menu item the cart engine consumes.
type ItemDTO struct {
	ID                   uuid.UUID
	MerchantID           uuid.UUID
	Name                 string
	Description          string
	PriceCents           int
	DiscountedPriceCents *int
	InStock              bool
	Active               bool
}

// EffectivePriceCents returns the discounted price when one exists, else the
// list price. This is the value snapshotted onto cart lines at add-time.
func (i ItemDTO) EffectivePriceCents() int {
	if i.DiscountedPriceCents != nil {
		return *i.DiscountedPriceCents
	}
	return i.PriceCents
}

// MerchantDTO is the catalog view of a merchant the cart engine consumes.
type MerchantDTO struct {
	ID               uuid.UUID
	Name             string
	Active           bool
	DeliveryFeeCents int
	MinOrderCents    int
}

// Service is the read-only catalog lookup surface.
type Service interface {
	GetItem(ctx context.Context, merchantID, itemID uuid.UUID) (*ItemDTO, error)
	GetMerchant(ctx context.Context, merchantID uuid.UUID) (*MerchantDTO, error)
}
