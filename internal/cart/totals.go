package cart

import (
	"github.com/shopspring/decimal"

	"github.com/chowline/chowline-backend/internal/catalog"
	"github.com/chowline/chowline-backend/pkg/db/models"
)

// Summary is the fully computed money view of a cart. All amounts are integer
// cents; the tax multiplication runs through decimal arithmetic so repeated
// additions never drift.
type Summary struct {
	SubtotalCents    int  `json:"subtotal_cents"`
	TaxCents         int  `json:"tax_cents"`
	DeliveryFeeCents int  `json:"delivery_fee_cents"`
	TotalCents       int  `json:"total_cents"`
	ItemCount        int  `json:"item_count"`
	MinOrderCents    int  `json:"min_order_cents"`
	MeetsMinOrder    bool `json:"meets_min_order"`
}

// ComputeSummary derives the summary for a set of active lines and the
// merchant they belong to. Pure: no I/O, no clock.
func ComputeSummary(lines []models.CartLine, merchant *catalog.MerchantDTO, taxRate decimal.Decimal) Summary {
	var subtotal, itemCount int
	for _, line := range lines {
		if line.Removed {
			continue
		}
		subtotal += line.LineTotalCents
		itemCount += line.Quantity
	}

	tax := int(decimal.NewFromInt(int64(subtotal)).Mul(taxRate).Round(0).IntPart())

	deliveryFee := 0
	minOrder := 0
	if merchant != nil {
		deliveryFee = merchant.DeliveryFeeCents
		minOrder = merchant.MinOrderCents
	}

	return Summary{
		SubtotalCents:    subtotal,
		TaxCents:         tax,
		DeliveryFeeCents: deliveryFee,
		TotalCents:       subtotal + tax + deliveryFee,
		ItemCount:        itemCount,
		MinOrderCents:    minOrder,
		MeetsMinOrder:    subtotal >= minOrder,
	}
}
