package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/chowline/chowline-backend/internal/catalog"
	"github.com/chowline/chowline-backend/pkg/db/models"
)

func taxRate(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	rate, err := decimal.NewFromString(value)
	assert.NoError(t, err)
	return rate
}

func TestComputeSummaryEmptyCart(t *testing.T) {
	summary := ComputeSummary(nil, nil, taxRate(t, "0.165"))
	assert.Equal(t, Summary{MeetsMinOrder: true}, summary)
}

func TestComputeSummaryAddsFeesAndTax(t *testing.T) {
	lines := []models.CartLine{
		{Quantity: 2, LineTotalCents: 2500},
		{Quantity: 1, LineTotalCents: 450},
	}
	merchant := &catalog.MerchantDTO{DeliveryFeeCents: 300, MinOrderCents: 2000}

	summary := ComputeSummary(lines, merchant, taxRate(t, "0.165"))

	assert.Equal(t, 2950, summary.SubtotalCents)
	// 2950 * 0.165 = 486.75, rounded half away from zero.
	assert.Equal(t, 487, summary.TaxCents)
	assert.Equal(t, 300, summary.DeliveryFeeCents)
	assert.Equal(t, 3737, summary.TotalCents)
	assert.Equal(t, 3, summary.ItemCount)
	assert.True(t, summary.MeetsMinOrder)
}

func TestComputeSummaryTaxNeverDrifts(t *testing.T) {
	// One 1234-cent line repeated: tax of the sum, not the sum of
	// per-line roundings.
	lines := []models.CartLine{
		{Quantity: 1, LineTotalCents: 1234},
		{Quantity: 1, LineTotalCents: 1234},
		{Quantity: 1, LineTotalCents: 1234},
	}

	summary := ComputeSummary(lines, nil, taxRate(t, "0.165"))

	assert.Equal(t, 3702, summary.SubtotalCents)
	// 3702 * 0.165 = 610.83 -> 611; three per-line roundings would give 612.
	assert.Equal(t, 611, summary.TaxCents)
}

func TestComputeSummarySkipsRemovedLines(t *testing.T) {
	lines := []models.CartLine{
		{Quantity: 2, LineTotalCents: 1000},
		{Quantity: 5, LineTotalCents: 9000, Removed: true},
	}

	summary := ComputeSummary(lines, nil, taxRate(t, "0"))

	assert.Equal(t, 1000, summary.SubtotalCents)
	assert.Equal(t, 0, summary.TaxCents)
	assert.Equal(t, 2, summary.ItemCount)
}

func TestComputeSummaryMinOrderBoundary(t *testing.T) {
	merchant := &catalog.MerchantDTO{MinOrderCents: 1500}

	below := ComputeSummary([]models.CartLine{{Quantity: 1, LineTotalCents: 1499}}, merchant, taxRate(t, "0"))
	assert.False(t, below.MeetsMinOrder)

	exact := ComputeSummary([]models.CartLine{{Quantity: 1, LineTotalCents: 1500}}, merchant, taxRate(t, "0"))
	assert.True(t, exact.MeetsMinOrder)
}
