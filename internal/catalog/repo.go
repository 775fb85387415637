package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/internal/repo"
	"github.com/chowline/chowline-backend/pkg/db/models"
	"github.com/chowline/chowline-backend/pkg/pagination"
)

// Repository serves catalog lookups from the merchants/menu_items tables.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// GetItem loads one menu item scoped to its merchant.
func (r *Repository) GetItem(ctx context.Context, merchantID, itemID uuid.UUID) (*ItemDTO, error) {
	var item models.MenuItem
	err := r.base.DB(ctx).
		Where("id = ? AND merchant_id = ?", itemID, merchantID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	dto := itemDTO(&item)
	return &dto, nil
}

// GetMerchant loads the merchant metadata used for session creation and totals.
func (r *Repository) GetMerchant(ctx context.Context, merchantID uuid.UUID) (*MerchantDTO, error) {
	var merchant models.Merchant
	err := r.base.DB(ctx).
		Where("id = ?", merchantID).
		First(&merchant).Error
	if err != nil {
		return nil, err
	}
	return &MerchantDTO{
		ID:               merchant.ID,
		Name:             merchant.Name,
		Active:           merchant.Active,
		DeliveryFeeCents: merchant.DeliveryFeeCents,
		MinOrderCents:    merchant.MinOrderCents,
	}, nil
}

// ListItems pages through a merchant's active menu, newest first, using cursor
// pagination. Returns the next cursor or empty when the page is the last.
func (r *Repository) ListItems(ctx context.Context, merchantID uuid.UUID, params pagination.Params) ([]ItemDTO, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	limit := pagination.LimitWithBuffer(params.Limit)

	q := r.base.DB(ctx).
		Where("merchant_id = ? AND active = ?", merchantID, true).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.MenuItem
	if err := q.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) == limit {
		rows = rows[:limit-1]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	items := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		items = append(items, itemDTO(&rows[i]))
	}
	return items, next, nil
}

func itemDTO(item *models.MenuItem) ItemDTO {
	return ItemDTO{
		ID:                   item.ID,
		MerchantID:           item.MerchantID,
		Name:                 item.Name,
		Description:          item.Description,
		PriceCents:           item.PriceCents,
		DiscountedPriceCents: item.DiscountedPriceCents,
		InStock:              item.InStock,
		Active:               item.Active,
	}
}
