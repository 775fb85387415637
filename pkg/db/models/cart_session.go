package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/chowline/chowline-backend/pkg/enums"
	"github.com/chowline/chowline-backend/pkg/types"
)

// CartSession scopes a cart to one owner and one merchant. Ownership is stored
// in two nullable columns; exactly one is set at any time and the translation
// to the CartOwner sum type happens at the store boundary.
type CartSession struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalRef      string                  `gorm:"column:external_ref;not null;uniqueIndex"`
	OwnerUserID      *uuid.UUID              `gorm:"column:owner_user_id;type:uuid"`
	OwnerToken       *string                 `gorm:"column:owner_token"`
	MerchantID       uuid.UUID               `gorm:"column:merchant_id;type:uuid;not null"`
	Status           enums.CartSessionStatus `gorm:"column:status;not null;default:'active'"`
	MergedIntoUserID *uuid.UUID              `gorm:"column:merged_into_user_id;type:uuid"`
	ExpiresAt        time.Time               `gorm:"column:expires_at;not null"`
	Lines            []CartLine              `gorm:"foreignKey:CartSessionID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// Owner reconstructs the CartOwner sum type from the persisted columns.
func (s *CartSession) Owner() types.CartOwner {
	if s.OwnerUserID != nil && *s.OwnerUserID != uuid.Nil {
		return types.UserOwner(*s.OwnerUserID)
	}
	if s.OwnerToken != nil {
		return types.AnonymousOwner(*s.OwnerToken)
	}
	return types.CartOwner{}
}

// IsExpired reports whether the session has lapsed at the given instant.
func (s *CartSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
