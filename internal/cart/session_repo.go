package cart

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/pkg/db/models"
	"github.com/chowline/chowline-backend/pkg/enums"
	"github.com/chowline/chowline-backend/pkg/types"
)

// SessionRepository manages persistent cart sessions.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository binds the repository to the provided DB handle.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *SessionRepository) WithTx(tx *gorm.DB) SessionStore {
	if tx == nil {
		return r
	}
	return &SessionRepository{db: tx}
}

func ownerScope(q *gorm.DB, owner types.CartOwner) *gorm.DB {
	if owner.IsUser() {
		return q.Where("owner_user_id = ?", owner.UserID())
	}
	return q.Where("owner_token = ?", owner.Token())
}

func (r *SessionRepository) activeScope(ctx context.Context, owner types.CartOwner) *gorm.DB {
	q := r.db.WithContext(ctx).
		Where("status = ?", enums.CartSessionStatusActive).
		Where("expires_at > ?", time.Now())
	return ownerScope(q, owner)
}

// FindActive returns the canonical active session for (owner, merchant). The
// unique index makes duplicates impossible under correct use; if any exist the
// most recently updated row wins and the surplus count is reported for logging.
func (r *SessionRepository) FindActive(ctx context.Context, owner types.CartOwner, merchantID uuid.UUID) (*models.CartSession, int, error) {
	var rows []models.CartSession
	err := r.activeScope(ctx, owner).
		Where("merchant_id = ?", merchantID).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, gorm.ErrRecordNotFound
	}
	return &rows[0], len(rows) - 1, nil
}

// FindActiveLatest returns the owner's most recently touched active session
// across all merchants.
func (r *SessionRepository) FindActiveLatest(ctx context.Context, owner types.CartOwner) (*models.CartSession, error) {
	var session models.CartSession
	err := r.activeScope(ctx, owner).
		Order("updated_at DESC").
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListActiveByOwner returns every unexpired active session the owner holds,
// one per merchant.
func (r *SessionRepository) ListActiveByOwner(ctx context.Context, owner types.CartOwner) ([]models.CartSession, error) {
	var rows []models.CartSession
	err := r.activeScope(ctx, owner).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a fresh active session for (owner, merchant) with the given TTL.
func (r *SessionRepository) Create(ctx context.Context, owner types.CartOwner, merchantID uuid.UUID, ttl time.Duration) (*models.CartSession, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	ref, err := newExternalRef()
	if err != nil {
		return nil, err
	}

	session := &models.CartSession{
		ID:          uuid.New(),
		ExternalRef: ref,
		MerchantID:  merchantID,
		Status:      enums.CartSessionStatusActive,
		ExpiresAt:   time.Now().Add(ttl),
	}
	if owner.IsUser() {
		userID := owner.UserID()
		session.OwnerUserID = &userID
	} else {
		token := owner.Token()
		session.OwnerToken = &token
	}

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// TransferOwnership rewrites an anonymous active session to user ownership.
func (r *SessionRepository) TransferOwnership(ctx context.Context, sessionID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartSession{}).
		Where("id = ? AND owner_token IS NOT NULL AND status = ?", sessionID, enums.CartSessionStatusActive).
		Updates(map[string]any{
			"owner_user_id": userID,
			"owner_token":   nil,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkMerged closes a session that was folded into a user's cart.
func (r *SessionRepository) MarkMerged(ctx context.Context, sessionID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"status":              enums.CartSessionStatusMerged,
			"merged_into_user_id": userID,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Touch bumps updated_at so most-recent ordering stays meaningful.
func (r *SessionRepository) Touch(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartSession{}).
		Where("id = ?", sessionID).
		UpdateColumn("updated_at", time.Now()).Error
}

func newExternalRef() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating cart ref: %w", err)
	}
	return "cart_" + hex.EncodeToString(buf), nil
}
