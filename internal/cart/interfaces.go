package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/pkg/db/models"
	"github.com/chowline/chowline-backend/pkg/types"
)

// SessionStore defines the persistence surface for cart sessions.
type SessionStore interface {
	WithTx(tx *gorm.DB) SessionStore
	// FindActive returns the most-recently-updated unexpired active session for
	// the owner and merchant, plus the number of extra duplicates found (always
	// zero under correct use; callers log non-zero as an invariant violation).
	FindActive(ctx context.Context, owner types.CartOwner, merchantID uuid.UUID) (*models.CartSession, int, error)
	// FindActiveLatest returns the owner's most-recently-updated active session
	// across all merchants.
	FindActiveLatest(ctx context.Context, owner types.CartOwner) (*models.CartSession, error)
	ListActiveByOwner(ctx context.Context, owner types.CartOwner) ([]models.CartSession, error)
	Create(ctx context.Context, owner types.CartOwner, merchantID uuid.UUID, ttl time.Duration) (*models.CartSession, error)
	// TransferOwnership rewrites an anonymous session to user ownership. The
	// transition is one-way; user-owned sessions are never handed back.
	TransferOwnership(ctx context.Context, sessionID, userID uuid.UUID) error
	MarkMerged(ctx context.Context, sessionID, userID uuid.UUID) error
	Touch(ctx context.Context, sessionID uuid.UUID) error
}

// LineStore defines the persistence surface for cart lines.
type LineStore interface {
	WithTx(tx *gorm.DB) LineStore
	ListActive(ctx context.Context, sessionID uuid.UUID) ([]models.CartLine, error)
	FindByItem(ctx context.Context, sessionID, menuItemID uuid.UUID, fingerprint string) (*models.CartLine, error)
	Insert(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	// UpdateQuantity soft-deletes on zero, otherwise clamps to [1, maxQty] and
	// recomputes the line total in the same write.
	UpdateQuantity(ctx context.Context, line *models.CartLine, quantity, maxQty int) error
	// FindOwned loads a line together with its parent session, restricted to
	// sessions the owner controls. Missing and foreign lines are
	// indistinguishable to the caller.
	FindOwned(ctx context.Context, lineID uuid.UUID, owner types.CartOwner) (*models.CartLine, *models.CartSession, error)
	// ReassignSession moves all active lines from one session to another,
	// folding quantity into any destination line with the same
	// (menu item, customization) identity. Returns the number of distinct
	// lines moved or folded.
	ReassignSession(ctx context.Context, fromSessionID, toSessionID uuid.UUID, maxQty int) (int, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
