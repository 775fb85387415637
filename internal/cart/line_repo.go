package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/pkg/db/models"
	"github.com/chowline/chowline-backend/pkg/enums"
	"github.com/chowline/chowline-backend/pkg/types"
)

// LineRepository manages persistent cart lines.
type LineRepository struct {
	db *gorm.DB
}

// NewLineRepository binds the repository to the provided DB handle.
func NewLineRepository(db *gorm.DB) *LineRepository {
	return &LineRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *LineRepository) WithTx(tx *gorm.DB) LineStore {
	if tx == nil {
		return r
	}
	return &LineRepository{db: tx}
}

// ListActive returns the non-removed lines of a session, oldest first.
func (r *LineRepository) ListActive(ctx context.Context, sessionID uuid.UUID) ([]models.CartLine, error) {
	var rows []models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_session_id = ? AND removed = ?", sessionID, false).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByItem performs the exact-identity lookup used for dedup before insert.
func (r *LineRepository) FindByItem(ctx context.Context, sessionID, menuItemID uuid.UUID, fingerprint string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("cart_session_id = ? AND menu_item_id = ? AND customization_fp = ? AND removed = ?",
			sessionID, menuItemID, fingerprint, false).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Insert persists a new line. The caller has already snapshotted name,
// description and unit price; the line total is derived here so the two can
// never drift apart.
func (r *LineRepository) Insert(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	line.CustomizationFP = line.Customization.Fingerprint()
	line.LineTotalCents = line.UnitPriceCents * line.Quantity
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateQuantity applies a quantity change: zero soft-deletes, anything else is
// clamped to [1, maxQty] with the line total recomputed in the same write.
func (r *LineRepository) UpdateQuantity(ctx context.Context, line *models.CartLine, quantity, maxQty int) error {
	if quantity <= 0 {
		line.Removed = true
		return r.db.WithContext(ctx).
			Model(&models.CartLine{}).
			Where("id = ?", line.ID).
			Updates(map[string]any{
				"removed":    true,
				"updated_at": time.Now(),
			}).Error
	}

	if quantity > maxQty {
		quantity = maxQty
	}
	line.Quantity = quantity
	line.LineTotalCents = line.UnitPriceCents * quantity
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", line.ID).
		Updates(map[string]any{
			"quantity":         line.Quantity,
			"line_total_cents": line.LineTotalCents,
			"updated_at":       time.Now(),
		}).Error
}

// FindOwned loads a line and its parent session when the session belongs to the
// owner and is still live. Lines of other owners surface as not-found.
func (r *LineRepository) FindOwned(ctx context.Context, lineID uuid.UUID, owner types.CartOwner) (*models.CartLine, *models.CartSession, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("id = ? AND removed = ?", lineID, false).
		First(&line).Error
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Where("id = ?", line.CartSessionID).
		Where("status = ?", enums.CartSessionStatusActive).
		Where("expires_at > ?", time.Now())
	q = ownerScope(q, owner)

	var session models.CartSession
	if err := q.First(&session).Error; err != nil {
		return nil, nil, err
	}
	return &line, &session, nil
}

// ReassignSession bulk-moves the active lines of fromSessionID onto
// toSessionID. A line whose (menu item, customization) identity already exists
// on the destination is folded in by summing quantities (capped at maxQty) and
// the source line is retired; everything else is re-pointed wholesale. Returns
// the number of distinct lines moved or folded.
func (r *LineRepository) ReassignSession(ctx context.Context, fromSessionID, toSessionID uuid.UUID, maxQty int) (int, error) {
	fromLines, err := r.ListActive(ctx, fromSessionID)
	if err != nil {
		return 0, err
	}
	if len(fromLines) == 0 {
		return 0, nil
	}

	toLines, err := r.ListActive(ctx, toSessionID)
	if err != nil {
		return 0, err
	}
	existing := make(map[string]*models.CartLine, len(toLines))
	for i := range toLines {
		existing[lineIdentity(&toLines[i])] = &toLines[i]
	}

	moved := 0
	for i := range fromLines {
		source := &fromLines[i]

		if target, ok := existing[lineIdentity(source)]; ok {
			if err := r.UpdateQuantity(ctx, target, target.Quantity+source.Quantity, maxQty); err != nil {
				return moved, err
			}
			// Source is consumed by the fold; retire it on the old session.
			if err := r.UpdateQuantity(ctx, source, 0, maxQty); err != nil {
				return moved, err
			}
			moved++
			continue
		}

		err := r.db.WithContext(ctx).
			Model(&models.CartLine{}).
			Where("id = ?", source.ID).
			Updates(map[string]any{
				"cart_session_id": toSessionID,
				"updated_at":      time.Now(),
			}).Error
		if err != nil {
			return moved, err
		}
		source.CartSessionID = toSessionID
		existing[lineIdentity(source)] = source
		moved++
	}
	return moved, nil
}

func lineIdentity(line *models.CartLine) string {
	return line.MenuItemID.String() + "|" + line.CustomizationFP
}
