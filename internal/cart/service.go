package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chowline/chowline-backend/internal/catalog"
	"github.com/chowline/chowline-backend/pkg/config"
	"github.com/chowline/chowline-backend/pkg/db"
	"github.com/chowline/chowline-backend/pkg/db/models"
	pkgerrors "github.com/chowline/chowline-backend/pkg/errors"
	"github.com/chowline/chowline-backend/pkg/logger"
	"github.com/chowline/chowline-backend/pkg/metrics"
	"github.com/chowline/chowline-backend/pkg/types"
)

// Service exposes the cart engine operations. Every mutation runs as one
// transaction; a partially applied operation is never observable.
type Service interface {
	GetCart(ctx context.Context, owner types.CartOwner, merchantID *uuid.UUID) (*Snapshot, error)
	AddItem(ctx context.Context, owner types.CartOwner, input AddItemInput) (*Snapshot, error)
	UpdateItem(ctx context.Context, owner types.CartOwner, lineID uuid.UUID, quantity int) (*Snapshot, error)
	RemoveItem(ctx context.Context, owner types.CartOwner, lineID uuid.UUID) (*Snapshot, error)
	MergeOnLogin(ctx context.Context, userID uuid.UUID, anonymousToken string) (*MergeResult, error)
}

// AddItemInput captures the payload of an add-to-cart request.
type AddItemInput struct {
	MerchantID          uuid.UUID
	MenuItemID          uuid.UUID
	Quantity            int
	Customization       types.Customization
	SpecialInstructions string
}

type service struct {
	sessions SessionStore
	lines    LineStore
	tx       txRunner
	catalog  catalog.Service
	logg     *logger.Logger
	ops      *metrics.CartOpMetrics

	taxRate    decimal.Decimal
	sessionTTL time.Duration
	maxLineQty int
}

// NewService builds the cart engine backed by the provided stack.
func NewService(
	sessions SessionStore,
	lines LineStore,
	tx txRunner,
	cat catalog.Service,
	logg *logger.Logger,
	ops *metrics.CartOpMetrics,
	cfg config.CartConfig,
) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if lines == nil {
		return nil, fmt.Errorf("line store required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	taxRate, err := cfg.TaxRateDecimal()
	if err != nil {
		return nil, err
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session TTL must be positive")
	}
	if cfg.MaxLineQuantity <= 0 {
		return nil, fmt.Errorf("max line quantity must be positive")
	}
	return &service{
		sessions:   sessions,
		lines:      lines,
		tx:         tx,
		catalog:    cat,
		logg:       logg,
		ops:        ops,
		taxRate:    taxRate,
		sessionTTL: cfg.SessionTTL,
		maxLineQty: cfg.MaxLineQuantity,
	}, nil
}

// GetCart resolves the owner's cart for a merchant, or the most recently
// touched cart across merchants when none is given. No active session yields
// an empty snapshot, not an error.
func (s *service) GetCart(ctx context.Context, owner types.CartOwner, merchantID *uuid.UUID) (snapshot *Snapshot, err error) {
	defer s.observe("get_cart", time.Now(), &err)

	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	var session *models.CartSession
	if merchantID != nil {
		session, err = s.findActive(ctx, s.sessions, owner, *merchantID)
	} else {
		session, err = s.sessions.FindActiveLatest(ctx, owner)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptySnapshot(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart session")
	}

	return s.buildSnapshot(ctx, s.lines, session)
}

// AddItem adds a menu item to the owner's cart for the merchant, creating the
// session lazily on first use. Quantities beyond the cap are silently clamped,
// never rejected.
func (s *service) AddItem(ctx context.Context, owner types.CartOwner, input AddItemInput) (snapshot *Snapshot, err error) {
	defer s.observe("add_item", time.Now(), &err)

	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.MerchantID == uuid.Nil || input.MenuItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "merchant id and menu item id are required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	item, err := s.lookupItem(ctx, input.MerchantID, input.MenuItemID)
	if err != nil {
		return nil, err
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		lines := s.lines.WithTx(tx)

		session, err := s.findOrCreateSession(ctx, sessions, owner, input.MerchantID)
		if err != nil {
			return err
		}

		if err := s.upsertLine(ctx, tx, lines, session.ID, item, input); err != nil {
			return err
		}

		if err := sessions.Touch(ctx, session.ID); err != nil {
			return err
		}

		snapshot, err = s.buildSnapshot(ctx, lines, session)
		return err
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	return snapshot, nil
}

// UpdateItem changes a line's quantity. Zero soft-deletes the line. Ownership
// mismatches surface as not-found so the existence of other carts never leaks.
func (s *service) UpdateItem(ctx context.Context, owner types.CartOwner, lineID uuid.UUID, quantity int) (snapshot *Snapshot, err error) {
	defer s.observe("update_item", time.Now(), &err)
	return s.changeQuantity(ctx, owner, lineID, quantity)
}

// RemoveItem drops a line from the cart. Equivalent to a zero-quantity update.
func (s *service) RemoveItem(ctx context.Context, owner types.CartOwner, lineID uuid.UUID) (snapshot *Snapshot, err error) {
	defer s.observe("remove_item", time.Now(), &err)
	return s.changeQuantity(ctx, owner, lineID, 0)
}

func (s *service) changeQuantity(ctx context.Context, owner types.CartOwner, lineID uuid.UUID, quantity int) (snapshot *Snapshot, err error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if lineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id is required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		lines := s.lines.WithTx(tx)

		line, session, err := lines.FindOwned(ctx, lineID, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
			}
			return err
		}

		if err := lines.UpdateQuantity(ctx, line, quantity, s.maxLineQty); err != nil {
			return err
		}

		if err := sessions.Touch(ctx, session.ID); err != nil {
			return err
		}

		snapshot, err = s.buildSnapshot(ctx, lines, session)
		return err
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	return snapshot, nil
}

// MergeOnLogin folds every active anonymous cart into the user's carts. Runs
// as a single transaction across all affected sessions: either every merchant
// merges or none do. Calling it again for the same pair is a no-op.
func (s *service) MergeOnLogin(ctx context.Context, userID uuid.UUID, anonymousToken string) (result *MergeResult, err error) {
	defer s.observe("merge_on_login", time.Now(), &err)

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(anonymousToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "anonymous token is required")
	}

	anonOwner := types.AnonymousOwner(anonymousToken)
	userOwner := types.UserOwner(userID)

	result = &MergeResult{}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		sessions := s.sessions.WithTx(tx)
		lines := s.lines.WithTx(tx)

		anonSessions, err := sessions.ListActiveByOwner(ctx, anonOwner)
		if err != nil {
			return err
		}
		if len(anonSessions) == 0 {
			return nil
		}

		for i := range anonSessions {
			anon := &anonSessions[i]

			userSession, err := s.findActive(ctx, sessions, userOwner, anon.MerchantID)
			switch {
			case err == nil:
				moved, err := lines.ReassignSession(ctx, anon.ID, userSession.ID, s.maxLineQty)
				if err != nil {
					return err
				}
				if err := sessions.MarkMerged(ctx, anon.ID, userID); err != nil {
					return err
				}
				if err := sessions.Touch(ctx, userSession.ID); err != nil {
					return err
				}
				result.LinesMerged += moved

			case errors.Is(err, gorm.ErrRecordNotFound):
				// No user cart for this merchant: adopt the anonymous session
				// wholesale instead of copying lines.
				if err := sessions.TransferOwnership(ctx, anon.ID, userID); err != nil {
					return err
				}
				transferred, err := lines.ListActive(ctx, anon.ID)
				if err != nil {
					return err
				}
				result.LinesMerged += len(transferred)

			default:
				return err
			}
		}

		result.Merged = true
		return nil
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge carts")
	}

	return result, nil
}

// findActive wraps the store lookup and logs duplicate active sessions as an
// invariant violation while continuing with the canonical row.
func (s *service) findActive(ctx context.Context, sessions SessionStore, owner types.CartOwner, merchantID uuid.UUID) (*models.CartSession, error) {
	session, duplicates, err := sessions.FindActive(ctx, owner, merchantID)
	if err != nil {
		return nil, err
	}
	if duplicates > 0 {
		logCtx := s.logg.WithOwner(ctx, owner.String())
		logCtx = s.logg.WithMerchantID(logCtx, merchantID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{"duplicates": duplicates})
		s.logg.Warn(logCtx, "duplicate active cart sessions detected; using most recent")
	}
	return session, nil
}

func (s *service) findOrCreateSession(ctx context.Context, sessions SessionStore, owner types.CartOwner, merchantID uuid.UUID) (*models.CartSession, error) {
	session, err := s.findActive(ctx, sessions, owner, merchantID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	merchant, err := s.catalog.GetMerchant(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeMerchantUnavailable, "merchant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchant")
	}
	if !merchant.Active {
		return nil, pkgerrors.New(pkgerrors.CodeMerchantUnavailable, "merchant is not accepting orders")
	}

	return sessions.Create(ctx, owner, merchantID, s.sessionTTL)
}

func (s *service) lookupItem(ctx context.Context, merchantID, itemID uuid.UUID) (*catalog.ItemDTO, error) {
	item, err := s.catalog.GetItem(ctx, merchantID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeItemUnavailable, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	if !item.Active || !item.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeItemUnavailable, "menu item is not available")
	}
	return item, nil
}

// upsertLine folds the requested quantity into an existing identical line or
// inserts a fresh one. The insert runs under a savepoint: on postgres a losing
// race against the unique line-identity index aborts the enclosing transaction,
// and the fold retry needs a live one.
func (s *service) upsertLine(ctx context.Context, tx *gorm.DB, lines LineStore, sessionID uuid.UUID, item *catalog.ItemDTO, input AddItemInput) error {
	fingerprint := input.Customization.Fingerprint()

	existing, err := lines.FindByItem(ctx, sessionID, input.MenuItemID, fingerprint)
	switch {
	case err == nil:
		return lines.UpdateQuantity(ctx, existing, existing.Quantity+input.Quantity, s.maxLineQty)

	case errors.Is(err, gorm.ErrRecordNotFound):
		quantity := input.Quantity
		if quantity > s.maxLineQty {
			quantity = s.maxLineQty
		}
		line := &models.CartLine{
			CartSessionID:       sessionID,
			MenuItemID:          input.MenuItemID,
			Name:                item.Name,
			Description:         item.Description,
			Quantity:            quantity,
			UnitPriceCents:      item.EffectivePriceCents(),
			Customization:       input.Customization,
			SpecialInstructions: input.SpecialInstructions,
		}
		if err := tx.SavePoint("cart_line_insert").Error; err != nil {
			return err
		}
		if _, err := lines.Insert(ctx, line); err != nil {
			if db.IsUniqueViolation(err, "") {
				if rbErr := tx.RollbackTo("cart_line_insert").Error; rbErr != nil {
					return rbErr
				}
				winner, findErr := lines.FindByItem(ctx, sessionID, input.MenuItemID, fingerprint)
				if findErr != nil {
					return findErr
				}
				return lines.UpdateQuantity(ctx, winner, winner.Quantity+input.Quantity, s.maxLineQty)
			}
			return err
		}
		return nil

	default:
		return err
	}
}

func (s *service) buildSnapshot(ctx context.Context, lines LineStore, session *models.CartSession) (*Snapshot, error) {
	activeLines, err := lines.ListActive(ctx, session.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart lines")
	}

	merchant, err := s.catalog.GetMerchant(ctx, session.MerchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load merchant")
	}

	return &Snapshot{
		Session: session,
		Lines:   activeLines,
		Summary: ComputeSummary(activeLines, merchant, s.taxRate),
	}, nil
}

func (s *service) observe(op string, start time.Time, err *error) {
	s.ops.ObserveDuration(op, time.Since(start))
	if err != nil && *err != nil {
		s.ops.IncFailure(op)
		return
	}
	s.ops.IncSuccess(op)
}
