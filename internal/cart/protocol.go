package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionCarts interface {
	Load(ctx context.Context, sessionID string) (*SessionCart, error)
	Save(ctx context.Context, sessionID string, cart *SessionCart) error
}

// MutateFunc runs against the caller's authoritative cart. Exactly one of its
// arguments is non-nil per call; downstream code may assume the other backend
// is absent instead of branching defensively.
type MutateFunc func(session *SessionCart, persisted *models.Cart) error

// ExtractFunc reads a value from the caller's authoritative cart under the
// same one-live-backend contract as MutateFunc.
type ExtractFunc func(session *SessionCart, persisted *models.Cart) (any, error)

// Protocol executes one logical cart operation against exactly one backend,
// chosen per caller. Identified callers get the persisted cart wrapped in a
// transaction; anonymous callers get the session cart, which is single-writer
// by construction.
type Protocol struct {
	repo     CartRepository
	tx       txRunner
	sessions sessionCarts
}

// NewProtocol builds the dispatch protocol backed by the provided stack.
func NewProtocol(repo CartRepository, tx txRunner, sessions sessionCarts) (*Protocol, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session cart store required")
	}
	return &Protocol{repo: repo, tx: tx, sessions: sessions}, nil
}

// Mutate resolves the caller's cart, runs fn against it, and persists the
// result. For identified callers the resolve-mutate-save sequence runs inside
// one transaction so overlapping requests from the same shopper cannot lose
// updates; atomicity covers a single call, not a sequence of calls.
func (p *Protocol) Mutate(ctx context.Context, caller Caller, fn MutateFunc) error {
	if fn == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "operation is required")
	}
	if caller.Identified() {
		return p.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := p.repo.WithTx(tx)
			persisted, err := loadOrCreate(ctx, repo, *caller.ShopperID)
			if err != nil {
				return err
			}
			if err := fn(nil, persisted); err != nil {
				return err
			}
			if err := repo.ReplaceItems(ctx, persisted.ID, persisted.Items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart items")
			}
			return nil
		})
	}

	if caller.SessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	session, err := p.sessions.Load(ctx, caller.SessionID)
	if err != nil {
		return err
	}
	if err := fn(session, nil); err != nil {
		return err
	}
	return p.sessions.Save(ctx, caller.SessionID, session)
}

// Extract resolves the caller's cart and returns fn's value. No persistence
// side effect occurs; an identified caller without a stored cart sees an
// empty one.
func (p *Protocol) Extract(ctx context.Context, caller Caller, fn ExtractFunc) (any, error) {
	if fn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selector is required")
	}
	if caller.Identified() {
		persisted, err := p.repo.FindByShopper(ctx, *caller.ShopperID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				persisted = &models.Cart{ShopperID: *caller.ShopperID}
			} else {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
			}
		}
		return fn(nil, persisted)
	}

	if caller.SessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	session, err := p.sessions.Load(ctx, caller.SessionID)
	if err != nil {
		return nil, err
	}
	return fn(session, nil)
}

// loadOrCreate returns the shopper's cart, creating and storing it on first
// access so subsequent calls observe a stable identity. The lookup holds a
// row lock for the transaction's lifetime; a first-access race resolves
// through the conflict-free insert to whichever request won.
func loadOrCreate(ctx context.Context, repo CartRepository, shopperID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByShopperForUpdate(ctx, shopperID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	fresh := &models.Cart{ShopperID: shopperID}
	inserted, err := repo.CreateIfAbsent(ctx, fresh)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	if !inserted {
		// Another request created the cart between the miss and the insert.
		cart, err = repo.FindByShopperForUpdate(ctx, shopperID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		return cart, nil
	}
	return fresh, nil
}
