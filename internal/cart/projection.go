package cart

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// DisplayCart returns the display-ready line list for the caller's cart. The
// session cart is already that shape; persisted items are projected into it.
func (s *service) DisplayCart(ctx context.Context, caller Caller) ([]Line, error) {
	value, err := s.protocol.Extract(ctx, caller, func(session *SessionCart, persisted *models.Cart) (any, error) {
		if session != nil {
			return session.Lines, nil
		}
		return itemsToLines(persisted.Items), nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]Line), nil
}

// TotalItemCount sums quantities across all lines of the caller's cart.
func (s *service) TotalItemCount(ctx context.Context, caller Caller) (int, error) {
	value, err := s.protocol.Extract(ctx, caller, func(session *SessionCart, persisted *models.Cart) (any, error) {
		if session != nil {
			return totalQuantity(session.Lines), nil
		}
		return totalQuantity(itemsToLines(persisted.Items)), nil
	})
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}

// CurrentQuantityOf returns the quantity of the product in the caller's cart,
// or 0 when the product is absent.
func (s *service) CurrentQuantityOf(ctx context.Context, caller Caller, productID uuid.UUID) (int, error) {
	value, err := s.protocol.Extract(ctx, caller, func(session *SessionCart, persisted *models.Cart) (any, error) {
		if session != nil {
			return lineQuantity(session.Lines, productID), nil
		}
		return lineQuantity(itemsToLines(persisted.Items), productID), nil
	})
	if err != nil {
		return 0, err
	}
	return value.(int), nil
}
