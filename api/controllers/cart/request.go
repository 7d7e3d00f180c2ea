package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// AdjustItemRequest is the payload for adjusting a line's quantity.
type AdjustItemRequest struct {
	Action   string `json:"action" validate:"required,oneof=increase decrease set"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

func callerFromRequest(r *http.Request) (cartsvc.Caller, error) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return cartsvc.Caller{}, pkgerrors.New(pkgerrors.CodeForbidden, "session context missing")
	}
	caller := cartsvc.Caller{SessionID: sessionID}
	if raw := middleware.ShopperIDFromContext(r.Context()); raw != "" {
		shopperID, err := uuid.Parse(raw)
		if err != nil {
			return cartsvc.Caller{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shopper id")
		}
		caller.ShopperID = &shopperID
	}
	return caller, nil
}

func productIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	productID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return productID, nil
}
