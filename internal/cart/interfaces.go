package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart protocol.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByShopper(ctx context.Context, shopperID uuid.UUID) (*models.Cart, error)
	FindByShopperForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Cart, error)
	CreateIfAbsent(ctx context.Context, cart *models.Cart) (bool, error)
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
}
