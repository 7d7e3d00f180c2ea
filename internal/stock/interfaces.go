package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// LedgerRepository defines the persistence surface required by the stock service.
type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	AddQuantity(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	SubtractQuantity(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ProductStatus) error
}
