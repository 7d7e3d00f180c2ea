package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Repository owns the stock quantity and status columns on products.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stock repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Get returns the product row backing the ledger entry.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// AddQuantity adds delta to the stored quantity, treating an unset quantity as zero.
func (r *Repository) AddQuantity(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("COALESCE(stock_quantity, 0) + ?", delta))
	return res.RowsAffected, res.Error
}

// SubtractQuantity subtracts delta only when enough stock is on hand. The guard
// runs inside the UPDATE itself so the check and the write cannot interleave
// with another writer. A zero row count means the guard rejected the change.
func (r *Repository) SubtractQuantity(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity IS NOT NULL AND stock_quantity >= ?", id, delta).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", delta))
	return res.RowsAffected, res.Error
}

// SetQuantity replaces the stored quantity.
func (r *Repository) SetQuantity(ctx context.Context, id uuid.UUID, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity)
	return res.RowsAffected, res.Error
}

// UpdateStatus sets the availability status for the product.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ProductStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("status", status).Error
}
