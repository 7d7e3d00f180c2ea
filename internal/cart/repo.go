package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// Repository exposes persistence operations for shopper carts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByShopper loads the shopper's cart with its items in add order.
func (r *Repository) FindByShopper(ctx context.Context, shopperID uuid.UUID) (*models.Cart, error) {
	return r.findByShopper(ctx, shopperID, false)
}

// FindByShopperForUpdate loads the cart holding a row lock until the
// surrounding transaction ends, serializing overlapping mutations for the
// same shopper.
func (r *Repository) FindByShopperForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Cart, error) {
	return r.findByShopper(ctx, shopperID, true)
}

func (r *Repository) findByShopper(ctx context.Context, shopperID uuid.UUID, lock bool) (*models.Cart, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("shopper_id = ?", shopperID)
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var cart models.Cart
	if err := query.First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// CreateIfAbsent inserts a cart for the shopper unless one already exists and
// reports whether a row was written. Losing a create race is not an error;
// the caller re-reads the winner's row.
func (r *Repository) CreateIfAbsent(ctx context.Context, cart *models.Cart) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit("Items").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shopper_id"}},
			DoNothing: true,
		}).
		Create(cart)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReplaceItems atomically replaces the items for the provided cart.
func (r *Repository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].CartID = cartID
	}
	return tx.Create(&items).Error
}
