package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Product represents a catalog listing referenced by cart lines. StockQuantity
// is nullable: nil means the count was never set and the product cannot be
// reserved until an operator records one.
type Product struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	SKU           string              `gorm:"column:sku;not null;uniqueIndex"`
	Title         string              `gorm:"column:title;not null"`
	PriceCents    int                 `gorm:"column:price_cents;not null"`
	StockQuantity *int                `gorm:"column:stock_quantity"`
	Status        enums.ProductStatus `gorm:"column:status;not null;default:'active'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
