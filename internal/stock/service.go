package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the authoritative ledger for product stock quantity and status.
//
// Mutations run inside a transaction with the quantity guard evaluated in the
// same statement as the write, so concurrent checkout flows cannot drive a
// product's quantity negative. Read-only checks give a point-in-time answer
// only; the guarantee is enforced by the guarded decrement itself.
type Service interface {
	Increase(ctx context.Context, productID uuid.UUID, amount int) (*models.Product, error)
	Decrease(ctx context.Context, productID uuid.UUID, amount int) (*models.Product, error)
	SetAbsolute(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error)
	IsAvailable(ctx context.Context, productID uuid.UUID) (bool, error)
	ValidateReservation(ctx context.Context, productID uuid.UUID, requestedQty int) error
	UnavailableReason(ctx context.Context, productID uuid.UUID) (enums.AvailabilityReason, error)
}

type service struct {
	repo    LedgerRepository
	tx      txRunner
	metrics *metrics.StorefrontMetrics
}

// NewService builds a stock service backed by the provided stack. Metrics may be nil.
func NewService(repo LedgerRepository, tx txRunner, m *metrics.StorefrontMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, metrics: m}, nil
}

// Increase adds amount to the product's quantity. A product sitting at soldout
// is promoted back to active once quantity is positive; other statuses are
// never auto-promoted.
func (s *service) Increase(ctx context.Context, productID uuid.UUID, amount int) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "increase amount must be positive")
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.AddQuantity(ctx, productID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increase stock")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		product, err := repo.Get(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		if product.Status == enums.ProductStatusSoldOut && quantityOf(product) > 0 {
			if err := repo.UpdateStatus(ctx, productID, enums.ProductStatusActive); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote product status")
			}
			product.Status = enums.ProductStatusActive
		}
		updated = product
		return nil
	})
	if err != nil {
		s.metrics.IncStockMutation("increase", "rejected")
		return nil, err
	}
	s.metrics.IncStockMutation("increase", "applied")
	return updated, nil
}

// Decrease subtracts amount from the product's quantity. The decrement is
// rejected with an insufficient stock error when the amount exceeds what is on
// hand or the quantity is unknown. Reaching zero forces the status to soldout.
func (s *service) Decrease(ctx context.Context, productID uuid.UUID, amount int) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decrease amount must be positive")
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.SubtractQuantity(ctx, productID, amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrease stock")
		}
		if rows == 0 {
			// Distinguish a missing product from a rejected guard.
			if _, lookupErr := repo.Get(ctx, productID); lookupErr != nil {
				if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "load product")
			}
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product")
		}
		product, err := repo.Get(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		if quantityOf(product) == 0 && product.Status != enums.ProductStatusSoldOut {
			if err := repo.UpdateStatus(ctx, productID, enums.ProductStatusSoldOut); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark product sold out")
			}
			product.Status = enums.ProductStatusSoldOut
		}
		updated = product
		return nil
	})
	if err != nil {
		s.metrics.IncStockMutation("decrease", "rejected")
		return nil, err
	}
	s.metrics.IncStockMutation("decrease", "applied")
	return updated, nil
}

// SetAbsolute replaces the product's quantity outright. This is an
// administrative override and skips delta validation.
func (s *service) SetAbsolute(ctx context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be non-negative")
	}

	var updated *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.SetQuantity(ctx, productID, quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set stock quantity")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		product, err := repo.Get(ctx, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
		}
		switch {
		case quantity == 0 && product.Status != enums.ProductStatusSoldOut:
			if err := repo.UpdateStatus(ctx, productID, enums.ProductStatusSoldOut); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark product sold out")
			}
			product.Status = enums.ProductStatusSoldOut
		case quantity > 0 && product.Status == enums.ProductStatusSoldOut:
			if err := repo.UpdateStatus(ctx, productID, enums.ProductStatusActive); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote product status")
			}
			product.Status = enums.ProductStatusActive
		}
		updated = product
		return nil
	})
	if err != nil {
		s.metrics.IncStockMutation("set", "rejected")
		return nil, err
	}
	s.metrics.IncStockMutation("set", "applied")
	return updated, nil
}

// IsAvailable reports whether the product can currently be reserved.
func (s *service) IsAvailable(ctx context.Context, productID uuid.UUID) (bool, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return isAvailable(product), nil
}

// ValidateReservation checks that requestedQty could be decremented right now.
// It never mutates the ledger; the actual decrement is a separate call.
func (s *service) ValidateReservation(ctx context.Context, productID uuid.UUID, requestedQty int) error {
	if requestedQty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "requested quantity must be positive")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !isAvailable(product) {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "product is not available")
	}
	if requestedQty > quantityOf(product) {
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock for product")
	}
	return nil
}

// UnavailableReason classifies why the product cannot be reserved. A nominally
// active product with unset or non-positive quantity is reported as sold out.
func (s *service) UnavailableReason(ctx context.Context, productID uuid.UUID) (enums.AvailabilityReason, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	return UnavailableReasonFor(product), nil
}

// UnavailableReasonFor classifies an unavailable product without a lookup.
func UnavailableReasonFor(product *models.Product) enums.AvailabilityReason {
	if product.Status == enums.ProductStatusSoldOut {
		return enums.AvailabilityReasonSoldOut
	}
	if product.Status == enums.ProductStatusActive && quantityOf(product) <= 0 {
		return enums.AvailabilityReasonSoldOut
	}
	return enums.AvailabilityReasonUnavailable
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func isAvailable(product *models.Product) bool {
	return product.Status == enums.ProductStatusActive && quantityOf(product) > 0
}

func quantityOf(product *models.Product) int {
	if product.StockQuantity == nil {
		return 0
	}
	return *product.StockQuantity
}
