package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes the cart operations built on the dispatch protocol.
// Mutations do not validate stock; reservation checks belong to the flow that
// actually commits a decrement, such as checkout.
type Service interface {
	AddProduct(ctx context.Context, caller Caller, productID uuid.UUID, quantity int) error
	RemoveProduct(ctx context.Context, caller Caller, productID uuid.UUID) error
	AdjustQuantity(ctx context.Context, caller Caller, productID uuid.UUID, action enums.CartAction, explicitQty int) error
	Clear(ctx context.Context, caller Caller) error
	DisplayCart(ctx context.Context, caller Caller) ([]Line, error)
	TotalItemCount(ctx context.Context, caller Caller) (int, error)
	CurrentQuantityOf(ctx context.Context, caller Caller, productID uuid.UUID) (int, error)
}

type service struct {
	protocol *Protocol
	products productLoader
	metrics  *metrics.StorefrontMetrics
}

// NewService builds a cart service backed by the provided stack. Metrics may be nil.
func NewService(protocol *Protocol, products productLoader, m *metrics.StorefrontMetrics) (Service, error) {
	if protocol == nil {
		return nil, fmt.Errorf("cart protocol required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{protocol: protocol, products: products, metrics: m}, nil
}

// AddProduct merges quantity into an existing line for the product or appends
// a new one. The title and unit price are snapshotted from the catalog.
func (s *service) AddProduct(ctx context.Context, caller Caller, productID uuid.UUID, quantity int) error {
	start := time.Now()
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	line := Line{
		ProductID:      product.ID,
		Title:          product.Title,
		UnitPriceCents: product.PriceCents,
		Quantity:       quantity,
	}
	err = s.protocol.Mutate(ctx, caller, editLines(func(lines []Line) []Line {
		return upsertLine(lines, line)
	}))
	s.countOp("add", caller, start, err)
	return err
}

// RemoveProduct deletes the matching line. Removing an absent product is a
// no-op.
func (s *service) RemoveProduct(ctx context.Context, caller Caller, productID uuid.UUID) error {
	start := time.Now()
	err := s.protocol.Mutate(ctx, caller, editLines(func(lines []Line) []Line {
		return removeLine(lines, productID)
	}))
	s.countOp("remove", caller, start, err)
	return err
}

// AdjustQuantity applies an increase, decrease, or set action to the matching
// line. Quantities clamp at 1; adjusting an absent product is a no-op.
func (s *service) AdjustQuantity(ctx context.Context, caller Caller, productID uuid.UUID, action enums.CartAction, explicitQty int) error {
	start := time.Now()
	if !action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart action")
	}
	err := s.protocol.Mutate(ctx, caller, editLines(func(lines []Line) []Line {
		return adjustLine(lines, productID, action, explicitQty)
	}))
	s.countOp("adjust", caller, start, err)
	return err
}

// Clear empties all lines.
func (s *service) Clear(ctx context.Context, caller Caller) error {
	start := time.Now()
	err := s.protocol.Mutate(ctx, caller, editLines(func([]Line) []Line {
		return nil
	}))
	s.countOp("clear", caller, start, err)
	return err
}

// editLines lifts a pure line transformation into a MutateFunc, keeping the
// backend branch in one place.
func editLines(fn func([]Line) []Line) MutateFunc {
	return func(session *SessionCart, persisted *models.Cart) error {
		if session != nil {
			session.Lines = fn(session.Lines)
			return nil
		}
		persisted.Items = linesToItems(persisted.ID, persisted.Items, fn(itemsToLines(persisted.Items)))
		return nil
	}
}

func (s *service) countOp(op string, caller Caller, start time.Time, err error) {
	if err != nil {
		return
	}
	backend := "ephemeral"
	if caller.Identified() {
		backend = "persisted"
	}
	s.metrics.IncCartOp(op, backend)
	s.metrics.ObserveCartOp(op, time.Since(start))
}
