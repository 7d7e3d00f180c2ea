package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
)

// CartLineView is the display shape for one cart line.
type CartLineView struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	UnitPriceCents int       `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	Quantity       int       `json:"quantity"`
	SubtotalCents  int       `json:"subtotal_cents"`
	Subtotal       string    `json:"subtotal"`
}

// CartView is the display-ready cart with aggregate totals.
type CartView struct {
	Lines         []CartLineView `json:"lines"`
	TotalItems    int            `json:"total_items"`
	SubtotalCents int            `json:"subtotal_cents"`
	Subtotal      string         `json:"subtotal"`
}

func newCartView(lines []cartsvc.Line) CartView {
	views := make([]CartLineView, 0, len(lines))
	var totalItems, subtotalCents int
	for _, line := range lines {
		lineSubtotal := line.SubtotalCents()
		views = append(views, CartLineView{
			ProductID:      line.ProductID,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			UnitPrice:      centsToAmount(line.UnitPriceCents),
			Quantity:       line.Quantity,
			SubtotalCents:  lineSubtotal,
			Subtotal:       centsToAmount(lineSubtotal),
		})
		totalItems += line.Quantity
		subtotalCents += lineSubtotal
	}
	return CartView{
		Lines:         views,
		TotalItems:    totalItems,
		SubtotalCents: subtotalCents,
		Subtotal:      centsToAmount(subtotalCents),
	}
}

func centsToAmount(cents int) string {
	return decimal.NewFromInt(int64(cents)).Shift(-2).StringFixed(2)
}
