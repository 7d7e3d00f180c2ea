package cart

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// Line is one product entry in a cart. Title and unit price are snapshots
// taken when the product was added.
type Line struct {
	ProductID      uuid.UUID `json:"product_id"`
	Title          string    `json:"title"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
}

// SubtotalCents returns the line subtotal.
func (l Line) SubtotalCents() int {
	return l.UnitPriceCents * l.Quantity
}

// SessionCart is the ephemeral cart bound to one browsing session. It is the
// display shape already; no conversion is needed to render it.
type SessionCart struct {
	Lines []Line `json:"lines"`
}

// upsertLine merges the quantity into an existing line for the same product,
// or appends a new line. A cart holds at most one line per product.
func upsertLine(lines []Line, line Line) []Line {
	for i := range lines {
		if lines[i].ProductID == line.ProductID {
			lines[i].Quantity += line.Quantity
			return lines
		}
	}
	return append(lines, line)
}

// removeLine drops the line for the product if present.
func removeLine(lines []Line, productID uuid.UUID) []Line {
	for i := range lines {
		if lines[i].ProductID == productID {
			return append(lines[:i], lines[i+1:]...)
		}
	}
	return lines
}

// adjustLine applies a quantity action to the matching line. Quantity never
// drops below 1; removal is a distinct operation. Unknown products are a no-op.
func adjustLine(lines []Line, productID uuid.UUID, action enums.CartAction, explicitQty int) []Line {
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		switch action {
		case enums.CartActionIncrease:
			lines[i].Quantity++
		case enums.CartActionDecrease:
			if lines[i].Quantity > 1 {
				lines[i].Quantity--
			}
		case enums.CartActionSet:
			if explicitQty < 1 {
				explicitQty = 1
			}
			lines[i].Quantity = explicitQty
		}
		return lines
	}
	return lines
}

// lineQuantity returns the quantity for the product, or 0 when absent.
func lineQuantity(lines []Line, productID uuid.UUID) int {
	for _, line := range lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// totalQuantity sums quantities across all lines.
func totalQuantity(lines []Line) int {
	var total int
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

// itemsToLines projects persisted cart items into the display line shape.
func itemsToLines(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			ProductID:      item.ProductID,
			Title:          item.Title,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}
	return lines
}

// linesToItems converts lines back into persisted cart items. Lines that
// already existed keep their durable id and add time so display order stays
// stable across rewrites; brand-new lines get both assigned on insert.
func linesToItems(cartID uuid.UUID, existing []models.CartItem, lines []Line) []models.CartItem {
	byProduct := make(map[uuid.UUID]models.CartItem, len(existing))
	for _, item := range existing {
		byProduct[item.ProductID] = item
	}
	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		prior := byProduct[line.ProductID]
		items = append(items, models.CartItem{
			ID:             prior.ID,
			CartID:         cartID,
			ProductID:      line.ProductID,
			Title:          line.Title,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			CreatedAt:      prior.CreatedAt,
		})
	}
	return items
}
