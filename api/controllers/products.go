package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type productLister interface {
	ListPage(ctx context.Context, params pagination.Params, filters catalog.ListFilters) (*catalog.ListResult, error)
}

// ProductView is the catalog listing shape returned to shoppers.
type ProductView struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	Title         string `json:"title"`
	PriceCents    int    `json:"price_cents"`
	StockQuantity *int   `json:"stock_quantity,omitempty"`
	Status        string `json:"status"`
}

// ProductListView is one catalog page with the cursor for the next.
type ProductListView struct {
	Products   []ProductView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// ProductsList exposes a cursor-paginated catalog listing.
func ProductsList(repo productLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product repository unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := catalog.ListFilters{
			Query: validators.SanitizeString(r.URL.Query().Get("q"), 120),
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseProductStatus(validators.SanitizeString(raw, 16))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}

		page, err := repo.ListPage(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products"))
			return
		}

		views := make([]ProductView, 0, len(page.Products))
		for _, product := range page.Products {
			views = append(views, ProductView{
				ID:            product.ID.String(),
				SKU:           product.SKU,
				Title:         product.Title,
				PriceCents:    product.PriceCents,
				StockQuantity: product.StockQuantity,
				Status:        product.Status.String(),
			})
		}
		responses.WriteSuccess(w, ProductListView{Products: views, NextCursor: page.NextCursor})
	}
}
