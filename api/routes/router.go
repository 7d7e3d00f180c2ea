package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/cart"
	fulfillmentcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/fulfillment"
	inventorycontrollers "github.com/angelmondragon/storefront-backend/api/controllers/inventory"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/stock"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	productsRepo *catalog.ProductRepository,
	cartService cartsvc.Service,
	stockService stock.Service,
	trackingRegistry *tracking.Registry,
	storeMetrics *metrics.StorefrontMetrics,
	promRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CORS())

		r.Get("/products", controllers.ProductsList(productsRepo, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.Session(cfg.Session, logg))

			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Get("/count", cartcontrollers.CartCount(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartAdjustItem(cartService, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(cartService, logg))
			r.Get("/items/{productId}/quantity", cartcontrollers.CartItemQuantity(cartService, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Post("/{productId}/increase", inventorycontrollers.StockIncrease(stockService, logg))
			r.Post("/{productId}/decrease", inventorycontrollers.StockDecrease(stockService, logg))
			r.Post("/{productId}/set", inventorycontrollers.StockSet(stockService, logg))
			r.Get("/{productId}/availability", inventorycontrollers.StockAvailability(stockService, logg))
		})

		r.Route("/fulfillments", func(r chi.Router) {
			r.Post("/tracking-number", fulfillmentcontrollers.TrackingNumberAssign(trackingRegistry, storeMetrics, logg))
		})
	})

	return r
}
