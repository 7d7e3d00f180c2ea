package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	cartsvc "github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/stock"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// memKV is an in-memory stand-in for the redis session store.
type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	default:
		return fmt.Errorf("unsupported value type %T", value)
	}
	return nil
}

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (m *memKV) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memKV) SessionCartKey(sessionID string) string {
	return "sf:session:" + sessionID + ":cart"
}

type gormTxRunner struct{ db *gorm.DB }

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		Session: config.SessionConfig{
			Secret:   "test-secret",
			Issuer:   "storefront",
			TokenTTL: time.Hour,
		},
		Cart: config.CartConfig{SessionTTL: time.Hour},
	}
}

type testStack struct {
	router   http.Handler
	db       *gorm.DB
	products *catalog.ProductRepository
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := testConfig()
	logg := logger.New(logger.Options{ServiceName: "routes-test", Output: io.Discard})
	tx := gormTxRunner{db: gdb}

	productsRepo := catalog.NewProductRepository(gdb)

	sessions, err := cartsvc.NewSessionStore(newMemKV(), cfg.Cart.SessionTTL)
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	protocol, err := cartsvc.NewProtocol(cartsvc.NewRepository(gdb), tx, sessions)
	if err != nil {
		t.Fatalf("protocol: %v", err)
	}

	promRegistry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStorefrontMetrics(promRegistry)

	cartService, err := cartsvc.NewService(protocol, productsRepo, storeMetrics)
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	stockService, err := stock.NewService(stock.NewRepository(gdb), tx, storeMetrics)
	if err != nil {
		t.Fatalf("stock service: %v", err)
	}
	registry, err := tracking.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("tracking registry: %v", err)
	}

	router := NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		productsRepo,
		cartService,
		stockService,
		registry,
		storeMetrics,
		promRegistry,
	)

	return &testStack{router: router, db: gdb, products: productsRepo}
}

func (s *testStack) seedProduct(t *testing.T, title string, priceCents, quantity int) *models.Product {
	t.Helper()
	qty := quantity
	product := models.Product{
		SKU:           strings.ToUpper(strings.ReplaceAll(title, " ", "-")) + "-" + uuid.NewString()[:8],
		Title:         title,
		PriceCents:    priceCents,
		StockQuantity: &qty,
		Status:        enums.ProductStatusActive,
	}
	if err := s.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthLive(t *testing.T) {
	stack := newTestStack(t)

	rec := doJSON(t, stack.router, http.MethodGet, "/health/live", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if env := rec.Header().Get("X-Storefront-Env"); env != "test" {
		t.Fatalf("expected env header test, got %q", env)
	}
}

func TestHealthReady(t *testing.T) {
	stack := newTestStack(t)

	rec := doJSON(t, stack.router, http.MethodGet, "/health/ready", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	stack := newTestStack(t)

	rec := doJSON(t, stack.router, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProductsList(t *testing.T) {
	stack := newTestStack(t)
	stack.seedProduct(t, "Canvas Tote", 2450, 10)
	stack.seedProduct(t, "Enamel Mug", 1200, 4)

	rec := doJSON(t, stack.router, http.MethodGet, "/api/v1/products", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Products []map[string]any `json:"products"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(envelope.Data.Products))
	}
}

func TestCartFlowMintsSessionAndPersistsLines(t *testing.T) {
	stack := newTestStack(t)
	product := stack.seedProduct(t, "Canvas Tote", 2450, 10)

	// First touch mints the session cookie.
	rec := doJSON(t, stack.router, http.MethodGet, "/api/v1/cart", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	// Add two, then adjust to five, all on the same session.
	rec = doJSON(t, stack.router, http.MethodPost, "/api/v1/cart/items", map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	}, cookies)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	target := fmt.Sprintf("/api/v1/cart/items/%s", product.ID)
	rec = doJSON(t, stack.router, http.MethodPatch, target, map[string]any{
		"action":   "set",
		"quantity": 5,
	}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, stack.router, http.MethodGet, target+"/quantity", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data struct {
			Quantity int `json:"quantity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", envelope.Data.Quantity)
	}

	// A different visitor sees an empty cart.
	rec = doJSON(t, stack.router, http.MethodGet, "/api/v1/cart", nil, nil)
	var other struct {
		Data struct {
			TotalItems int `json:"total_items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &other); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if other.Data.TotalItems != 0 {
		t.Fatalf("expected empty cart for new visitor, got %d items", other.Data.TotalItems)
	}
}

func TestInventoryGuardedDecrease(t *testing.T) {
	stack := newTestStack(t)
	product := stack.seedProduct(t, "Enamel Mug", 1200, 3)

	target := fmt.Sprintf("/api/v1/inventory/%s/decrease", product.ID)
	rec := doJSON(t, stack.router, http.MethodPost, target, map[string]any{"amount": 5}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, stack.router, http.MethodPost, target, map[string]any{"amount": 3}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			StockQuantity *int   `json:"stock_quantity"`
			Status        string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.StockQuantity == nil || *envelope.Data.StockQuantity != 0 {
		t.Fatalf("expected quantity 0, got %v", envelope.Data.StockQuantity)
	}
	if envelope.Data.Status != "soldout" {
		t.Fatalf("expected soldout status, got %q", envelope.Data.Status)
	}

	availability := fmt.Sprintf("/api/v1/inventory/%s/availability", product.ID)
	rec = doJSON(t, stack.router, http.MethodGet, availability, nil, nil)
	var avail struct {
		Data struct {
			Available bool   `json:"available"`
			Reason    string `json:"reason"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &avail); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if avail.Data.Available || avail.Data.Reason != "sold_out" {
		t.Fatalf("expected sold_out, got %+v", avail.Data)
	}
}

func TestFulfillmentTrackingNumber(t *testing.T) {
	stack := newTestStack(t)

	rec := doJSON(t, stack.router, http.MethodPost, "/api/v1/fulfillments/tracking-number", map[string]any{
		"delivery_method": "express",
	}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			TrackingNumber string `json:"tracking_number"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.TrackingNumber) != 12 {
		t.Fatalf("expected 12-digit express number, got %q", envelope.Data.TrackingNumber)
	}
}

func TestUnknownRouteReturns404(t *testing.T) {
	stack := newTestStack(t)

	rec := doJSON(t, stack.router, http.MethodGet, "/api/v1/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
