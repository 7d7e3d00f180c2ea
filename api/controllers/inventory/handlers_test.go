package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

type stubStockService struct {
	product   *models.Product
	mutateErr error
	available bool
	reason    enums.AvailabilityReason

	lastProduct uuid.UUID
	lastAmount  int
}

func (s *stubStockService) Increase(_ context.Context, productID uuid.UUID, amount int) (*models.Product, error) {
	s.lastProduct = productID
	s.lastAmount = amount
	return s.product, s.mutateErr
}

func (s *stubStockService) Decrease(_ context.Context, productID uuid.UUID, amount int) (*models.Product, error) {
	s.lastProduct = productID
	s.lastAmount = amount
	return s.product, s.mutateErr
}

func (s *stubStockService) SetAbsolute(_ context.Context, productID uuid.UUID, quantity int) (*models.Product, error) {
	s.lastProduct = productID
	s.lastAmount = quantity
	return s.product, s.mutateErr
}

func (s *stubStockService) IsAvailable(_ context.Context, productID uuid.UUID) (bool, error) {
	s.lastProduct = productID
	return s.available, nil
}

func (s *stubStockService) ValidateReservation(context.Context, uuid.UUID, int) error {
	return s.mutateErr
}

func (s *stubStockService) UnavailableReason(context.Context, uuid.UUID) (enums.AvailabilityReason, error) {
	return s.reason, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
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
	return req
}

func stockRouter(svc *stubStockService, logg *logger.Logger) http.Handler {
	router := chi.NewRouter()
	router.Post("/inventory/{productId}/increase", StockIncrease(svc, logg))
	router.Post("/inventory/{productId}/decrease", StockDecrease(svc, logg))
	router.Post("/inventory/{productId}/set", StockSet(svc, logg))
	router.Get("/inventory/{productId}/availability", StockAvailability(svc, logg))
	return router
}

func intPtr(v int) *int { return &v }

func TestStockIncrease(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	svc := &stubStockService{product: &models.Product{
		ID:            productID,
		SKU:           "TOTE-01",
		StockQuantity: intPtr(7),
		Status:        enums.ProductStatusActive,
	}}

	rec := httptest.NewRecorder()
	target := fmt.Sprintf("/inventory/%s/increase", productID)
	stockRouter(svc, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodPost, target, AdjustStockRequest{Amount: 3}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastProduct != productID || svc.lastAmount != 3 {
		t.Fatalf("service called with %s/%d", svc.lastProduct, svc.lastAmount)
	}

	var envelope struct {
		Data StockView `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.StockQuantity == nil || *envelope.Data.StockQuantity != 7 {
		t.Fatalf("unexpected view: %+v", envelope.Data)
	}
	if envelope.Data.Status != "active" {
		t.Fatalf("expected active status, got %q", envelope.Data.Status)
	}
}

func TestStockIncreaseRejectsZeroAmount(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	target := fmt.Sprintf("/inventory/%s/increase", uuid.New())
	stockRouter(&stubStockService{}, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodPost, target, map[string]any{"amount": 0}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestStockDecreaseInsufficient(t *testing.T) {
	t.Parallel()

	svc := &stubStockService{mutateErr: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock")}

	rec := httptest.NewRecorder()
	target := fmt.Sprintf("/inventory/%s/decrease", uuid.New())
	stockRouter(svc, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodPost, target, AdjustStockRequest{Amount: 10}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock code, got %q", envelope.Error.Code)
	}
}

func TestStockSetAllowsZero(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	svc := &stubStockService{product: &models.Product{
		ID:            productID,
		SKU:           "TOTE-01",
		StockQuantity: intPtr(0),
		Status:        enums.ProductStatusSoldOut,
	}}

	rec := httptest.NewRecorder()
	target := fmt.Sprintf("/inventory/%s/set", productID)
	stockRouter(svc, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodPost, target, SetStockRequest{Quantity: 0}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastAmount != 0 {
		t.Fatalf("expected quantity 0, got %d", svc.lastAmount)
	}
}

func TestStockAvailabilityIncludesReason(t *testing.T) {
	t.Parallel()

	svc := &stubStockService{available: false, reason: enums.AvailabilityReasonSoldOut}

	rec := httptest.NewRecorder()
	target := fmt.Sprintf("/inventory/%s/availability", uuid.New())
	stockRouter(svc, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Available bool   `json:"available"`
			Reason    string `json:"reason"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Available {
		t.Fatal("expected unavailable")
	}
	if envelope.Data.Reason != "sold_out" {
		t.Fatalf("expected sold_out reason, got %q", envelope.Data.Reason)
	}
}

func TestStockAvailabilityOmitsReasonWhenAvailable(t *testing.T) {
	t.Parallel()

	svc := &stubStockService{available: true}

	rec := httptest.NewRecorder()
	target := fmt.Sprintf("/inventory/%s/availability", uuid.New())
	stockRouter(svc, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodGet, target, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := envelope.Data["reason"]; ok {
		t.Fatalf("expected no reason key, got %v", envelope.Data)
	}
}

func TestStockInvalidProductID(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	stockRouter(&stubStockService{}, testLogger(t)).ServeHTTP(rec, jsonRequest(t, http.MethodPost, "/inventory/nope/increase", AdjustStockRequest{Amount: 1}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}
