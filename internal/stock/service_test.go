package stock

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

func TestDecreaseToZeroThenIncrease(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, 5, enums.ProductStatusActive)

	updated, err := svc.Decrease(ctx, product.ID, 5)
	if err != nil {
		t.Fatalf("decrease failed: %v", err)
	}
	if got := quantityOf(updated); got != 0 {
		t.Fatalf("expected quantity 0, got %d", got)
	}
	if updated.Status != enums.ProductStatusSoldOut {
		t.Fatalf("expected soldout status, got %s", updated.Status)
	}

	updated, err = svc.Increase(ctx, product.ID, 1)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if got := quantityOf(updated); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}
	if updated.Status != enums.ProductStatusActive {
		t.Fatalf("expected active status, got %s", updated.Status)
	}
}

func TestDecreaseBeyondStockFails(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, 5, enums.ProductStatusActive)

	_, err := svc.Decrease(ctx, product.ID, 6)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got := quantityOf(&reloaded); got != 5 {
		t.Fatalf("rejected decrease must leave quantity unchanged, got %d", got)
	}
}

func TestDecreaseUnknownQuantityFails(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := models.Product{ID: uuid.New(), SKU: "sku-nil", Title: "No count", Status: enums.ProductStatusActive}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	_, err := svc.Decrease(ctx, product.ID, 1)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIncreaseDoesNotPromoteArchived(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, 0, enums.ProductStatusArchived)

	updated, err := svc.Increase(ctx, product.ID, 3)
	if err != nil {
		t.Fatalf("increase failed: %v", err)
	}
	if updated.Status != enums.ProductStatusArchived {
		t.Fatalf("archived product must stay archived, got %s", updated.Status)
	}
}

func TestIncreaseRejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, 5, enums.ProductStatusActive)

	_, err := svc.Increase(ctx, product.ID, 0)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetAbsolute(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, 5, enums.ProductStatusActive)

	updated, err := svc.SetAbsolute(ctx, product.ID, 0)
	if err != nil {
		t.Fatalf("set to zero failed: %v", err)
	}
	if updated.Status != enums.ProductStatusSoldOut {
		t.Fatalf("expected soldout after set to zero, got %s", updated.Status)
	}

	updated, err = svc.SetAbsolute(ctx, product.ID, 12)
	if err != nil {
		t.Fatalf("set to twelve failed: %v", err)
	}
	if got := quantityOf(updated); got != 12 {
		t.Fatalf("expected quantity 12, got %d", got)
	}
	if updated.Status != enums.ProductStatusActive {
		t.Fatalf("expected active after restock, got %s", updated.Status)
	}
}

func TestValidateReservation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, 5, enums.ProductStatusActive)

	if err := svc.ValidateReservation(ctx, product.ID, 5); err != nil {
		t.Fatalf("expected reservation of 5 to validate: %v", err)
	}

	err := svc.ValidateReservation(ctx, product.ID, 10)
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if got := quantityOf(&reloaded); got != 5 {
		t.Fatalf("validation must not mutate quantity, got %d", got)
	}
}

func TestIsAvailable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	active := seedProduct(t, db, 3, enums.ProductStatusActive)
	soldout := seedProduct(t, db, 0, enums.ProductStatusSoldOut)

	if ok, err := svc.IsAvailable(ctx, active.ID); err != nil || !ok {
		t.Fatalf("expected active product available, ok=%v err=%v", ok, err)
	}
	if ok, err := svc.IsAvailable(ctx, soldout.ID); err != nil || ok {
		t.Fatalf("expected soldout product unavailable, ok=%v err=%v", ok, err)
	}
}

func TestUnavailableReason(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)
	ctx := context.Background()

	soldout := seedProduct(t, db, 0, enums.ProductStatusSoldOut)
	archived := seedProduct(t, db, 4, enums.ProductStatusArchived)
	inconsistent := models.Product{ID: uuid.New(), SKU: "sku-inc", Title: "No count", Status: enums.ProductStatusActive}
	if err := db.Create(&inconsistent).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	if reason, err := svc.UnavailableReason(ctx, soldout.ID); err != nil || reason != enums.AvailabilityReasonSoldOut {
		t.Fatalf("expected sold_out, got %s err=%v", reason, err)
	}
	if reason, err := svc.UnavailableReason(ctx, archived.ID); err != nil || reason != enums.AvailabilityReasonUnavailable {
		t.Fatalf("expected unavailable, got %s err=%v", reason, err)
	}
	if reason, err := svc.UnavailableReason(ctx, inconsistent.ID); err != nil || reason != enums.AvailabilityReasonSoldOut {
		t.Fatalf("expected sold_out for active product without a count, got %s err=%v", reason, err)
	}
}

func TestDecreaseUnknownProduct(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.Decrease(context.Background(), uuid.New(), 1)
	if err == nil {
		t.Fatal("expected not found error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), gormTxRunner{db: db}, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, qty int, status enums.ProductStatus) *models.Product {
	t.Helper()
	product := models.Product{
		ID:            uuid.New(),
		SKU:           "sku-" + uuid.NewString()[:8],
		Title:         "Test product",
		PriceCents:    1500,
		StockQuantity: &qty,
		Status:        status,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:stock_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}
