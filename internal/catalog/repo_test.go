package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate products: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, title string, status enums.ProductStatus, createdAt time.Time) *models.Product {
	t.Helper()
	qty := 10
	product := models.Product{
		SKU:           fmt.Sprintf("%s-%s", title, uuid.NewString()[:8]),
		Title:         title,
		PriceCents:    1500,
		StockQuantity: &qty,
		Status:        status,
		CreatedAt:     createdAt,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &product
}

func TestFindByIDAndSKU(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewProductRepository(db)
	seeded := seedProduct(t, db, "tote", enums.ProductStatusActive, time.Now())

	byID, err := repo.FindByID(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.SKU != seeded.SKU {
		t.Fatalf("expected sku %q, got %q", seeded.SKU, byID.SKU)
	}

	bySKU, err := repo.FindBySKU(context.Background(), seeded.SKU)
	if err != nil {
		t.Fatalf("find by sku: %v", err)
	}
	if bySKU.ID != seeded.ID {
		t.Fatalf("expected id %s, got %s", seeded.ID, bySKU.ID)
	}
}

func TestListPageOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewProductRepository(db)
	base := time.Now().Add(-time.Hour)
	seedProduct(t, db, "oldest", enums.ProductStatusActive, base)
	seedProduct(t, db, "middle", enums.ProductStatusActive, base.Add(time.Minute))
	newest := seedProduct(t, db, "newest", enums.ProductStatusActive, base.Add(2*time.Minute))

	page, err := repo.ListPage(context.Background(), pagination.Params{Limit: 10}, ListFilters{})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(page.Products))
	}
	if page.Products[0].ID != newest.ID {
		t.Fatalf("expected newest first, got %q", page.Products[0].Title)
	}
	if page.NextCursor != "" {
		t.Fatalf("expected no next cursor, got %q", page.NextCursor)
	}
}

func TestListPageCursorWalksPages(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewProductRepository(db)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		seedProduct(t, db, fmt.Sprintf("item-%d", i), enums.ProductStatusActive, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListPage(context.Background(), pagination.Params{Limit: 2}, ListFilters{})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Products) != 2 || first.NextCursor == "" {
		t.Fatalf("expected full first page with cursor, got %d products cursor %q", len(first.Products), first.NextCursor)
	}

	seen := map[uuid.UUID]bool{}
	for _, p := range first.Products {
		seen[p.ID] = true
	}

	cursor := first.NextCursor
	var total int
	for cursor != "" {
		page, err := repo.ListPage(context.Background(), pagination.Params{Limit: 2, Cursor: cursor}, ListFilters{})
		if err != nil {
			t.Fatalf("next page: %v", err)
		}
		for _, p := range page.Products {
			if seen[p.ID] {
				t.Fatalf("product %s seen twice", p.ID)
			}
			seen[p.ID] = true
		}
		total += len(page.Products)
		cursor = page.NextCursor
	}
	if len(seen) != 5 {
		t.Fatalf("expected to walk 5 products, got %d", len(seen))
	}
}

func TestListPageFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewProductRepository(db)
	now := time.Now()
	seedProduct(t, db, "canvas tote", enums.ProductStatusActive, now)
	seedProduct(t, db, "enamel mug", enums.ProductStatusSoldOut, now.Add(time.Second))

	active := enums.ProductStatusActive
	page, err := repo.ListPage(context.Background(), pagination.Params{Limit: 10}, ListFilters{Status: &active})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].Title != "canvas tote" {
		t.Fatalf("unexpected active filter result: %+v", page.Products)
	}

	page, err = repo.ListPage(context.Background(), pagination.Params{Limit: 10}, ListFilters{Query: "mug"})
	if err != nil {
		t.Fatalf("list by query: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].Title != "enamel mug" {
		t.Fatalf("unexpected search result: %+v", page.Products)
	}
}

func TestListPageRejectsBadCursor(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewProductRepository(db)

	if _, err := repo.ListPage(context.Background(), pagination.Params{Cursor: "not-base64!"}, ListFilters{}); err == nil {
		t.Fatal("expected error for malformed cursor")
	}
}
