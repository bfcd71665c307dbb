package product

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/pagination"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.UserModel{}, &models.ProductModel{}, &models.PricingTier{}, &models.ProductImage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Pro Plan":            "pro-plan",
		"  Widget 2000  ":     "widget-2000",
		"Hello, World!":       "hello-world",
		"--Already--Slugged--": "already-slugged",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateDefaults(t *testing.T) {
	svc := NewService(openTestDB(t))

	p, err := svc.Create(&CreateProductDTO{Name: "Acme Widget", SKU: "ACME-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Slug != "acme-widget" {
		t.Errorf("slug = %q, want %q", p.Slug, "acme-widget")
	}
	if p.Status != models.ProductDraft {
		t.Errorf("status = %q, want draft", p.Status)
	}
	if p.Type != models.ProductOneTime {
		t.Errorf("type = %q, want one_time", p.Type)
	}
	if p.Currency != "usd" {
		t.Errorf("currency = %q, want usd", p.Currency)
	}
	if p.LowStockThreshold != 5 {
		t.Errorf("low_stock_threshold = %d, want 5", p.LowStockThreshold)
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	svc := NewService(openTestDB(t))

	if _, err := svc.Create(&CreateProductDTO{Name: "First", SKU: "SKU-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.Create(&CreateProductDTO{Name: "First", SKU: "SKU-2"})
	if err != errSlugTaken {
		t.Fatalf("duplicate slug err = %v, want errSlugTaken", err)
	}

	_, err = svc.Create(&CreateProductDTO{Name: "Second", SKU: "SKU-1"})
	if err != errSKUTaken {
		t.Fatalf("duplicate sku err = %v, want errSKUTaken", err)
	}
}

func TestDuplicate(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)

	src, err := svc.Create(&CreateProductDTO{
		Name:   "Pro Plan",
		SKU:    "PRO-1",
		Status: models.ProductActive,
		Price:  4900,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tier := models.PricingTier{ProductID: src.ID, Name: "Monthly", Price: 900}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("create tier: %v", err)
	}

	dup, err := svc.Duplicate(src.ID)
	if err != nil {
		t.Fatalf("Duplicate: %v", err)
	}
	if dup.ID == src.ID {
		t.Fatal("duplicate reused source id")
	}
	if dup.Name != "Pro Plan (Copy)" {
		t.Errorf("name = %q, want %q", dup.Name, "Pro Plan (Copy)")
	}
	if !strings.HasPrefix(dup.Slug, src.Slug+"-copy-") {
		t.Errorf("slug = %q, want prefix %q", dup.Slug, src.Slug+"-copy-")
	}
	if !strings.HasPrefix(dup.SKU, src.SKU+"-copy-") {
		t.Errorf("sku = %q, want prefix %q", dup.SKU, src.SKU+"-copy-")
	}
	if dup.Status != models.ProductDraft {
		t.Errorf("status = %q, want draft", dup.Status)
	}
	if dup.StripeProductID != "" {
		t.Errorf("stripe_product_id = %q, want empty", dup.StripeProductID)
	}
	if len(dup.PricingTiers) != 1 || dup.PricingTiers[0].Name != "Monthly" {
		t.Errorf("pricing tiers not cloned: %+v", dup.PricingTiers)
	}
	if len(dup.PricingTiers) == 1 && dup.PricingTiers[0].ID == tier.ID {
		t.Error("cloned tier reused source tier id")
	}
}

func TestListPublicOnly(t *testing.T) {
	svc := NewService(openTestDB(t))

	if _, err := svc.Create(&CreateProductDTO{Name: "Draft Item", SKU: "D-1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(&CreateProductDTO{Name: "Live Item", SKU: "L-1", Status: models.ProductActive}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	products, _, err := svc.List(pagination.Query{Page: 1, Size: 10}, ListFilter{}, true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Live Item" {
		t.Fatalf("public list = %+v, want only the active product", products)
	}

	products, _, err = svc.List(pagination.Query{Page: 1, Size: 10}, ListFilter{}, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("admin list returned %d products, want 2", len(products))
	}
}

func TestLowStockProducts(t *testing.T) {
	svc := NewService(openTestDB(t))

	low := 3
	if _, err := svc.Create(&CreateProductDTO{Name: "Scarce", SKU: "S-1", Stock: 2, LowStockThreshold: &low, Status: models.ProductActive}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(&CreateProductDTO{Name: "Plenty", SKU: "P-1", Stock: 50, Status: models.ProductActive}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	products, err := svc.LowStockProducts()
	if err != nil {
		t.Fatalf("LowStockProducts: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Scarce" {
		t.Fatalf("low stock = %+v, want only Scarce", products)
	}
}
