package pricing

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/commercekit/storefront-core/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.ProductModel{}, &models.PricingTier{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB) *models.ProductModel {
	t.Helper()
	p := models.ProductModel{Name: "Pro Plan", Slug: "pro-plan", SKU: "PRO-1"}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &p
}

func TestCreateFreemiumMustBeFree(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db)

	_, err := svc.Create(p.ID, &CreateTierDTO{
		Name:  "Free",
		Type:  models.ProductFreemium,
		Price: 500,
	})
	if err != errFreemiumPrice {
		t.Fatalf("err = %v, want errFreemiumPrice", err)
	}

	tier, err := svc.Create(p.ID, &CreateTierDTO{
		Name: "Free",
		Type: models.ProductFreemium,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tier.Price != 0 {
		t.Fatalf("freemium tier price = %d, want 0", tier.Price)
	}
}

func TestUpdateFreemiumGuardsBothDirections(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db)

	paid, err := svc.Create(p.ID, &CreateTierDTO{Name: "Paid", Price: 900})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Switching a priced tier to freemium without zeroing the price fails.
	freemium := models.ProductFreemium
	if _, err := svc.Update(p.ID, paid.ID, &UpdateTierDTO{Type: &freemium}); err != errFreemiumPrice {
		t.Fatalf("err = %v, want errFreemiumPrice", err)
	}

	// Pricing an existing freemium tier fails too.
	free, err := svc.Create(p.ID, &CreateTierDTO{Name: "Free", Type: models.ProductFreemium})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	price := int64(100)
	if _, err := svc.Update(p.ID, free.ID, &UpdateTierDTO{Price: &price}); err != errFreemiumPrice {
		t.Fatalf("err = %v, want errFreemiumPrice", err)
	}

	// Zeroing the price alongside the type switch is allowed.
	zero := int64(0)
	updated, err := svc.Update(p.ID, paid.ID, &UpdateTierDTO{Type: &freemium, Price: &zero})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Type != models.ProductFreemium || updated.Price != 0 {
		t.Fatalf("updated tier = %+v, want freemium with price 0", updated)
	}
}

func TestReorderRequiresFullList(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db)

	var ids []string
	for _, name := range []string{"Basic", "Plus", "Max"} {
		tier, err := svc.Create(p.ID, &CreateTierDTO{Name: name})
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
		ids = append(ids, tier.ID)
	}

	if err := svc.Reorder(p.ID, ids[:2]); err != errIncompleteOrder {
		t.Fatalf("partial list err = %v, want errIncompleteOrder", err)
	}
	if err := svc.Reorder(p.ID, []string{ids[0], ids[1], "not-a-tier"}); err != errIncompleteOrder {
		t.Fatalf("foreign id err = %v, want errIncompleteOrder", err)
	}
	if err := svc.Reorder(p.ID, []string{ids[0], ids[0], ids[1]}); err != errIncompleteOrder {
		t.Fatalf("duplicate id err = %v, want errIncompleteOrder", err)
	}

	reversed := []string{ids[2], ids[1], ids[0]}
	if err := svc.Reorder(p.ID, reversed); err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	tiers, err := svc.List(p.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i, tier := range tiers {
		if tier.ID != reversed[i] {
			t.Fatalf("position %d = %s, want %s", i, tier.ID, reversed[i])
		}
	}
}

func TestTiersAppendToEnd(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db)

	first, _ := svc.Create(p.ID, &CreateTierDTO{Name: "First"})
	second, _ := svc.Create(p.ID, &CreateTierDTO{Name: "Second"})
	if first.SortOrder != 0 || second.SortOrder != 1 {
		t.Fatalf("sort orders = %d, %d; want 0, 1", first.SortOrder, second.SortOrder)
	}
}

func TestNegativePriceRejectedOnBothPaths(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	p := seedProduct(t, db)

	_, err := svc.Create(p.ID, &CreateTierDTO{Name: "Broken", Price: -100})
	if err != errNegativePrice {
		t.Fatalf("Create err = %v, want errNegativePrice", err)
	}

	tier, err := svc.Create(p.ID, &CreateTierDTO{Name: "Paid", Price: 900})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	bad := int64(-1)
	_, err = svc.Update(p.ID, tier.ID, &UpdateTierDTO{Price: &bad})
	if err != errNegativePrice {
		t.Fatalf("Update err = %v, want errNegativePrice", err)
	}
}
