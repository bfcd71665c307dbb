package product

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/commercekit/storefront-core/internal/middleware"
	"github.com/commercekit/storefront-core/internal/models"
	jwtpkg "github.com/commercekit/storefront-core/internal/pkg/jwt"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
)

func newCatalogRouter(t *testing.T) (*gin.Engine, *Service, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	if err := db.AutoMigrate(&models.UserSession{}); err != nil {
		t.Fatalf("migrate sessions: %v", err)
	}
	svc := NewService(db)
	r := gin.New()
	api := r.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api, middleware.Auth(db), middleware.AdminOnly(db))
	return r, svc, db
}

func TestGetHidesNonActiveFromAnonymous(t *testing.T) {
	r, svc, _ := newCatalogRouter(t)

	draft, err := svc.Create(&CreateProductDTO{Name: "Unreleased Widget", SKU: "UNREL-1"})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	live, err := svc.Create(&CreateProductDTO{Name: "Live Widget", SKU: "LIVE-1", Status: models.ProductActive})
	if err != nil {
		t.Fatalf("create active: %v", err)
	}

	hidden := []string{
		"/api/v1/products/" + draft.ID,
		"/api/v1/products/" + draft.ID + "/render",
	}
	for _, path := range hidden {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("anonymous GET %s = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+live.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous GET of an active product = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestGetShowsNonActiveToAdmin(t *testing.T) {
	r, svc, db := newCatalogRouter(t)
	jwtpkg.SetSecret("catalog-test-secret")

	admin := models.UserModel{Email: "ops@example.com", Username: "ops", Password: "x", Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	token, _, err := sessionpkg.Issue(db, admin.ID, sessionpkg.IssueOptions{UA: "Mozilla/5.0 Chrome/120.0"})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	draft, err := svc.Create(&CreateProductDTO{Name: "Unreleased Widget", SKU: "UNREL-2"})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+draft.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("admin GET of a draft product = %d, want %d", w.Code, http.StatusOK)
	}
}
