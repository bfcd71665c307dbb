package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/commercekit/storefront-core/internal/middleware"
	"github.com/commercekit/storefront-core/internal/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.UserModel{}, &models.UserSession{}, &models.APIToken{}, &models.VerificationToken{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	r := gin.New()
	api := r.Group("/api/v1")
	svc := NewService(db, nil, nil, "http://localhost:3100", nil)
	NewHandler(svc).RegisterRoutes(api, middleware.Auth(db))
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 Chrome/120.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"root@example.com","username":"root","password":"Sup3r-Secret!"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Fatalf("first user role = %q, want admin", got.Role)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"second@example.com","username":"second","password":"Sup3r-Secret!"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Role != models.RoleCustomer {
		t.Fatalf("second user role = %q, want customer", got.Role)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"weak@example.com","username":"weakling","password":"abc"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var got struct {
		Issues []struct {
			Field string `json:"field"`
		} `json:"issues"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Issues) != 1 || got.Issues[0].Field != "password" {
		t.Fatalf("issues = %+v, want one issue on field password", got.Issues)
	}
}

func TestLoginIssuesSessionAndRedirect(t *testing.T) {
	r, db := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"alice@example.com","username":"alice","password":"Sup3r-Secret!"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@example.com","password":"Sup3r-Secret!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	var got struct {
		Token    string `json:"token"`
		Redirect string `json:"redirect"`
		User     struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token == "" {
		t.Fatal("login response has no token")
	}
	if got.Redirect != "/dashboard" {
		t.Fatalf("redirect = %q, want /dashboard", got.Redirect)
	}
	if got.User.Email != "alice@example.com" {
		t.Fatalf("user email = %q", got.User.Email)
	}

	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "sf-token=") {
		t.Fatalf("Set-Cookie = %q, want sf-token", cookie)
	}

	var sessions []models.UserSession
	if err := db.Find(&sessions).Error; err != nil {
		t.Fatalf("load sessions: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	if sessions[0].Remember {
		t.Fatal("plain login must not create a remembered session")
	}
	if ttl := time.Until(sessions[0].ExpiresAt); ttl > 25*time.Hour {
		t.Fatalf("session ttl = %v, want around 24h", ttl)
	}
}

func TestLoginRememberMeExtendsTTL(t *testing.T) {
	r, db := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"bob@example.com","username":"bobby","password":"Sup3r-Secret!"}`)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/login",
		`{"email":"bob@example.com","password":"Sup3r-Secret!","rememberMe":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}

	var s models.UserSession
	if err := db.First(&s).Error; err != nil {
		t.Fatalf("load session: %v", err)
	}
	if !s.Remember {
		t.Fatal("rememberMe login must mark the session remembered")
	}
	if ttl := time.Until(s.ExpiresAt); ttl < 29*24*time.Hour {
		t.Fatalf("session ttl = %v, want around 30 days", ttl)
	}
}

// The forgot-password endpoint must not reveal whether an account exists.
func TestForgotPasswordDoesNotLeakAccounts(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/v1/auth/register",
		`{"email":"real@example.com","username":"realuser","password":"Sup3r-Secret!"}`)

	known := doJSON(t, r, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"real@example.com"}`)
	unknown := doJSON(t, r, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"ghost@example.com"}`)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d; want 200 for both", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("responses differ:\nknown:   %s\nunknown: %s", known.Body.String(), unknown.Body.String())
	}
}

func TestPasswordStrengthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/password-strength?password=Sup3r-Secret!", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got struct {
		Score int    `json:"score"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Score < 85 || got.Label != "strong" {
		t.Fatalf("report = %+v, want strong score", got)
	}
}
