package middleware

import (
	"fmt"
	"strings"
	"testing"
	"time"

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
	if err := db.AutoMigrate(&models.UserModel{}, &models.APIToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestValidateAPITokenExpiry(t *testing.T) {
	db := openTestDB(t)
	u := models.UserModel{Email: "a@example.com", Username: "alice", Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	tokens := []models.APIToken{
		{UserID: u.ID, Token: "sfk_live", Name: "ci"},
		{UserID: u.ID, Token: "sfk_scoped", Name: "deploy", ExpiredAt: &future},
		{UserID: u.ID, Token: "sfk_expired", Name: "old", ExpiredAt: &past},
	}
	for i := range tokens {
		if err := db.Create(&tokens[i]).Error; err != nil {
			t.Fatalf("seed token %s: %v", tokens[i].Token, err)
		}
	}

	cases := []struct {
		token   string
		wantErr bool
	}{
		{"sfk_live", false},
		{"sfk_scoped", false},
		{"sfk_expired", true},
		{"sfk_unknown", true},
	}
	for _, tc := range cases {
		userID, err := validateAPIToken(db, tc.token)
		if tc.wantErr {
			if err == nil {
				t.Errorf("validateAPIToken(%q) accepted, want rejection", tc.token)
			}
			continue
		}
		if err != nil {
			t.Errorf("validateAPIToken(%q): %v", tc.token, err)
			continue
		}
		if userID != u.ID {
			t.Errorf("validateAPIToken(%q) = user %q, want %q", tc.token, userID, u.ID)
		}
	}
}
