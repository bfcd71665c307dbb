package session

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/commercekit/storefront-core/internal/models"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.UserModel{}, &models.UserSession{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.UserModel {
	t.Helper()
	u := models.UserModel{Email: "a@example.com", Username: "alice", Password: "x", LastLoginIP: "10.0.0.1"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}

func issueSession(t *testing.T, db *gorm.DB, userID string) *models.UserSession {
	t.Helper()
	_, s, err := sessionpkg.Issue(db, userID, sessionpkg.IssueOptions{
		IP: "10.0.0.1",
		UA: "Mozilla/5.0 Chrome/120.0",
	})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return s
}

func TestEffectiveTerminateAll(t *testing.T) {
	// Without confirmation the current session must survive.
	opts := EffectiveTerminateAll(TerminateOptions{ConfirmCurrent: false})
	if !opts.ExcludeCurrent {
		t.Fatal("unconfirmed terminate-all must force exclude_current")
	}

	opts = EffectiveTerminateAll(TerminateOptions{ConfirmCurrent: false, ExcludeCurrent: false})
	if !opts.ExcludeCurrent {
		t.Fatal("exclude_current=false without confirmation must still be overridden")
	}

	opts = EffectiveTerminateAll(TerminateOptions{ConfirmCurrent: true, ExcludeCurrent: false})
	if opts.ExcludeCurrent {
		t.Fatal("confirmed terminate-all must honor exclude_current=false")
	}

	opts = EffectiveTerminateAll(TerminateOptions{ConfirmCurrent: true, ExcludeCurrent: true})
	if !opts.ExcludeCurrent {
		t.Fatal("explicit exclude_current=true must be preserved")
	}
}

func TestTerminateCurrentRequiresConfirmation(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	current := issueSession(t, db, u.ID)

	err := svc.Terminate(u.ID, current.ID, current.ID, TerminateOptions{})
	if err != errConfirmCurrent {
		t.Fatalf("err = %v, want errConfirmCurrent", err)
	}

	err = svc.Terminate(u.ID, current.ID, current.ID, TerminateOptions{ConfirmCurrent: true})
	if err != nil {
		t.Fatalf("confirmed terminate: %v", err)
	}

	var s models.UserSession
	if err := db.Where("id = ?", current.ID).First(&s).Error; err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if s.RevokedAt == nil || s.RevokedReason != models.TerminateUserRequested {
		t.Fatalf("session = %+v, want revoked with user_requested", s)
	}
}

func TestTerminateRejectsUnknownReason(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	s := issueSession(t, db, u.ID)

	err := svc.Terminate(u.ID, s.ID, "", TerminateOptions{Reason: "because"})
	if err != errInvalidReason {
		t.Fatalf("err = %v, want errInvalidReason", err)
	}
}

func TestTerminateOtherStoresReasonText(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	s := issueSession(t, db, u.ID)

	err := svc.Terminate(u.ID, s.ID, "", TerminateOptions{
		Reason:     models.TerminateOther,
		ReasonText: "switching laptops",
	})
	if err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	var got models.UserSession
	if err := db.Where("id = ?", s.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.RevokedReason != "other: switching laptops" {
		t.Fatalf("revoked_reason = %q, want %q", got.RevokedReason, "other: switching laptops")
	}
}

func TestBulkTerminate(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	current := issueSession(t, db, u.ID)
	other := issueSession(t, db, u.ID)

	results, err := svc.BulkTerminate(u.ID,
		[]string{other.ID, current.ID, "not-mine"},
		current.ID, TerminateOptions{})
	if err != nil {
		t.Fatalf("BulkTerminate: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byID := map[string]bulkResult{}
	for _, r := range results {
		byID[r.SessionID] = r
	}
	if !byID[other.ID].Terminated {
		t.Errorf("other session not terminated: %+v", byID[other.ID])
	}
	if byID[current.ID].Terminated || byID[current.ID].Error == "" {
		t.Errorf("unconfirmed current session terminated: %+v", byID[current.ID])
	}
	if byID["not-mine"].Terminated || byID["not-mine"].Error != "session not found" {
		t.Errorf("foreign id result = %+v", byID["not-mine"])
	}
}

func TestTerminateAllExcludesCurrentByDefault(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	current := issueSession(t, db, u.ID)
	issueSession(t, db, u.ID)
	issueSession(t, db, u.ID)

	n, effective, err := svc.TerminateAll(u.ID, current.ID, TerminateOptions{})
	if err != nil {
		t.Fatalf("TerminateAll: %v", err)
	}
	if !effective.ExcludeCurrent {
		t.Fatal("effective options must exclude the current session")
	}
	if n != 2 {
		t.Fatalf("terminated %d sessions, want 2", n)
	}

	active, err := sessionpkg.ListActive(db, u.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 1 || active[0].ID != current.ID {
		t.Fatalf("active sessions = %+v, want only the current one", active)
	}
}

func TestTerminateAllConfirmedIncludesCurrent(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	current := issueSession(t, db, u.ID)
	issueSession(t, db, u.ID)

	n, _, err := svc.TerminateAll(u.ID, current.ID, TerminateOptions{ConfirmCurrent: true})
	if err != nil {
		t.Fatalf("TerminateAll: %v", err)
	}
	if n != 2 {
		t.Fatalf("terminated %d sessions, want 2", n)
	}

	active, err := sessionpkg.ListActive(db, u.ID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active sessions = %+v, want none", active)
	}
}

func TestListMarksCurrentSession(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	current := issueSession(t, db, u.ID)
	issueSession(t, db, u.ID)

	views, err := svc.List(u.ID, current.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d sessions, want 2", len(views))
	}
	currentCount := 0
	for _, v := range views {
		if v.IsCurrent {
			currentCount++
			if v.ID != current.ID {
				t.Errorf("wrong session marked current: %s", v.ID)
			}
		}
	}
	if currentCount != 1 {
		t.Fatalf("%d sessions marked current, want 1", currentCount)
	}
}

func TestRefreshExtendsExpiry(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	s := issueSession(t, db, u.ID)

	// Age the session artificially so the extension is observable.
	soon := time.Now().Add(time.Hour)
	if err := db.Model(&models.UserSession{}).Where("id = ?", s.ID).Update("expires_at", soon).Error; err != nil {
		t.Fatalf("age session: %v", err)
	}

	view, err := svc.Refresh(u.ID, s.ID, s.ID)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if !view.ExpiresAt.After(soon) {
		t.Fatalf("expires_at = %v, want later than %v", view.ExpiresAt, soon)
	}

	if _, err := svc.Refresh(u.ID, "missing", s.ID); err != errSessionNotFound {
		t.Fatalf("missing session err = %v, want errSessionNotFound", err)
	}
}

func TestListIncludesRecentlyRevoked(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db)
	u := seedUser(t, db)
	current := issueSession(t, db, u.ID)
	revoked := issueSession(t, db, u.ID)
	stale := issueSession(t, db, u.ID)

	opts := TerminateOptions{Reason: models.TerminateSuspiciousActivity}
	if err := svc.Terminate(u.ID, revoked.ID, current.ID, opts); err != nil {
		t.Fatalf("Terminate: %v", err)
	}

	// A revocation older than the history window drops out of the list.
	if err := sessionpkg.Revoke(db, u.ID, stale.ID, models.TerminateUserRequested); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := db.Model(&models.UserSession{}).Where("id = ?", stale.ID).Update("revoked_at", &past).Error; err != nil {
		t.Fatalf("age revocation: %v", err)
	}

	views, err := svc.List(u.ID, current.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d sessions, want 2", len(views))
	}

	var revokedView *sessionView
	for i := range views {
		if views[i].ID == stale.ID {
			t.Fatalf("session revoked outside the history window listed")
		}
		if views[i].ID == revoked.ID {
			revokedView = &views[i]
		}
	}
	if revokedView == nil {
		t.Fatalf("recently revoked session missing from list")
	}
	if revokedView.RevokedAt == nil {
		t.Fatalf("revoked session listed without revoked_at")
	}
	if revokedView.RevokedReason != models.TerminateSuspiciousActivity {
		t.Fatalf("revoked_reason = %q, want %q", revokedView.RevokedReason, models.TerminateSuspiciousActivity)
	}
	if revokedView.TrustLevel != TrustSuspicious {
		t.Fatalf("trust_level = %q, want %q", revokedView.TrustLevel, TrustSuspicious)
	}
}
