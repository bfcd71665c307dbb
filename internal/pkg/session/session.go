package session

import (
	"strings"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
	jwtpkg "github.com/commercekit/storefront-core/internal/pkg/jwt"
	"github.com/commercekit/storefront-core/internal/pkg/useragent"
	"gorm.io/gorm"
)

// Session lifetimes. A plain login gets a short session; "remember me"
// extends it to a month. Refresh re-arms whichever TTL the session was
// issued with.
const (
	DefaultTTL  = 24 * time.Hour
	RememberTTL = 30 * 24 * time.Hour

	// ExpiringSoonWindow is how close to expiry a session must be before
	// the dashboard flags it.
	ExpiringSoonWindow = 24 * time.Hour

	// RevokedHistoryWindow is how long a terminated session stays visible
	// in the session list so the user can audit what was just revoked.
	RevokedHistoryWindow = 24 * time.Hour
)

// IssueOptions carries login context recorded on the new session.
type IssueOptions struct {
	IP       string
	UA       string
	Location string
	Remember bool
}

// Issue creates a DB session and signs a JWT bound to that session.
func Issue(db *gorm.DB, userID string, opts IssueOptions) (string, *models.UserSession, error) {
	ttl := DefaultTTL
	if opts.Remember {
		ttl = RememberTTL
	}

	meta := useragent.Parse(opts.UA)
	now := time.Now()
	s := &models.UserSession{
		UserID:       userID,
		IP:           strings.TrimSpace(opts.IP),
		UA:           strings.TrimSpace(opts.UA),
		Device:       meta.Device,
		Browser:      meta.Browser,
		OS:           meta.OS,
		Location:     strings.TrimSpace(opts.Location),
		Remember:     opts.Remember,
		ExpiresAt:    now.Add(ttl),
		LastActiveAt: now,
	}
	if err := db.Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.SignWithOptions(userID, ttl, jwtpkg.SignOptions{
		SessionID: s.ID,
	})
	if err != nil {
		_ = db.Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

// IsActive reports whether the session backing a token is still usable.
func IsActive(db *gorm.DB, userID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		// Legacy token without sid.
		return true, nil
	}

	var count int64
	err := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Touch records activity on a session. Best effort; called on every
// authenticated request.
func Touch(db *gorm.DB, userID, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	_ = db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Update("last_active_at", time.Now()).Error
}

// ListActive returns all live sessions of a user, most recently active first.
func ListActive(db *gorm.DB, userID string) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("last_active_at DESC, created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// ListRecentlyRevoked returns sessions revoked within the window, most
// recently revoked first.
func ListRecentlyRevoked(db *gorm.DB, userID string, window time.Duration) ([]models.UserSession, error) {
	var sessions []models.UserSession
	err := db.Where("user_id = ? AND revoked_at IS NOT NULL AND revoked_at > ?", userID, time.Now().Add(-window)).
		Order("revoked_at DESC").
		Find(&sessions).Error
	return sessions, err
}

// Refresh extends an active session by its issued TTL. It never resurrects
// a revoked or expired session; callers re-read the row afterwards so the
// client only ever sees server-confirmed state.
func Refresh(db *gorm.DB, userID, sessionID string) (*models.UserSession, error) {
	var s models.UserSession
	err := db.Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		First(&s).Error
	if err != nil {
		return nil, err
	}

	ttl := DefaultTTL
	if s.Remember {
		ttl = RememberTTL
	}
	now := time.Now()
	updates := map[string]interface{}{
		"expires_at":     now.Add(ttl),
		"last_active_at": now,
	}
	if err := db.Model(&s).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.ExpiresAt = now.Add(ttl)
	s.LastActiveAt = now
	return &s, nil
}

// Revoke terminates one session with a reason code.
func Revoke(db *gorm.DB, userID, sessionID, reason string) error {
	now := time.Now()
	res := db.Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Updates(map[string]interface{}{
			"revoked_at":     &now,
			"revoked_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAllExcept terminates every live session of the user, keeping at most
// one. Pass keepSessionID="" to terminate everything.
func RevokeAllExcept(db *gorm.DB, userID, keepSessionID, reason string) (int64, error) {
	now := time.Now()
	query := db.Model(&models.UserSession{}).
		Where("user_id = ? AND revoked_at IS NULL", userID)
	if strings.TrimSpace(keepSessionID) != "" {
		query = query.Where("id <> ?", keepSessionID)
	}
	res := query.Updates(map[string]interface{}{
		"revoked_at":     &now,
		"revoked_reason": reason,
	})
	return res.RowsAffected, res.Error
}

// PurgeExpired hard-deletes sessions that expired or were revoked before the
// cutoff. Run from cron.
func PurgeExpired(db *gorm.DB, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := db.Unscoped().
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&models.UserSession{})
	return res.RowsAffected, res.Error
}
