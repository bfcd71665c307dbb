package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
)

// Score computes a 0-100 security score from stored session facts.
// Deterministic for a fixed "now" so list and stats agree within a request.
func Score(s *models.UserSession, lastLoginIP string, now time.Time) int {
	score := 100
	if strings.TrimSpace(s.UA) == "" {
		score -= 30
	}
	if now.Sub(s.CreatedAt) > 30*24*time.Hour {
		score -= 20
	}
	if !s.LastActiveAt.IsZero() && now.Sub(s.LastActiveAt) > 7*24*time.Hour {
		score -= 15
	}
	if lastLoginIP != "" && s.IP != "" && s.IP != lastLoginIP {
		score -= 20
	}
	if expiringSoon(s, now) {
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// TrustLevel maps a score to a trust bucket. A session revoked for
// suspicious activity is always reported suspicious.
func TrustLevel(score int, s *models.UserSession) string {
	if s != nil && s.RevokedAt != nil && strings.HasPrefix(s.RevokedReason, models.TerminateSuspiciousActivity) {
		return TrustSuspicious
	}
	switch {
	case score >= 70:
		return TrustTrusted
	case score >= 40:
		return TrustUnverified
	default:
		return TrustSuspicious
	}
}

func expiringSoon(s *models.UserSession, now time.Time) bool {
	if s.ExpiresAt.Before(now) {
		return false
	}
	return s.ExpiresAt.Sub(now) <= 24*time.Hour
}

// timeRemaining renders the time until expiry for display.
func timeRemaining(s *models.UserSession, now time.Time) string {
	d := s.ExpiresAt.Sub(now)
	if d <= 0 {
		return "expired"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
