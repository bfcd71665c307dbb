package session

import (
	"testing"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
)

func freshSession(now time.Time) *models.UserSession {
	s := &models.UserSession{
		UA:           "Mozilla/5.0 (Macintosh) Chrome/120.0",
		IP:           "10.0.0.1",
		ExpiresAt:    now.Add(14 * 24 * time.Hour),
		LastActiveAt: now.Add(-time.Hour),
	}
	s.CreatedAt = now.Add(-24 * time.Hour)
	return s
}

func TestScoreFreshSession(t *testing.T) {
	now := time.Now()
	s := freshSession(now)
	if got := Score(s, "10.0.0.1", now); got != 100 {
		t.Fatalf("fresh session score = %d, want 100", got)
	}
}

func TestScoreDeductions(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		mutate func(*models.UserSession)
		ip     string
		want   int
	}{
		{"empty ua", func(s *models.UserSession) { s.UA = "" }, "10.0.0.1", 70},
		{"older than 30 days", func(s *models.UserSession) { s.CreatedAt = now.Add(-31 * 24 * time.Hour) }, "10.0.0.1", 80},
		{"inactive over a week", func(s *models.UserSession) { s.LastActiveAt = now.Add(-8 * 24 * time.Hour) }, "10.0.0.1", 85},
		{"ip mismatch", func(s *models.UserSession) {}, "192.168.1.1", 80},
		{"expiring soon", func(s *models.UserSession) { s.ExpiresAt = now.Add(2 * time.Hour) }, "10.0.0.1", 90},
	}
	for _, tc := range cases {
		s := freshSession(now)
		tc.mutate(s)
		if got := Score(s, tc.ip, now); got != tc.want {
			t.Errorf("%s: score = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	now := time.Now()
	s := &models.UserSession{
		UA:           "",
		IP:           "10.0.0.9",
		ExpiresAt:    now.Add(time.Hour),
		LastActiveAt: now.Add(-10 * 24 * time.Hour),
	}
	s.CreatedAt = now.Add(-60 * 24 * time.Hour)
	got := Score(s, "172.16.0.1", now)
	if got < 0 || got > 100 {
		t.Fatalf("score = %d, want within [0, 100]", got)
	}
	// 100 - 30 - 20 - 15 - 20 - 10 floors at 5.
	if got != 5 {
		t.Fatalf("worst-case score = %d, want 5", got)
	}
}

func TestTrustLevelBuckets(t *testing.T) {
	s := &models.UserSession{}
	cases := []struct {
		score int
		want  string
	}{
		{100, TrustTrusted},
		{70, TrustTrusted},
		{69, TrustUnverified},
		{40, TrustUnverified},
		{39, TrustSuspicious},
		{0, TrustSuspicious},
	}
	for _, tc := range cases {
		if got := TrustLevel(tc.score, s); got != tc.want {
			t.Errorf("TrustLevel(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestRevokedSuspiciousAlwaysSuspicious(t *testing.T) {
	now := time.Now()
	s := &models.UserSession{
		RevokedAt:     &now,
		RevokedReason: models.TerminateSuspiciousActivity,
	}
	if got := TrustLevel(100, s); got != TrustSuspicious {
		t.Fatalf("revoked-suspicious trust = %q, want %q", got, TrustSuspicious)
	}
}

func TestTimeRemaining(t *testing.T) {
	now := time.Now()
	cases := []struct {
		d    time.Duration
		want string
	}{
		{-time.Minute, "expired"},
		{30 * time.Minute, "30m"},
		{90 * time.Minute, "1h 30m"},
		{26 * time.Hour, "1d 2h"},
	}
	for _, tc := range cases {
		s := &models.UserSession{ExpiresAt: now.Add(tc.d)}
		if got := timeRemaining(s, now); got != tc.want {
			t.Errorf("timeRemaining(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
