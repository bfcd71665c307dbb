package models

import "time"

// Termination reason codes accepted by the session manager.
const (
	TerminateUserRequested      = "user_requested"
	TerminateSecurityConcern    = "security_concern"
	TerminateSuspiciousActivity = "suspicious_activity"
	TerminateDeviceLost         = "device_lost"
	TerminateMaintenance        = "maintenance"
	TerminateOther              = "other"
)

// ValidTerminateReason reports whether the reason code is one of the
// enumerated termination reasons.
func ValidTerminateReason(reason string) bool {
	switch reason {
	case TerminateUserRequested, TerminateSecurityConcern, TerminateSuspiciousActivity,
		TerminateDeviceLost, TerminateMaintenance, TerminateOther:
		return true
	}
	return false
}

// UserSession tracks signed-in JWT sessions for device/session management.
// Security score and trust level are derived at read time, never stored.
type UserSession struct {
	Base
	UserID        string     `json:"user_id"        gorm:"index;not null"`
	IP            string     `json:"ip"`
	UA            string     `json:"ua"             gorm:"type:text"`
	Device        string     `json:"device"`
	Browser       string     `json:"browser"`
	OS            string     `json:"os"`
	Location      string     `json:"location"`
	Remember      bool       `json:"remember"`
	ExpiresAt     time.Time  `json:"expires_at"     gorm:"index;not null"`
	LastActiveAt  time.Time  `json:"last_active_at" gorm:"index"`
	RevokedAt     *time.Time `json:"revoked_at"     gorm:"index"`
	RevokedReason string     `json:"revoked_reason"`
}

func (UserSession) TableName() string { return "user_sessions" }

// IsExpired reports whether the session has passed its expiry.
func (s *UserSession) IsExpired() bool { return time.Now().After(s.ExpiresAt) }

// IsActive reports whether the session is neither revoked nor expired.
func (s *UserSession) IsActive() bool { return s.RevokedAt == nil && !s.IsExpired() }
