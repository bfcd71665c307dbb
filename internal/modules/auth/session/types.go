package session

import (
	"errors"
	"strings"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
)

// Trust levels derived from the security score.
const (
	TrustTrusted    = "trusted"
	TrustUnverified = "unverified"
	TrustSuspicious = "suspicious"
)

// TerminateOptions controls how sessions are terminated.
type TerminateOptions struct {
	Reason         string `json:"reason"`
	ReasonText     string `json:"reason_text"`
	ConfirmCurrent bool   `json:"confirm_current"`
	ExcludeCurrent bool   `json:"exclude_current"`
}

// normalize fills the default reason and validates the code.
func (o *TerminateOptions) normalize() error {
	o.Reason = strings.TrimSpace(o.Reason)
	if o.Reason == "" {
		o.Reason = models.TerminateUserRequested
	}
	if !models.ValidTerminateReason(o.Reason) {
		return errInvalidReason
	}
	return nil
}

// revokeReason is what gets stored on the session row.
func (o *TerminateOptions) revokeReason() string {
	if o.Reason == models.TerminateOther && strings.TrimSpace(o.ReasonText) != "" {
		return models.TerminateOther + ": " + strings.TrimSpace(o.ReasonText)
	}
	return o.Reason
}

type RefreshDTO struct {
	SessionID string `json:"session_id" binding:"required"`
	Reason    string `json:"reason"`
}

type BulkTerminateDTO struct {
	SessionIDs []string         `json:"session_ids" binding:"required,min=1"`
	Options    TerminateOptions `json:"options"`
}

type TerminateAllDTO struct {
	Options TerminateOptions `json:"options"`
}

type sessionView struct {
	ID             string     `json:"id"`
	Device         string     `json:"device"`
	Browser        string     `json:"browser"`
	OS             string     `json:"os"`
	IP             string     `json:"ip"`
	Location       string     `json:"location,omitempty"`
	Remember       bool       `json:"remember"`
	Created        time.Time  `json:"created"`
	LastActiveAt   time.Time  `json:"last_active_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	IsCurrent      bool       `json:"is_current"`
	IsExpired      bool       `json:"is_expired"`
	IsExpiringSoon bool       `json:"is_expiring_soon"`
	TimeRemaining  string     `json:"time_remaining"`
	SecurityScore  int        `json:"security_score"`
	TrustLevel     string     `json:"trust_level"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	RevokedReason  string     `json:"revoked_reason,omitempty"`
}

type securityMetrics struct {
	Suspicious   int `json:"suspicious"`
	ExpiringSoon int `json:"expiring_soon"`
	AverageScore int `json:"average_score"`
}

type statsResponse struct {
	Total        int64           `json:"total"`
	Active       int64           `json:"active"`
	LastActivity *time.Time      `json:"last_activity"`
	Security     securityMetrics `json:"security"`
}

type bulkResult struct {
	SessionID  string `json:"session_id"`
	Terminated bool   `json:"terminated"`
	Error      string `json:"error,omitempty"`
}

var (
	errSessionNotFound = errors.New("session not found")
	errConfirmCurrent  = errors.New("terminating the current session requires confirmation")
	errInvalidReason   = errors.New("invalid termination reason")
)
