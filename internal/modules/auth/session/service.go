package session

import (
	"errors"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns all active sessions of the user with derived fields,
// followed by sessions revoked within the history window so the dashboard
// can show what was just terminated.
func (s *Service) List(userID, currentSID string) ([]sessionView, error) {
	sessions, err := sessionpkg.ListActive(s.db, userID)
	if err != nil {
		return nil, err
	}
	revoked, err := sessionpkg.ListRecentlyRevoked(s.db, userID, sessionpkg.RevokedHistoryWindow)
	if err != nil {
		return nil, err
	}
	lastLoginIP := s.lastLoginIP(userID)
	now := time.Now()

	views := make([]sessionView, 0, len(sessions)+len(revoked))
	for i := range sessions {
		views = append(views, buildView(&sessions[i], currentSID, lastLoginIP, now))
	}
	for i := range revoked {
		views = append(views, buildView(&revoked[i], currentSID, lastLoginIP, now))
	}
	return views, nil
}

// Stats aggregates session counts plus security metrics over the active set.
func (s *Service) Stats(userID, currentSID string) (*statsResponse, error) {
	var total int64
	if err := s.db.Model(&models.UserSession{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	sessions, err := sessionpkg.ListActive(s.db, userID)
	if err != nil {
		return nil, err
	}
	lastLoginIP := s.lastLoginIP(userID)
	now := time.Now()

	out := statsResponse{Total: total, Active: int64(len(sessions))}
	scoreSum := 0
	for i := range sessions {
		sess := &sessions[i]
		if out.LastActivity == nil || sess.LastActiveAt.After(*out.LastActivity) {
			t := sess.LastActiveAt
			out.LastActivity = &t
		}
		score := Score(sess, lastLoginIP, now)
		scoreSum += score
		if TrustLevel(score, sess) == TrustSuspicious {
			out.Security.Suspicious++
		}
		if expiringSoon(sess, now) {
			out.Security.ExpiringSoon++
		}
	}
	if len(sessions) > 0 {
		out.Security.AverageScore = scoreSum / len(sessions)
	}
	return &out, nil
}

// Refresh extends a session's validity and returns the re-read row.
func (s *Service) Refresh(userID, sessionID, currentSID string) (*sessionView, error) {
	sess, err := sessionpkg.Refresh(s.db, userID, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errSessionNotFound
		}
		return nil, err
	}
	view := buildView(sess, currentSID, s.lastLoginIP(userID), time.Now())
	return &view, nil
}

// RefreshAll refreshes every active session of the user and reports how
// many were extended.
func (s *Service) RefreshAll(userID string) (int, error) {
	sessions, err := sessionpkg.ListActive(s.db, userID)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for i := range sessions {
		if _, err := sessionpkg.Refresh(s.db, userID, sessions[i].ID); err == nil {
			refreshed++
		}
	}
	return refreshed, nil
}

// Terminate revokes one session. Revoking the current session requires
// explicit confirmation.
func (s *Service) Terminate(userID, sessionID, currentSID string, opts TerminateOptions) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if sessionID == currentSID && !opts.ConfirmCurrent {
		return errConfirmCurrent
	}
	err := sessionpkg.Revoke(s.db, userID, sessionID, opts.revokeReason())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errSessionNotFound
	}
	return err
}

// BulkTerminate revokes a set of sessions, reporting a result per id.
// Ids the user does not own come back as errors rather than vanishing.
func (s *Service) BulkTerminate(userID string, sessionIDs []string, currentSID string, opts TerminateOptions) ([]bulkResult, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	results := make([]bulkResult, 0, len(sessionIDs))
	for _, id := range sessionIDs {
		res := bulkResult{SessionID: id}
		switch {
		case id == currentSID && !opts.ConfirmCurrent:
			res.Error = "current session requires confirm_current"
		default:
			err := sessionpkg.Revoke(s.db, userID, id, opts.revokeReason())
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Error = "session not found"
			} else if err != nil {
				res.Error = err.Error()
			} else {
				res.Terminated = true
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// EffectiveTerminateAll applies the safety rule for terminate-all: unless
// the caller explicitly confirms, the current session is excluded.
func EffectiveTerminateAll(opts TerminateOptions) TerminateOptions {
	if !opts.ConfirmCurrent {
		opts.ExcludeCurrent = true
	}
	return opts
}

// TerminateAll revokes every session of the user, honoring the
// exclude-current safety rule. Returns the number of revoked sessions
// and the effective options.
func (s *Service) TerminateAll(userID, currentSID string, opts TerminateOptions) (int64, TerminateOptions, error) {
	if err := opts.normalize(); err != nil {
		return 0, opts, err
	}
	effective := EffectiveTerminateAll(opts)
	keep := ""
	if effective.ExcludeCurrent {
		keep = currentSID
	}
	n, err := sessionpkg.RevokeAllExcept(s.db, userID, keep, effective.revokeReason())
	return n, effective, err
}

func (s *Service) lastLoginIP(userID string) string {
	var u models.UserModel
	if err := s.db.Select("last_login_ip").Where("id = ?", userID).First(&u).Error; err != nil {
		return ""
	}
	return u.LastLoginIP
}

func buildView(sess *models.UserSession, currentSID, lastLoginIP string, now time.Time) sessionView {
	score := Score(sess, lastLoginIP, now)
	return sessionView{
		ID:             sess.ID,
		Device:         sess.Device,
		Browser:        sess.Browser,
		OS:             sess.OS,
		IP:             sess.IP,
		Location:       sess.Location,
		Remember:       sess.Remember,
		Created:        sess.CreatedAt,
		LastActiveAt:   sess.LastActiveAt,
		ExpiresAt:      sess.ExpiresAt,
		IsCurrent:      currentSID != "" && sess.ID == currentSID,
		IsExpired:      sess.IsExpired(),
		IsExpiringSoon: expiringSoon(sess, now),
		TimeRemaining:  timeRemaining(sess, now),
		SecurityScore:  score,
		TrustLevel:     TrustLevel(score, sess),
		RevokedAt:      sess.RevokedAt,
		RevokedReason:  sess.RevokedReason,
	}
}
