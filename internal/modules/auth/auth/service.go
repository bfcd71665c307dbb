package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/mail"
	"github.com/commercekit/storefront-core/internal/pkg/password"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
	"github.com/commercekit/storefront-core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// Registrations below this strength score are rejected.
	minPasswordScore = 30

	verifyTokenTTL = 48 * time.Hour
	resetTokenTTL  = time.Hour
)

type Service struct {
	db      *gorm.DB
	mailer  *mail.Sender
	tasks   *taskqueue.Service
	baseURL string
	log     *zap.Logger
}

func NewService(db *gorm.DB, mailer *mail.Sender, tasks *taskqueue.Service, baseURL string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{db: db, mailer: mailer, tasks: tasks, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// Login verifies credentials and issues a fresh session. RememberMe
// selects between the short and the 30-day session TTL.
func (s *Service) Login(dto *LoginDTO, ip, ua string) (string, *models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(dto.Email))).
		First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			time.Sleep(3 * time.Second)
			return "", nil, errUserNotFound
		}
		return "", nil, err
	}
	if u.Banned {
		return "", nil, errUserBanned
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.Password)); err != nil {
		time.Sleep(3 * time.Second)
		return "", nil, errWrongPassword
	}

	token, _, err := sessionpkg.Issue(s.db, u.ID, sessionpkg.IssueOptions{
		IP:       ip,
		UA:       ua,
		Remember: dto.RememberMe,
	})
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	s.db.Model(&models.UserModel{}).Where("id = ?", u.ID).
		Updates(map[string]interface{}{"last_login_time": now, "last_login_ip": ip})
	u.LastLoginTime = &now
	u.LastLoginIP = ip
	return token, &u, nil
}

// Register creates a customer account. The very first account becomes
// the admin so a fresh deployment can bootstrap itself.
func (s *Service) Register(dto *RegisterDTO) (*models.UserModel, error) {
	if password.Strength(dto.Password) < minPasswordScore {
		return nil, errWeakPassword
	}

	email := strings.ToLower(strings.TrimSpace(dto.Email))
	username := strings.TrimSpace(dto.Username)

	var count int64
	if err := s.db.Model(&models.UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errEmailTaken
	}
	if err := s.db.Model(&models.UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var total int64
	s.db.Model(&models.UserModel{}).Count(&total)
	role := models.RoleCustomer
	if total == 0 {
		role = models.RoleAdmin
	}

	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = username
	}
	u := models.UserModel{
		Email:    email,
		Username: username,
		Password: string(hash),
		Name:     name,
		Role:     role,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, err
	}

	if token, err := s.issueVerification(u.ID, models.VerifyPurposeEmail, verifyTokenTTL); err == nil {
		s.dispatchMail(mailKindVerify, u.Email, s.verifyURL(token))
	}
	return &u, nil
}

// VerifyEmail consumes an email-verification token.
func (s *Service) VerifyEmail(token string) error {
	vt, err := s.consumeToken(token, models.VerifyPurposeEmail)
	if err != nil {
		return err
	}
	return s.db.Model(&models.UserModel{}).Where("id = ?", vt.UserID).
		Update("email_verified", true).Error
}

// ResendVerification re-issues a verification mail when the address
// belongs to an unverified account. The caller must not reveal whether
// that was the case.
func (s *Service) ResendVerification(email string) error {
	var u models.UserModel
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if u.EmailVerified || u.Banned {
		return nil
	}
	token, err := s.issueVerification(u.ID, models.VerifyPurposeEmail, verifyTokenTTL)
	if err != nil {
		return err
	}
	s.dispatchMail(mailKindVerify, u.Email, s.verifyURL(token))
	return nil
}

// ForgotPassword sends a reset mail when the account exists. Always
// behaves identically from the caller's point of view.
func (s *Service) ForgotPassword(email string) error {
	var u models.UserModel
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if u.Banned {
		return nil
	}
	token, err := s.issueVerification(u.ID, models.VerifyPurposePasswordReset, resetTokenTTL)
	if err != nil {
		return err
	}
	s.dispatchMail(mailKindReset, u.Email, s.resetURL(token))
	return nil
}

// ResetPassword consumes a reset token, replaces the password, and
// revokes every session of the account.
func (s *Service) ResetPassword(token, newPassword string) error {
	if password.Strength(newPassword) < minPasswordScore {
		return errWeakPassword
	}
	vt, err := s.consumeToken(token, models.VerifyPurposePasswordReset)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.db.Model(&models.UserModel{}).Where("id = ?", vt.UserID).
		Update("password", string(hash)).Error; err != nil {
		return err
	}
	_, err = sessionpkg.RevokeAllExcept(s.db, vt.UserID, "", models.TerminateSecurityConcern)
	return err
}

// SignOut revokes the given session.
func (s *Service) SignOut(userID, sessionID string) {
	if userID == "" || sessionID == "" {
		return
	}
	_ = sessionpkg.Revoke(s.db, userID, sessionID, models.TerminateUserRequested)
}

func (s *Service) issueVerification(userID, purpose string, ttl time.Duration) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	vt := models.VerificationToken{
		UserID:    userID,
		Token:     token,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.Create(&vt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) consumeToken(token, purpose string) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	err := s.db.Where("token = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?",
		strings.TrimSpace(token), purpose, time.Now()).First(&vt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errVerifyTokenInvalid
		}
		return nil, err
	}
	now := time.Now()
	if err := s.db.Model(&models.VerificationToken{}).Where("id = ?", vt.ID).
		Update("used_at", now).Error; err != nil {
		return nil, err
	}
	return &vt, nil
}

func (s *Service) verifyURL(token string) string {
	return s.baseURL + "/verify-email?token=" + token
}

func (s *Service) resetURL(token string) string {
	return s.baseURL + "/reset-password?token=" + token
}

const (
	mailKindVerify = "verify_email"
	mailKindReset  = "password_reset"
)

// dispatchMail sends in the background, tracking the attempt as a task
// record when the queue is available.
func (s *Service) dispatchMail(kind, to, actionURL string) {
	if s.mailer == nil {
		return
	}
	ctx := context.Background()
	var task *taskqueue.Task
	if s.tasks != nil {
		task, _ = s.tasks.Enqueue(ctx, taskqueue.TypeMailDispatch,
			map[string]string{"kind": kind, "to": to}, "")
	}
	go func() {
		var err error
		switch kind {
		case mailKindVerify:
			err = s.mailer.SendVerifyEmail(to, actionURL)
		case mailKindReset:
			err = s.mailer.SendPasswordReset(to, actionURL)
		}
		if s.tasks != nil && task != nil {
			if err != nil {
				_ = s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskFailed, nil, err.Error())
			} else {
				_ = s.tasks.UpdateStatus(ctx, task.ID, taskqueue.TaskCompleted, nil, "")
			}
		}
		if err != nil {
			s.log.Warn("mail dispatch failed",
				zap.String("kind", kind), zap.String("to", to), zap.Error(err))
		}
	}()
}

// API tokens

func (s *Service) ListTokens(userID string) ([]models.APIToken, error) {
	var tokens []models.APIToken
	return tokens, s.db.Where("user_id = ? AND (expired_at IS NULL OR expired_at > ?)", userID, time.Now()).
		Order("created_at DESC").Find(&tokens).Error
}

func (s *Service) CreateToken(userID string, dto *CreateTokenDTO) (*models.APIToken, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	token := "sfk" + hex.EncodeToString(b)

	t := models.APIToken{
		UserID:    userID,
		Token:     token,
		Name:      dto.Name,
		ExpiredAt: dto.ExpiredAt,
	}
	return &t, s.db.Create(&t).Error
}

func (s *Service) DeleteToken(userID, tokenID string) error {
	result := s.db.Where("id = ? AND user_id = ?", tokenID, userID).
		Delete(&models.APIToken{})
	if result.RowsAffected == 0 {
		return fmt.Errorf("token not found")
	}
	return result.Error
}
