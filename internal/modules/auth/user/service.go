package user

import (
	"errors"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/password"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordScore = 30

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) Get(userID string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) UpdateProfile(userID string, dto *UpdateProfileDTO) (*models.UserModel, error) {
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
	}
	if len(updates) > 0 {
		res := s.db.Model(&models.UserModel{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, errUserNotFound
		}
	}
	return s.Get(userID)
}

// ChangePassword verifies the current password, stores the new hash,
// and revokes every other session.
func (s *Service) ChangePassword(userID, currentSID string, dto *ChangePasswordDTO) error {
	if password.Strength(dto.NewPassword) < minPasswordScore {
		return errWeakPassword
	}
	u, err := s.Get(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.OldPassword)); err != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.db.Model(&models.UserModel{}).Where("id = ?", userID).
		Update("password", string(hash)).Error; err != nil {
		return err
	}
	_, err = sessionpkg.RevokeAllExcept(s.db, userID, currentSID, models.TerminateSecurityConcern)
	return err
}
