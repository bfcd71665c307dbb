package users

import (
	"errors"
	"strings"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/pagination"
	"github.com/commercekit/storefront-core/internal/pkg/response"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ListFilter narrows the admin user table.
type ListFilter struct {
	Role   string
	Query  string
	Banned *bool
}

func (s *Service) List(q pagination.Query, filter ListFilter) ([]models.UserModel, response.Pagination, error) {
	query := s.db.Model(&models.UserModel{}).Order("created_at DESC")
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Banned != nil {
		query = query.Where("banned = ?", *filter.Banned)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + term + "%"
		query = query.Where("email LIKE ? OR username LIKE ? OR name LIKE ?", like, like, like)
	}

	var users []models.UserModel
	page, err := pagination.Paginate(query, q, &users)
	return users, page, err
}

func (s *Service) Get(id string) (*models.UserModel, error) {
	var u models.UserModel
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Update patches role/ban/name/verification flags. Admins cannot change
// their own role or ban themselves.
func (s *Service) Update(actorID, id string, dto *UpdateUserDTO) (*models.UserModel, error) {
	updates := map[string]interface{}{}
	if dto.Role != nil {
		if actorID == id {
			return nil, errCannotDemoteSelf
		}
		role := strings.TrimSpace(*dto.Role)
		if role != models.RoleAdmin && role != models.RoleCustomer {
			return nil, errInvalidRole
		}
		updates["role"] = role
	}
	if dto.Banned != nil {
		if actorID == id {
			return nil, errCannotDemoteSelf
		}
		updates["banned"] = *dto.Banned
	}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.EmailVerified != nil {
		updates["email_verified"] = *dto.EmailVerified
	}

	if len(updates) > 0 {
		res := s.db.Model(&models.UserModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, errUserNotFound
		}
		// Banning kicks the user out everywhere.
		if dto.Banned != nil && *dto.Banned {
			_, _ = sessionpkg.RevokeAllExcept(s.db, id, "", models.TerminateSecurityConcern)
		}
	}
	return s.Get(id)
}

// Delete removes an account and revokes all of its sessions.
func (s *Service) Delete(actorID, id string) error {
	if actorID == id {
		return errCannotDeleteSelf
	}
	_, _ = sessionpkg.RevokeAllExcept(s.db, id, "", models.TerminateMaintenance)
	res := s.db.Where("id = ?", id).Delete(&models.UserModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errUserNotFound
	}
	return nil
}
