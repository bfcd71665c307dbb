package user

import (
	"errors"

	"github.com/commercekit/storefront-core/internal/middleware"
	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	u := rg.Group("/user", authMW)

	u.GET("/me", h.me)
	u.PATCH("/profile", h.updateProfile)
	u.POST("/change-password", h.changePassword)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Get(middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toProfile(u))
}

func (h *Handler) updateProfile(c *gin.Context) {
	var dto UpdateProfileDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateProfile(middleware.CurrentUserID(c), &dto)
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			response.Unauthorized(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toProfile(u))
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	err := h.svc.ChangePassword(middleware.CurrentUserID(c), middleware.CurrentSessionID(c), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errWeakPassword):
			response.ValidationFailed(c, "password does not meet the strength requirement", []response.Issue{
				{Field: "new_password", Message: "choose a stronger password"},
			})
		case errors.Is(err, errWrongPassword):
			response.ForbiddenMsg(c, "current password is incorrect")
		case errors.Is(err, errUserNotFound):
			response.Unauthorized(c)
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, gin.H{"changed": true})
}

func toProfile(u *models.UserModel) profileResponse {
	return profileResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Name:          u.Name,
		Role:          u.Role,
		Avatar:        u.Avatar,
		EmailVerified: u.EmailVerified,
		LastLoginTime: u.LastLoginTime,
		LastLoginIP:   u.LastLoginIP,
		Created:       u.CreatedAt,
	}
}
