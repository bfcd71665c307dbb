package users

import (
	"errors"
	"strconv"
	"strings"

	"github.com/commercekit/storefront-core/internal/middleware"
	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/pagination"
	"github.com/commercekit/storefront-core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the admin user table. adminMW must enforce the
// admin role on top of authentication.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	u := rg.Group("/admin/users", authMW, adminMW)

	u.GET("", h.list)
	u.GET("/:id", h.get)
	u.PATCH("/:id", h.update)
	u.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		Role:  strings.TrimSpace(c.Query("role")),
		Query: c.Query("q"),
	}
	if raw := strings.TrimSpace(c.Query("banned")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			filter.Banned = &v
		}
	}

	users, page, err := h.svc.List(pagination.FromContext(c), filter)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	rows := make([]userRow, len(users))
	for i := range users {
		rows[i] = toRow(&users[i])
	}
	response.Paged(c, rows, page)
}

func (h *Handler) get(c *gin.Context) {
	u, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, errUserNotFound) {
			response.NotFoundMsg(c, "user not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toRow(u))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Update(middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			response.NotFoundMsg(c, "user not found")
		case errors.Is(err, errInvalidRole):
			response.BadRequest(c, "role must be admin or customer")
		case errors.Is(err, errCannotDemoteSelf):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, toRow(u))
}

func (h *Handler) remove(c *gin.Context) {
	err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			response.NotFoundMsg(c, "user not found")
		case errors.Is(err, errCannotDeleteSelf):
			response.UnprocessableEntity(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

func toRow(u *models.UserModel) userRow {
	return userRow{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		Banned:        u.Banned,
		LastLoginTime: u.LastLoginTime,
		Created:       u.CreatedAt,
	}
}
