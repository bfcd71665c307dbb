package pricing

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/storefront-core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts tier management under a product. Listing is public,
// everything else is admin only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	t := rg.Group("/products/:id/pricing-tiers")

	t.GET("", h.list)
	t.GET("/:tid", h.get)

	t.POST("", authMW, adminMW, h.create)
	t.PUT("/:tid", authMW, adminMW, h.update)
	t.DELETE("/:tid", authMW, adminMW, h.remove)
	t.POST("/reorder", authMW, adminMW, h.reorder)
}

func (h *Handler) list(c *gin.Context) {
	tiers, err := h.svc.List(c.Param("id"))
	if err != nil {
		h.writeTierError(c, err)
		return
	}
	response.OK(c, tiers)
}

func (h *Handler) get(c *gin.Context) {
	tier, err := h.svc.Get(c.Param("id"), c.Param("tid"))
	if err != nil {
		h.writeTierError(c, err)
		return
	}
	response.OK(c, tier)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateTierDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tier, err := h.svc.Create(c.Param("id"), &dto)
	if err != nil {
		h.writeTierError(c, err)
		return
	}
	response.Created(c, tier)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTierDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tier, err := h.svc.Update(c.Param("id"), c.Param("tid"), &dto)
	if err != nil {
		h.writeTierError(c, err)
		return
	}
	response.OK(c, tier)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id"), c.Param("tid")); err != nil {
		h.writeTierError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) reorder(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.Reorder(c.Param("id"), dto.IDs); err != nil {
		h.writeTierError(c, err)
		return
	}
	tiers, err := h.svc.List(c.Param("id"))
	if err != nil {
		h.writeTierError(c, err)
		return
	}
	response.OK(c, tiers)
}

func (h *Handler) writeTierError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errProductNotFound):
		response.NotFoundMsg(c, "product not found")
	case errors.Is(err, errTierNotFound):
		response.NotFoundMsg(c, "pricing tier not found")
	case errors.Is(err, errFreemiumPrice):
		response.ValidationFailed(c, "freemium tiers must be free", []response.Issue{
			{Field: "price", Message: "freemium tiers must have price 0"},
		})
	case errors.Is(err, errNegativePrice):
		response.ValidationFailed(c, "price must not be negative", []response.Issue{
			{Field: "price", Message: "price must be at least 0"},
		})
	case errors.Is(err, errInvalidType):
		response.BadRequest(c, "type must be one_time, subscription, or freemium")
	case errors.Is(err, errInvalidInterval):
		response.BadRequest(c, "billing_interval must be month, year, or once")
	case errors.Is(err, errIncompleteOrder):
		response.UnprocessableEntity(c, "ids must list every tier of the product exactly once")
	default:
		response.InternalError(c, err)
	}
}
