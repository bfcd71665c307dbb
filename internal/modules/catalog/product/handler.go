package product

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

// RegisterRoutes mounts the catalog. Reads are public (active products
// only for anonymous callers); all mutations require the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	p := rg.Group("/products")

	optional := middleware.OptionalAuth(h.svc.db)
	p.GET("", optional, h.list)
	p.GET("/:id", optional, h.get)
	p.GET("/:id/render", optional, h.render)

	p.POST("", authMW, adminMW, h.create)
	p.PATCH("/:id", authMW, adminMW, h.update)
	p.DELETE("/:id", authMW, adminMW, h.remove)
	p.POST("/:id/duplicate", authMW, adminMW, h.duplicate)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Type:     strings.TrimSpace(c.Query("type")),
		Tag:      strings.TrimSpace(c.Query("tag")),
		Query:    c.Query("q"),
		LowStock: c.Query("low_stock") == "true",
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
	}
	if v, err := strconv.ParseInt(c.Query("min_price"), 10, 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseInt(c.Query("max_price"), 10, 64); err == nil {
		filter.MaxPrice = &v
	}

	// Non-admin callers only see active products.
	publicOnly := !h.svc.IsAdmin(middleware.CurrentUserID(c))

	products, page, err := h.svc.List(pagination.FromContext(c), filter, publicOnly)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, products, page)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, errProductNotFound) {
			response.NotFoundMsg(c, "product not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	if !h.visibleTo(c, p) {
		response.NotFoundMsg(c, "product not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) render(c *gin.Context) {
	p, err := h.svc.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, errProductNotFound) {
			response.NotFoundMsg(c, "product not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	if !h.visibleTo(c, p) {
		response.NotFoundMsg(c, "product not found")
		return
	}
	html, err := RenderDescription(p.Description)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"id": p.ID, "html": html})
}

// visibleTo hides non-active products from non-admin callers. The not-found
// envelope keeps draft and archived ids unguessable.
func (h *Handler) visibleTo(c *gin.Context, p *models.ProductModel) bool {
	if p.Status == models.ProductActive {
		return true
	}
	return h.svc.IsAdmin(middleware.CurrentUserID(c))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProductDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProductDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.writeProductError(c, err)
		return
	}
	response.OK(c, p)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, errProductNotFound) {
			response.NotFoundMsg(c, "product not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) duplicate(c *gin.Context) {
	p, err := h.svc.Duplicate(c.Param("id"))
	if err != nil {
		if errors.Is(err, errProductNotFound) {
			response.NotFoundMsg(c, "product not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, p)
}

func (h *Handler) writeProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errProductNotFound):
		response.NotFoundMsg(c, "product not found")
	case errors.Is(err, errSlugTaken):
		response.Conflict(c, "slug already in use")
	case errors.Is(err, errSKUTaken):
		response.Conflict(c, "sku already in use")
	case errors.Is(err, errInvalidType):
		response.BadRequest(c, "type must be one_time, subscription, or freemium")
	case errors.Is(err, errInvalidStatus):
		response.BadRequest(c, "status must be draft, active, or archived")
	default:
		response.InternalError(c, err)
	}
}
