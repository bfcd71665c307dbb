package image

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/storefront-core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts image management under a product. Listing is
// public; registering, deleting, and syncing require the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, adminMW gin.HandlerFunc) {
	g := rg.Group("/products/:id/images")

	g.GET("", h.list)

	g.POST("", authMW, adminMW, h.create)
	g.DELETE("/:imageID", authMW, adminMW, h.remove)
	g.POST("/sync", authMW, adminMW, h.sync)
}

func (h *Handler) list(c *gin.Context) {
	images, err := h.svc.List(c.Param("id"))
	if err != nil {
		h.writeImageError(c, err)
		return
	}
	response.OK(c, images)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateImageDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	img, err := h.svc.Create(c.Param("id"), &dto)
	if err != nil {
		h.writeImageError(c, err)
		return
	}
	response.Created(c, img)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id"), c.Param("imageID")); err != nil {
		h.writeImageError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) sync(c *gin.Context) {
	task, pending, err := h.svc.Sync(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errNothingToSync) {
			response.OK(c, gin.H{"message": "all images already synced"})
			return
		}
		h.writeImageError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, syncResponse{TaskID: task.ID, Pending: pending})
}

func (h *Handler) writeImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errProductNotFound):
		response.NotFoundMsg(c, "product not found")
	case errors.Is(err, errImageNotFound):
		response.NotFoundMsg(c, "image not found")
	case errors.Is(err, errSyncDisabled):
		response.UnprocessableEntity(c, "object storage is not configured")
	default:
		response.InternalError(c, err)
	}
}
