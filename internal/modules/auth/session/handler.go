package session

import (
	"errors"

	"github.com/commercekit/storefront-core/internal/middleware"
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
	s := rg.Group("/auth/sessions", authMW)

	s.GET("", h.list)
	s.GET("/stats", h.stats)
	s.POST("/refresh", h.refresh)
	s.POST("/refresh-all", h.refreshAll)
	s.DELETE("/:id", h.terminate)
	s.POST("/bulk-terminate", h.bulkTerminate)
	s.POST("/terminate-all", h.terminateAll)
}

func (h *Handler) list(c *gin.Context) {
	views, err := h.svc.List(middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"data": views})
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(middleware.CurrentUserID(c), middleware.CurrentSessionID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}

func (h *Handler) refresh(c *gin.Context) {
	var dto RefreshDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := h.svc.Refresh(middleware.CurrentUserID(c), dto.SessionID, middleware.CurrentSessionID(c))
	if err != nil {
		if errors.Is(err, errSessionNotFound) {
			response.NotFoundMsg(c, "session not found or no longer active")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, view)
}

func (h *Handler) refreshAll(c *gin.Context) {
	n, err := h.svc.RefreshAll(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"refreshed": n})
}

func (h *Handler) terminate(c *gin.Context) {
	var opts TerminateOptions
	// Body is optional for a plain terminate.
	_ = c.ShouldBindJSON(&opts)

	err := h.svc.Terminate(middleware.CurrentUserID(c), c.Param("id"), middleware.CurrentSessionID(c), opts)
	if err != nil {
		switch {
		case errors.Is(err, errConfirmCurrent):
			response.UnprocessableEntity(c, "terminating the current session requires confirm_current")
		case errors.Is(err, errInvalidReason):
			response.BadRequest(c, "invalid termination reason")
		case errors.Is(err, errSessionNotFound):
			response.NotFoundMsg(c, "session not found")
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, gin.H{"terminated": true})
}

func (h *Handler) bulkTerminate(c *gin.Context) {
	var dto BulkTerminateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	results, err := h.svc.BulkTerminate(middleware.CurrentUserID(c), dto.SessionIDs, middleware.CurrentSessionID(c), dto.Options)
	if err != nil {
		if errors.Is(err, errInvalidReason) {
			response.BadRequest(c, "invalid termination reason")
			return
		}
		response.InternalError(c, err)
		return
	}
	terminated := 0
	for _, r := range results {
		if r.Terminated {
			terminated++
		}
	}
	response.OK(c, gin.H{"results": results, "terminated": terminated})
}

func (h *Handler) terminateAll(c *gin.Context) {
	var dto TerminateAllDTO
	_ = c.ShouldBindJSON(&dto)

	n, effective, err := h.svc.TerminateAll(middleware.CurrentUserID(c), middleware.CurrentSessionID(c), dto.Options)
	if err != nil {
		if errors.Is(err, errInvalidReason) {
			response.BadRequest(c, "invalid termination reason")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"terminated":       n,
		"excluded_current": effective.ExcludeCurrent,
	})
}
