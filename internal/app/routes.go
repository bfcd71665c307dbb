package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/commercekit/storefront-core/internal/middleware"
	adminusers "github.com/commercekit/storefront-core/internal/modules/admin/users"
	"github.com/commercekit/storefront-core/internal/modules/auth/auth"
	"github.com/commercekit/storefront-core/internal/modules/auth/session"
	"github.com/commercekit/storefront-core/internal/modules/auth/user"
	"github.com/commercekit/storefront-core/internal/modules/catalog/pricing"
	"github.com/commercekit/storefront-core/internal/modules/catalog/product"
	"github.com/commercekit/storefront-core/internal/modules/storage/image"
	"github.com/commercekit/storefront-core/internal/modules/system/health"
	"github.com/commercekit/storefront-core/internal/pkg/response"
)

const apiPrefix = "/api/v1"

func (a *App) registerRoutes() {
	r := a.router
	db := a.db

	authMW := middleware.Auth(db)
	adminMW := middleware.AdminOnly(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Rate limiting and idempotence run on every route (requires Redis).
	r.Use(middleware.RateLimit(a.rc.Raw()))
	r.Use(middleware.Idempotence(a.rc.Raw()))

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.HTTPCache(a.rc.Raw(), middleware.HTTPCacheOptions{
		TTL:       15 * time.Second,
		Disable:   a.cfg.IsDev(),
		SkipPaths: httpCacheSkipPaths(apiPrefix),
	}))

	appInfo := gin.H{
		"name":    "storefront-core",
		"version": "1.0.0",
	}
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })

	health.RegisterRoutes(api, db, a.rc, a.sched, authMW, adminMW)

	cleanCache := func(c *gin.Context) {
		deleted, err := middleware.PurgeHTTPCache(c.Request.Context(), a.rc.Raw())
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"deleted": deleted})
	}
	api.POST("/clean-cache", authMW, adminMW, cleanCache)

	// Auth & account
	authSvc := auth.NewService(db, a.mailer, a.tasks, a.cfg.BaseURL, a.logger)
	auth.NewHandler(authSvc).RegisterRoutes(api, authMW)
	session.NewHandler(session.NewService(db)).RegisterRoutes(api, authMW)
	user.NewHandler(user.NewService(db)).RegisterRoutes(api, authMW)

	// Admin
	adminusers.NewHandler(adminusers.NewService(db)).RegisterRoutes(api, authMW, adminMW)

	// Catalog
	product.NewHandler(product.NewService(db)).RegisterRoutes(api, authMW, adminMW)
	pricing.NewHandler(pricing.NewService(db)).RegisterRoutes(api, authMW, adminMW)

	// Images
	imageSvc := image.NewService(db, a.store, a.tasks, a.cfg.S3.Prefix, a.logger)
	image.NewHandler(imageSvc).RegisterRoutes(api, authMW, adminMW)
}

func httpCacheSkipPaths(prefix string) []string {
	return []string{
		prefix + "/auth/*",
		prefix + "/user/*",
		prefix + "/admin/*",
		prefix + "/health*",
		prefix + "/ping",
		prefix + "/uptime",
		prefix + "/clean-cache",
	}
}
