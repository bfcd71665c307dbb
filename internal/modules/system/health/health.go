// Package health exposes liveness and operational endpoints.
package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/commercekit/storefront-core/internal/pkg/cron"
	redisc "github.com/commercekit/storefront-core/internal/pkg/redis"
	"github.com/commercekit/storefront-core/internal/pkg/response"
)

var startedAt = time.Now()

// RegisterRoutes mounts /ping, /health, and the admin-only operational
// endpoints (uptime, cron job inspection).
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, rc *redisc.Client, sched *cron.Scheduler, authMW, adminMW gin.HandlerFunc) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	rg.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		dbOK := err == nil && sqlDB.Ping() == nil

		redisOK := true
		if rc != nil {
			redisOK = rc.Raw().Ping(c.Request.Context()).Err() == nil
		}

		status := "ok"
		code := http.StatusOK
		if !dbOK || !redisOK {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbOK,
			"redis":    redisOK,
		})
	})

	rg.GET("/uptime", func(c *gin.Context) {
		up := time.Since(startedAt)
		response.OK(c, gin.H{
			"started_at": startedAt.UTC().Format(time.RFC3339),
			"uptime_ms":  up.Milliseconds(),
			"uptime":     up.Round(time.Second).String(),
		})
	})

	admin := rg.Group("/health", authMW, adminMW)

	cronGroup := admin.Group("/cron")
	{
		cronGroup.GET("", func(c *gin.Context) {
			response.OK(c, sched.List())
		})

		cronGroup.POST("/run/:name", func(c *gin.Context) {
			if err := sched.Run(c.Request.Context(), c.Param("name")); err != nil {
				response.NotFoundMsg(c, err.Error())
				return
			}
			response.OK(c, gin.H{"message": "job triggered"})
		})
	}
}
