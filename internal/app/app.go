package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/commercekit/storefront-core/internal/config"
	"github.com/commercekit/storefront-core/internal/database"
	"github.com/commercekit/storefront-core/internal/middleware"
	pkgcron "github.com/commercekit/storefront-core/internal/pkg/cron"
	jwtpkg "github.com/commercekit/storefront-core/internal/pkg/jwt"
	"github.com/commercekit/storefront-core/internal/pkg/mail"
	pkgredis "github.com/commercekit/storefront-core/internal/pkg/redis"
	"github.com/commercekit/storefront-core/internal/pkg/s3store"
	"github.com/commercekit/storefront-core/internal/pkg/taskqueue"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	mailer *mail.Sender
	store  *s3store.Store
	tasks  *taskqueue.Service
	sched  *pkgcron.Scheduler
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config, DB, Redis, routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.Redis.URLValue())
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "x-idempotence"},
		ExposeHeaders:    []string{"Content-Length", "x-sf-cache"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	var mailer *mail.Sender
	if cfg.Mail.Enable {
		mailer = mail.New(mail.Config{
			Enable:    true,
			Host:      cfg.Mail.SMTP.Host,
			Port:      cfg.Mail.SMTP.Port,
			User:      cfg.Mail.SMTP.User,
			Pass:      cfg.Mail.SMTP.Pass,
			From:      cfg.Mail.From,
			UseResend: cfg.Mail.Provider == "resend",
			ResendKey: cfg.Mail.Resend.APIKey,
		})
	}

	var store *s3store.Store
	if cfg.S3.Enable {
		store, err = s3store.New(s3store.Options{
			Endpoint:        cfg.S3.Endpoint,
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			CustomDomain:    cfg.S3.CustomDomain,
			PathStyleAccess: cfg.S3.PathStyleAccess,
		})
		if err != nil {
			logger.Warn("s3 disabled: invalid configuration", zap.Error(err))
			store = nil
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	tasks := taskqueue.NewService(rc)
	sched := pkgcron.New()

	app := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		rc:     rc,
		mailer: mailer,
		store:  store,
		tasks:  tasks,
		sched:  sched,
		logger: logger,
		cancel: cancel,
	}
	app.registerCronJobs()
	go sched.Start(ctx)
	app.registerRoutes()

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background goroutines.
func (a *App) Shutdown() { a.cancel() }
