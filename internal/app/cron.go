package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/modules/catalog/product"
	pkgcron "github.com/commercekit/storefront-core/internal/pkg/cron"
	sessionpkg "github.com/commercekit/storefront-core/internal/pkg/session"
)

// registerCronJobs registers all scheduled background jobs.
func (a *App) registerCronJobs() {
	db := a.db
	cronLogger := a.logger.Named("cron")
	productSvc := product.NewService(db)

	a.sched.Register(pkgcron.Job{
		Name:        "purge_expired_sessions",
		Description: "delete sessions expired for more than 7 days",
		Interval:    6 * time.Hour,
		Fn: func(ctx context.Context) error {
			deleted, err := sessionpkg.PurgeExpired(db, 7*24*time.Hour)
			if err != nil {
				cronLogger.Warn("session purge failed", zap.Error(err))
				return err
			}
			if deleted > 0 {
				cronLogger.Info(fmt.Sprintf("purged %d expired sessions", deleted))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "purge_verification_tokens",
		Description: "delete used or expired verification tokens",
		Interval:    12 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().Add(-48 * time.Hour)
			result := db.Where("used_at IS NOT NULL OR expires_at < ?", cutoff).
				Delete(&models.VerificationToken{})
			if result.Error != nil {
				cronLogger.Warn("token purge failed", zap.Error(result.Error))
				return result.Error
			}
			if result.RowsAffected > 0 {
				cronLogger.Info(fmt.Sprintf("purged %d verification tokens", result.RowsAffected))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "low_stock_scan",
		Description: "warn about active products at or under their stock threshold",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			products, err := productSvc.LowStockProducts()
			if err != nil {
				return err
			}
			for _, p := range products {
				cronLogger.Warn("low stock",
					zap.String("product_id", p.ID),
					zap.String("sku", p.SKU),
					zap.Int("stock", p.Stock),
					zap.Int("threshold", p.LowStockThreshold))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "purge_terminal_tasks",
		Description: "drop finished background tasks older than 24 hours",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			before := time.Now().Add(-24 * time.Hour).UnixMilli()
			return a.tasks.PurgeTerminal(ctx, before)
		},
	})
}
