package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/s3store"
	"github.com/commercekit/storefront-core/internal/pkg/taskqueue"
)

// Source images larger than this are rejected during sync.
const maxImageBytes = 20 << 20

type Service struct {
	db     *gorm.DB
	store  *s3store.Store
	tasks  *taskqueue.Service
	prefix string
	client *http.Client
	log    *zap.Logger
}

// NewService builds the image registry. store may be nil when object
// storage is disabled; sync requests then fail with a clear error.
func NewService(db *gorm.DB, store *s3store.Store, tasks *taskqueue.Service, prefix string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:     db,
		store:  store,
		tasks:  tasks,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log,
	}
}

func (s *Service) productExists(productID string) error {
	var count int64
	if err := s.db.Model(&models.ProductModel{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errProductNotFound
	}
	return nil
}

func (s *Service) List(productID string) ([]models.ProductImage, error) {
	if err := s.productExists(productID); err != nil {
		return nil, err
	}
	var images []models.ProductImage
	err := s.db.Where("product_id = ?", productID).
		Order("sort_order ASC, created_at ASC").
		Find(&images).Error
	return images, err
}

func (s *Service) Create(productID string, dto *CreateImageDTO) (*models.ProductImage, error) {
	if err := s.productExists(productID); err != nil {
		return nil, err
	}

	img := models.ProductImage{
		ProductID: productID,
		URL:       dto.URL,
		Alt:       dto.Alt,
		Width:     dto.Width,
		Height:    dto.Height,
	}
	if dto.SortOrder != nil {
		img.SortOrder = *dto.SortOrder
	} else {
		var max struct{ Max int }
		s.db.Model(&models.ProductImage{}).
			Select("COALESCE(MAX(sort_order), -1) AS max").
			Where("product_id = ?", productID).
			Scan(&max)
		img.SortOrder = max.Max + 1
	}

	if err := s.db.Create(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (s *Service) Delete(productID, imageID string) error {
	var img models.ProductImage
	err := s.db.Where("id = ? AND product_id = ?", imageID, productID).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errImageNotFound
	}
	if err != nil {
		return err
	}
	return s.db.Delete(&img).Error
}

// Sync mirrors every unsynced image of a product to object storage in the
// background and returns the tracking task. Repeated calls while a sync is
// in flight return the same task via the queue's dedup key.
func (s *Service) Sync(ctx context.Context, productID string) (*taskqueue.Task, int, error) {
	if s.store == nil {
		return nil, 0, errSyncDisabled
	}
	if err := s.productExists(productID); err != nil {
		return nil, 0, err
	}

	var pending []models.ProductImage
	err := s.db.Where("product_id = ? AND s3_synced = ?", productID, false).
		Find(&pending).Error
	if err != nil {
		return nil, 0, err
	}
	if len(pending) == 0 {
		return nil, 0, errNothingToSync
	}

	task, err := s.tasks.Enqueue(ctx, taskqueue.TypeImageSync,
		map[string]interface{}{"product_id": productID, "count": len(pending)},
		"image-sync:"+productID)
	if err != nil {
		return nil, 0, err
	}

	go s.runSync(task.ID, productID, pending)
	return task, len(pending), nil
}

func (s *Service) runSync(taskID, productID string, images []models.ProductImage) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskRunning, nil, "")

	synced := 0
	var firstErr error
	for i := range images {
		img := &images[i]
		if err := s.syncOne(ctx, productID, img); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.log.Warn("image sync failed",
				zap.String("product_id", productID),
				zap.String("image_id", img.ID),
				zap.Error(err))
			continue
		}
		synced++
	}

	result := map[string]interface{}{"synced": synced, "total": len(images)}
	if firstErr != nil && synced == 0 {
		_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskFailed, result, firstErr.Error())
		return
	}
	errMsg := ""
	if firstErr != nil {
		errMsg = fmt.Sprintf("%d of %d images failed: %s", len(images)-synced, len(images), firstErr)
	}
	_ = s.tasks.UpdateStatus(ctx, taskID, taskqueue.TaskCompleted, result, errMsg)
}

func (s *Service) syncOne(ctx context.Context, productID string, img *models.ProductImage) error {
	payload, contentType, err := s.fetch(ctx, img.URL)
	if err != nil {
		return err
	}

	key := s.objectKey(productID, img.ID, img.URL)
	publicURL, err := s.store.Upload(ctx, key, payload, contentType)
	if err != nil {
		return err
	}

	return s.db.Model(img).Updates(map[string]interface{}{
		"s3_synced": true,
		"s3_url":    publicURL,
	}).Error
}

func (s *Service) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(payload) > maxImageBytes {
		return nil, "", fmt.Errorf("fetch %s: image exceeds %d bytes", rawURL, maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	return payload, contentType, nil
}

func (s *Service) objectKey(productID, imageID, rawURL string) string {
	ext := ""
	if u, err := url.Parse(rawURL); err == nil {
		ext = strings.ToLower(path.Ext(u.Path))
	}
	key := fmt.Sprintf("products/%s/%s%s", productID, imageID, ext)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}
