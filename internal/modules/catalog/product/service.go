package product

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/commercekit/storefront-core/internal/models"
	"github.com/commercekit/storefront-core/internal/pkg/pagination"
	"github.com/commercekit/storefront-core/internal/pkg/response"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases and strips a name down to a url-safe slug.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *Service) Create(dto *CreateProductDTO) (*models.ProductModel, error) {
	typ := dto.Type
	if typ == "" {
		typ = models.ProductOneTime
	}
	if !validProductType(typ) {
		return nil, errInvalidType
	}
	status := dto.Status
	if status == "" {
		status = models.ProductDraft
	}
	if !validProductStatus(status) {
		return nil, errInvalidStatus
	}

	slug := strings.TrimSpace(dto.Slug)
	if slug == "" {
		slug = Slugify(dto.Name)
	}
	if err := s.ensureUnique("slug", slug, ""); err != nil {
		return nil, err
	}
	sku := strings.TrimSpace(dto.SKU)
	if err := s.ensureUnique("sku", sku, ""); err != nil {
		return nil, err
	}

	currency := strings.ToLower(strings.TrimSpace(dto.Currency))
	if currency == "" {
		currency = "usd"
	}
	threshold := 5
	if dto.LowStockThreshold != nil {
		threshold = *dto.LowStockThreshold
	}

	p := models.ProductModel{
		Name:              strings.TrimSpace(dto.Name),
		Slug:              slug,
		SKU:               sku,
		Description:       dto.Description,
		Type:              typ,
		Price:             dto.Price,
		Currency:          currency,
		Stock:             dto.Stock,
		LowStockThreshold: threshold,
		Status:            status,
		Tags:              dto.Tags,
	}
	return &p, s.db.Create(&p).Error
}

func (s *Service) Get(id string) (*models.ProductModel, error) {
	var p models.ProductModel
	err := s.db.Preload("PricingTiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	}).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(q pagination.Query, filter ListFilter, publicOnly bool) ([]models.ProductModel, response.Pagination, error) {
	query := s.db.Model(&models.ProductModel{})

	if publicOnly {
		query = query.Where("status = ?", models.ProductActive)
	} else if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Tag != "" {
		// Tags are stored as a JSON array in a text column.
		query = query.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + term + "%"
		query = query.Where("name LIKE ? OR sku LIKE ? OR description LIKE ?", like, like, like)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.LowStock {
		query = query.Where("stock <= low_stock_threshold")
	}
	query = query.Order(orderClause(filter.Sort, filter.Order))

	var products []models.ProductModel
	page, err := pagination.Paginate(query, q, &products)
	return products, page, err
}

func orderClause(sort, order string) string {
	column := "created_at"
	switch sort {
	case "name":
		column = "name"
	case "price":
		column = "price"
	case "stock":
		column = "stock"
	case "created", "":
	}
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	return column + " " + dir
}

func (s *Service) Update(id string, dto *UpdateProductDTO) (*models.ProductModel, error) {
	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Slug != nil {
		slug := strings.TrimSpace(*dto.Slug)
		if err := s.ensureUnique("slug", slug, id); err != nil {
			return nil, err
		}
		updates["slug"] = slug
	}
	if dto.SKU != nil {
		sku := strings.TrimSpace(*dto.SKU)
		if err := s.ensureUnique("sku", sku, id); err != nil {
			return nil, err
		}
		updates["sku"] = sku
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Type != nil {
		if !validProductType(*dto.Type) {
			return nil, errInvalidType
		}
		updates["type"] = *dto.Type
	}
	if dto.Price != nil {
		updates["price"] = *dto.Price
	}
	if dto.Currency != nil {
		updates["currency"] = strings.ToLower(strings.TrimSpace(*dto.Currency))
	}
	if dto.Stock != nil {
		updates["stock"] = *dto.Stock
	}
	if dto.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *dto.LowStockThreshold
	}
	if dto.Status != nil {
		if !validProductStatus(*dto.Status) {
			return nil, errInvalidStatus
		}
		updates["status"] = *dto.Status
	}
	if dto.StripeProductID != nil {
		updates["stripe_product_id"] = *dto.StripeProductID
	}
	if dto.Tags != nil {
		updates["tags"] = models.StringArray(*dto.Tags)
	}

	if len(updates) > 0 {
		res := s.db.Model(&models.ProductModel{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, errProductNotFound
		}
	}
	return s.Get(id)
}

func (s *Service) Delete(id string) error {
	res := s.db.Where("id = ?", id).Delete(&models.ProductModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errProductNotFound
	}
	s.db.Where("product_id = ?", id).Delete(&models.PricingTier{})
	s.db.Where("product_id = ?", id).Delete(&models.ProductImage{})
	return nil
}

// Duplicate clones a product as a draft. The copy gets a " (Copy)" name
// suffix and timestamped slug/sku so uniqueness cannot collide; payment
// provider ids are cleared; pricing tiers are cloned.
func (s *Service) Duplicate(id string) (*models.ProductModel, error) {
	src, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	suffix := fmt.Sprintf("-copy-%d", time.Now().Unix())
	dup := models.ProductModel{
		Name:              src.Name + " (Copy)",
		Slug:              src.Slug + suffix,
		SKU:               src.SKU + suffix,
		Description:       src.Description,
		Type:              src.Type,
		Price:             src.Price,
		Currency:          src.Currency,
		Stock:             src.Stock,
		LowStockThreshold: src.LowStockThreshold,
		Status:            models.ProductDraft,
		Tags:              src.Tags,
	}
	if err := s.db.Create(&dup).Error; err != nil {
		return nil, err
	}

	for _, tier := range src.PricingTiers {
		clone := models.PricingTier{
			ProductID:       dup.ID,
			Name:            tier.Name,
			Price:           tier.Price,
			Currency:        tier.Currency,
			Type:            tier.Type,
			BillingInterval: tier.BillingInterval,
			Features:        tier.Features,
			SortOrder:       tier.SortOrder,
			Active:          tier.Active,
		}
		if err := s.db.Create(&clone).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(dup.ID)
}

// LowStockProducts returns active products at or below their threshold.
func (s *Service) LowStockProducts() ([]models.ProductModel, error) {
	var products []models.ProductModel
	err := s.db.Where("status = ? AND stock <= low_stock_threshold", models.ProductActive).
		Find(&products).Error
	return products, err
}

// IsAdmin reports whether the given user holds the admin role. Used by
// the public read routes to decide draft visibility.
func (s *Service) IsAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	var u models.UserModel
	if err := s.db.Select("role").Where("id = ?", userID).First(&u).Error; err != nil {
		return false
	}
	return u.IsAdmin()
}

func (s *Service) ensureUnique(column, value, excludeID string) error {
	if value == "" {
		return fmt.Errorf("%s is required", column)
	}
	query := s.db.Model(&models.ProductModel{}).Where(column+" = ?", value)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		if column == "slug" {
			return errSlugTaken
		}
		return errSKUTaken
	}
	return nil
}
