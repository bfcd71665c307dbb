package pricing

import (
	"errors"

	"gorm.io/gorm"

	"github.com/commercekit/storefront-core/internal/models"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
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

// List returns the tiers of a product ordered by sort_order.
func (s *Service) List(productID string) ([]models.PricingTier, error) {
	if err := s.productExists(productID); err != nil {
		return nil, err
	}
	var tiers []models.PricingTier
	err := s.db.Where("product_id = ?", productID).
		Order("sort_order ASC, created_at ASC").
		Find(&tiers).Error
	return tiers, err
}

func (s *Service) Get(productID, tierID string) (*models.PricingTier, error) {
	var tier models.PricingTier
	err := s.db.Where("id = ? AND product_id = ?", tierID, productID).First(&tier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errTierNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

func (s *Service) Create(productID string, dto *CreateTierDTO) (*models.PricingTier, error) {
	if err := s.productExists(productID); err != nil {
		return nil, err
	}

	tier := models.PricingTier{
		ProductID:       productID,
		Name:            dto.Name,
		Price:           dto.Price,
		Currency:        dto.Currency,
		Type:            dto.Type,
		BillingInterval: dto.BillingInterval,
		Features:        models.StringArray(dto.Features),
		Active:          true,
	}
	if tier.Currency == "" {
		tier.Currency = "usd"
	}
	if tier.Type == "" {
		tier.Type = models.ProductOneTime
	}
	if tier.BillingInterval == "" {
		tier.BillingInterval = models.BillingOnce
	}
	if dto.Active != nil {
		tier.Active = *dto.Active
	}

	if !validTierType(tier.Type) {
		return nil, errInvalidType
	}
	if !validInterval(tier.BillingInterval) {
		return nil, errInvalidInterval
	}
	if tier.Price < 0 {
		return nil, errNegativePrice
	}
	if tier.Type == models.ProductFreemium && tier.Price != 0 {
		return nil, errFreemiumPrice
	}

	// New tiers go to the end of the list.
	var max struct{ Max int }
	s.db.Model(&models.PricingTier{}).
		Select("COALESCE(MAX(sort_order), -1) AS max").
		Where("product_id = ?", productID).
		Scan(&max)
	tier.SortOrder = max.Max + 1

	if err := s.db.Create(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (s *Service) Update(productID, tierID string, dto *UpdateTierDTO) (*models.PricingTier, error) {
	tier, err := s.Get(productID, tierID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	nextType := tier.Type
	nextPrice := tier.Price

	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Price != nil {
		if *dto.Price < 0 {
			return nil, errNegativePrice
		}
		updates["price"] = *dto.Price
		nextPrice = *dto.Price
	}
	if dto.Currency != nil {
		updates["currency"] = *dto.Currency
	}
	if dto.Type != nil {
		if !validTierType(*dto.Type) {
			return nil, errInvalidType
		}
		updates["type"] = *dto.Type
		nextType = *dto.Type
	}
	if dto.BillingInterval != nil {
		if !validInterval(*dto.BillingInterval) {
			return nil, errInvalidInterval
		}
		updates["billing_interval"] = *dto.BillingInterval
	}
	if dto.Features != nil {
		updates["features"] = models.StringArray(*dto.Features)
	}
	if dto.Active != nil {
		updates["active"] = *dto.Active
	}

	if nextType == models.ProductFreemium && nextPrice != 0 {
		return nil, errFreemiumPrice
	}

	if len(updates) == 0 {
		return tier, nil
	}
	if err := s.db.Model(tier).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.Get(productID, tierID)
}

func (s *Service) Delete(productID, tierID string) error {
	tier, err := s.Get(productID, tierID)
	if err != nil {
		return err
	}
	return s.db.Delete(tier).Error
}

// Reorder replaces the sort order of a product's tiers. The id list must
// cover every tier of the product exactly once; partial lists are rejected
// so a stale client cannot silently scramble the order.
func (s *Service) Reorder(productID string, ids []string) error {
	tiers, err := s.List(productID)
	if err != nil {
		return err
	}
	if len(ids) != len(tiers) {
		return errIncompleteOrder
	}

	existing := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		existing[t.ID] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !existing[id] || seen[id] {
			return errIncompleteOrder
		}
		seen[id] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			err := tx.Model(&models.PricingTier{}).
				Where("id = ? AND product_id = ?", id, productID).
				Update("sort_order", i).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
