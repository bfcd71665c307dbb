package product

import (
	"errors"

	"github.com/commercekit/storefront-core/internal/models"
)

type CreateProductDTO struct {
	Name              string   `json:"name"     binding:"required"`
	Slug              string   `json:"slug"`
	SKU               string   `json:"sku"      binding:"required"`
	Description       string   `json:"description"`
	Type              string   `json:"type"`
	Price             int64    `json:"price"    binding:"min=0"`
	Currency          string   `json:"currency"`
	Stock             int      `json:"stock"    binding:"min=0"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	Status            string   `json:"status"`
	Tags              []string `json:"tags"`
}

type UpdateProductDTO struct {
	Name              *string   `json:"name"`
	Slug              *string   `json:"slug"`
	SKU               *string   `json:"sku"`
	Description       *string   `json:"description"`
	Type              *string   `json:"type"`
	Price             *int64    `json:"price"`
	Currency          *string   `json:"currency"`
	Stock             *int      `json:"stock"`
	LowStockThreshold *int      `json:"low_stock_threshold"`
	Status            *string   `json:"status"`
	StripeProductID   *string   `json:"stripe_product_id"`
	Tags              *[]string `json:"tags"`
}

// ListFilter narrows and orders the product list.
type ListFilter struct {
	Status   string
	Type     string
	Tag      string
	Query    string
	MinPrice *int64
	MaxPrice *int64
	LowStock bool
	Sort     string // created | name | price | stock
	Order    string // asc | desc
}

var (
	errProductNotFound = errors.New("product not found")
	errSlugTaken       = errors.New("slug already in use")
	errSKUTaken        = errors.New("sku already in use")
	errInvalidType     = errors.New("invalid product type")
	errInvalidStatus   = errors.New("invalid product status")
)

func validProductType(t string) bool {
	switch t {
	case models.ProductOneTime, models.ProductSubscription, models.ProductFreemium:
		return true
	}
	return false
}

func validProductStatus(s string) bool {
	switch s {
	case models.ProductDraft, models.ProductActive, models.ProductArchived:
		return true
	}
	return false
}
