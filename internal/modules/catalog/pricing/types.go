package pricing

import (
	"errors"

	"github.com/commercekit/storefront-core/internal/models"
)

type CreateTierDTO struct {
	Name            string   `json:"name"  binding:"required"`
	Price           int64    `json:"price" binding:"min=0"`
	Currency        string   `json:"currency"`
	Type            string   `json:"type"`
	BillingInterval string   `json:"billing_interval"`
	Features        []string `json:"features"`
	Active          *bool    `json:"active"`
}

type UpdateTierDTO struct {
	Name            *string   `json:"name"`
	Price           *int64    `json:"price"`
	Currency        *string   `json:"currency"`
	Type            *string   `json:"type"`
	BillingInterval *string   `json:"billing_interval"`
	Features        *[]string `json:"features"`
	Active          *bool     `json:"active"`
}

type ReorderDTO struct {
	IDs []string `json:"ids" binding:"required,min=1"`
}

var (
	errTierNotFound    = errors.New("pricing tier not found")
	errProductNotFound = errors.New("product not found")
	errFreemiumPrice   = errors.New("freemium tiers must have price 0")
	errNegativePrice   = errors.New("price must not be negative")
	errInvalidType     = errors.New("invalid tier type")
	errInvalidInterval = errors.New("invalid billing interval")
	errIncompleteOrder = errors.New("reorder must list every tier of the product exactly once")
)

func validTierType(t string) bool {
	switch t {
	case models.ProductOneTime, models.ProductSubscription, models.ProductFreemium:
		return true
	}
	return false
}

func validInterval(i string) bool {
	switch i {
	case models.BillingMonth, models.BillingYear, models.BillingOnce:
		return true
	}
	return false
}
