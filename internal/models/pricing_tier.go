package models

// Tier billing intervals.
const (
	BillingMonth = "month"
	BillingYear  = "year"
	BillingOnce  = "once"
)

// PricingTier is a purchasable price point of a product. Freemium tiers
// always carry price 0; the pricing service enforces this on every write.
type PricingTier struct {
	Base
	ProductID       string      `json:"product_id"       gorm:"index;not null"`
	Name            string      `json:"name"             gorm:"not null"`
	Price           int64       `json:"price"`
	Currency        string      `json:"currency"         gorm:"default:'usd'"`
	Type            string      `json:"type"             gorm:"index;default:'one_time'"`
	BillingInterval string      `json:"billing_interval" gorm:"default:'once'"`
	Features        StringArray `json:"features"         gorm:"type:longtext"`
	SortOrder       int         `json:"sort_order"       gorm:"index"`
	StripePriceID   string      `json:"stripe_price_id"`
	Active          bool        `json:"active"           gorm:"default:true"`
}

func (PricingTier) TableName() string { return "pricing_tiers" }
