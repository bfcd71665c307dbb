package models

// Product types.
const (
	ProductOneTime      = "one_time"
	ProductSubscription = "subscription"
	ProductFreemium     = "freemium"
)

// Product statuses.
const (
	ProductDraft    = "draft"
	ProductActive   = "active"
	ProductArchived = "archived"
)

// ProductModel is a catalog product mirrored into the payment provider.
// Prices are integer cents; Description is markdown.
type ProductModel struct {
	Base
	Name              string         `json:"name"                gorm:"not null"`
	Slug              string         `json:"slug"                gorm:"uniqueIndex;not null"`
	SKU               string         `json:"sku"                 gorm:"uniqueIndex;not null"`
	Description       string         `json:"description"         gorm:"type:longtext"`
	Type              string         `json:"type"                gorm:"index;default:'one_time'"`
	Price             int64          `json:"price"`
	Currency          string         `json:"currency"            gorm:"default:'usd'"`
	Stock             int            `json:"stock"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"default:5"`
	Status            string         `json:"status"              gorm:"index;default:'draft'"`
	StripeProductID   string         `json:"stripe_product_id"`
	Tags              StringArray    `json:"tags"                gorm:"type:longtext"`
	PricingTiers      []PricingTier  `json:"pricing_tiers,omitempty" gorm:"foreignKey:ProductID"`
	Images            []ProductImage `json:"images,omitempty"        gorm:"foreignKey:ProductID"`
}

func (ProductModel) TableName() string { return "products" }

// IsLowStock reports whether stock has fallen to or under the threshold.
func (p *ProductModel) IsLowStock() bool { return p.Stock <= p.LowStockThreshold }

// ProductImage is an image attached to a product, optionally mirrored to
// S3-compatible object storage.
type ProductImage struct {
	Base
	ProductID string `json:"-"          gorm:"index;not null"`
	URL       string `json:"url"        gorm:"not null"`
	Alt       string `json:"alt"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	SortOrder int    `json:"sort_order" gorm:"index"`
	S3Synced  bool   `json:"s3_synced"`
	S3URL     string `json:"s3_url,omitempty"`
}

func (ProductImage) TableName() string { return "product_images" }
