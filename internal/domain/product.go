package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCategoriesPerProduct caps how many categories a single product may hold.
// The schema does not enforce it; the admin service does.
const MaxCategoriesPerProduct = 4

// Product represents an affiliate listing in the catalog
type Product struct {
	ID            int64            `json:"id" db:"id"`
	Title         string           `json:"title" db:"title"`
	Description   string           `json:"description" db:"description"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice" db:"original_price"`
	ImageURL      string           `json:"imageUrl" db:"image_url"`
	AffiliateURL  string           `json:"affiliateUrl" db:"affiliate_url"`
	Tags          string           `json:"tags" db:"tags"`
	StoreID       int64            `json:"storeId" db:"store_id"`
	Stock         int              `json:"stock" db:"stock"`
	Clicks        int64            `json:"clicks" db:"clicks"`
	Rating        *float64         `json:"rating" db:"rating"`
	ReviewCount   int              `json:"reviewCount" db:"review_count"`
	SoldCount     int              `json:"soldCount" db:"sold_count"`
	IsActive      bool             `json:"isActive" db:"is_active"`
	FreeShipping  bool             `json:"freeShipping" db:"free_shipping"`
	Warranty      bool             `json:"warranty" db:"warranty"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time        `json:"updatedAt" db:"updated_at"`

	Store      *StoreSummary     `json:"store,omitempty"`
	Categories []CategorySummary `json:"categories"`
}

// HasCategory reports whether the product is linked to any of the given category ids.
func (p *Product) HasCategory(ids ...int64) bool {
	for _, c := range p.Categories {
		for _, id := range ids {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

// ProductQuery is the raw, untrusted catalog query taken from the URL.
type ProductQuery struct {
	Q           string
	StoreID     string
	CategoryIDs []string
	Page        string
	PerPage     string
}

// ClickResult is what a tracked click hands back to the caller.
type ClickResult struct {
	ProductID    int64  `json:"productId"`
	Title        string `json:"title"`
	TotalClicks  int64  `json:"totalClicks"`
	AffiliateURL string `json:"affiliateUrl"`
}
