package domain

import "time"

// Category groups products; a product may belong to several
type Category struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Slug         string    `json:"slug" db:"slug"`
	Description  *string   `json:"description" db:"description"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	ProductCount int       `json:"productCount"`
}

// CategorySummary is the slice of a category embedded in product payloads
type CategorySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductCategory links a product to a category
type ProductCategory struct {
	ProductID  int64 `db:"product_id"`
	CategoryID int64 `db:"category_id"`
}
