package domain

import "time"

// Store is an external shop that owns affiliate products
type Store struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	LogoURL      *string   `json:"logoUrl" db:"logo_url"`
	Domain       *string   `json:"domain" db:"domain"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
	ProductCount int       `json:"productCount"`

	Products []*Product `json:"products,omitempty"`
}

// StoreSummary is the slice of a store embedded in product payloads
type StoreSummary struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	LogoURL     *string `json:"logoUrl"`
	Domain      *string `json:"domain"`
	Description *string `json:"description,omitempty"`
}
