package domain

import "time"

// ClickTracking is one append-only audit row per tracked click
type ClickTracking struct {
	ID        int64     `json:"id" db:"id"`
	ProductID int64     `json:"productId" db:"product_id"`
	IP        string    `json:"ip" db:"ip"`
	UserAgent *string   `json:"userAgent" db:"user_agent"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ClickReportRow is one product line of the admin clicks report
type ClickReportRow struct {
	ProductID int64     `json:"id"`
	Title     string    `json:"title"`
	Clicks    int64     `json:"clicks"`
	StoreName string    `json:"storeName"`
	CreatedAt time.Time `json:"createdAt"`
}

// ClickReport summarises clicks across all products
type ClickReport struct {
	Summary  ClickSummary     `json:"summary"`
	Products []ClickReportRow `json:"products"`
}

type ClickSummary struct {
	TotalClicks   int64   `json:"totalClicks"`
	TotalProducts int     `json:"totalProducts"`
	AverageClicks float64 `json:"averageClicks"`
}

// DashboardStats feeds the admin dashboard
type DashboardStats struct {
	TotalProducts int   `json:"totalProducts"`
	TotalStores   int   `json:"totalStores"`
	TotalClicks   int64 `json:"totalClicks"`
}
