package repository

import (
	"context"
	"database/sql"
	"fmt"

	"affiliate-market/internal/domain"
)

// ClickRepository appends click audit rows and aggregates them for reports
type ClickRepository interface {
	Create(ctx context.Context, click *domain.ClickTracking) error
	CountForProduct(ctx context.Context, productID int64) (int, error)
	Report(ctx context.Context) (*domain.ClickReport, error)
}

type clickRepository struct {
	db *sql.DB
}

// NewClickRepository creates a new instance of ClickRepository
func NewClickRepository(db *sql.DB) ClickRepository {
	return &clickRepository{db: db}
}

func (r *clickRepository) Create(ctx context.Context, click *domain.ClickTracking) error {
	query := `
		INSERT INTO click_tracking (product_id, ip, user_agent)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, click.ProductID, click.IP, click.UserAgent).
		Scan(&click.ID, &click.CreatedAt)
	if err != nil {
		return mapPgError("record click", err)
	}
	return nil
}

func (r *clickRepository) CountForProduct(ctx context.Context, productID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM click_tracking WHERE product_id = $1`, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// Report lists every product by descending clicks with the overall totals
func (r *clickRepository) Report(ctx context.Context) (*domain.ClickReport, error) {
	query := `
		SELECT p.id, p.title, p.clicks, s.name, p.created_at
		FROM products p
		JOIN stores s ON s.id = p.store_id
		ORDER BY p.clicks DESC, p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build click report: %w", err)
	}
	defer rows.Close()

	report := &domain.ClickReport{Products: []domain.ClickReportRow{}}
	for rows.Next() {
		var row domain.ClickReportRow
		if err := rows.Scan(&row.ProductID, &row.Title, &row.Clicks, &row.StoreName, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan click report row: %w", err)
		}
		report.Products = append(report.Products, row)
		report.Summary.TotalClicks += row.Clicks
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click report: %w", err)
	}

	report.Summary.TotalProducts = len(report.Products)
	if report.Summary.TotalProducts > 0 {
		report.Summary.AverageClicks = float64(report.Summary.TotalClicks) / float64(report.Summary.TotalProducts)
	}
	return report, nil
}
