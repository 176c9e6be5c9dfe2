package service

import (
	"context"
	"fmt"
	"strings"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/repository"

	"go.uber.org/zap"
)

const unknownIP = "unknown"

// ClientInfo identifies who clicked, as seen by the transport
type ClientInfo struct {
	IP        string
	UserAgent string
}

// ClickService records outbound affiliate clicks
type ClickService interface {
	TrackClick(ctx context.Context, productID int64, client ClientInfo) (*domain.ClickResult, error)
}

type clickService struct {
	productRepo repository.ProductRepository
	clickRepo   repository.ClickRepository
	logger      *zap.Logger
}

// NewClickService creates a new instance of ClickService
func NewClickService(
	productRepo repository.ProductRepository,
	clickRepo repository.ClickRepository,
	logger *zap.Logger,
) ClickService {
	return &clickService{
		productRepo: productRepo,
		clickRepo:   clickRepo,
		logger:      logger,
	}
}

// TrackClick bumps the product's counter and appends an audit row.
// The counter is authoritative; an audit failure is logged and the click still counts.
func (s *clickService) TrackClick(ctx context.Context, productID int64, client ClientInfo) (*domain.ClickResult, error) {
	if productID <= 0 {
		return nil, ErrInvalidID
	}

	result, err := s.productRepo.IncrementClicks(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to track click: %w", err)
	}

	click := &domain.ClickTracking{
		ProductID: productID,
		IP:        strings.TrimSpace(client.IP),
	}
	if click.IP == "" {
		click.IP = unknownIP
	}
	if ua := strings.TrimSpace(client.UserAgent); ua != "" {
		click.UserAgent = &ua
	}

	if err := s.clickRepo.Create(ctx, click); err != nil {
		s.logger.Error("Failed to record click audit row",
			zap.Int64("product_id", productID),
			zap.String("ip", click.IP),
			zap.Error(err),
		)
	}

	return result, nil
}
