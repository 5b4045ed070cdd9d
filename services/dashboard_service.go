package services

import (
	"context"
	"time"

	"shopwave/models"
)

const topProductsLimit = 5

type CatalogStatsSource interface {
	CatalogStats(ctx context.Context, now time.Time) (models.CatalogStats, error)
}

type DashboardService struct {
	orders  OrderStore
	catalog CatalogStatsSource
}

func NewDashboardService(orders OrderStore, catalog CatalogStatsSource) *DashboardService {
	return &DashboardService{orders: orders, catalog: catalog}
}

func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	orderStats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	catalogStats, err := s.catalog.CatalogStats(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	top, err := s.orders.TopProducts(ctx, topProductsLimit)
	if err != nil {
		return nil, err
	}
	return &models.DashboardStats{
		OrderStats:   orderStats,
		CatalogStats: catalogStats,
		TopProducts:  top,
	}, nil
}
