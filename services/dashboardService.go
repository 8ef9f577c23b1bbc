package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"spareshop-api/dtos"
	"spareshop-api/models"
)

const (
	lowStockThreshold = 5
	topSellingLimit   = 5
)

type DashboardService interface {
	Summary(ctx context.Context) (*dtos.DashboardResponse, error)
}

type dashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDashboardService(db *gorm.DB) DashboardService {
	return &dashboardService{db: db, now: time.Now}
}

func (s *dashboardService) Summary(ctx context.Context) (*dtos.DashboardResponse, error) {
	db := s.db.WithContext(ctx)
	resp := &dtos.DashboardResponse{
		LowStockItems: []models.Sparepart{},
		TopSelling:    []dtos.DashboardTopItem{},
	}

	// [start of today, start of tomorrow)
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var today struct {
		Revenue int64
		Orders  int64
	}
	if err := db.Model(&models.CartItem{}).
		Select("COALESCE(SUM(total_harga), 0) AS revenue, COUNT(*) AS orders").
		Where("status = ? AND tanggal_bayar >= ? AND tanggal_bayar < ?", models.StatusPaid, start, end).
		Scan(&today).Error; err != nil {
		return nil, err
	}
	resp.TodayRevenue = today.Revenue
	resp.TodayPaidOrders = today.Orders

	if err := db.Where("stock < ?", lowStockThreshold).
		Order("stock ASC").
		Find(&resp.LowStockItems).Error; err != nil {
		return nil, err
	}
	resp.LowStock = int64(len(resp.LowStockItems))

	if err := db.Model(&models.CartItem{}).
		Select("cart.id_sparepart AS sparepart_id, spareparts.name AS name, SUM(cart.jumlah) AS quantity").
		Joins("JOIN spareparts ON spareparts.id = cart.id_sparepart").
		Where("cart.status IN ?", []models.CartStatus{models.StatusOrdered, models.StatusPaid}).
		Group("cart.id_sparepart, spareparts.name").
		Order("quantity DESC").
		Limit(topSellingLimit).
		Scan(&resp.TopSelling).Error; err != nil {
		return nil, err
	}

	return resp, nil
}
