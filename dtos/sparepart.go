package dtos

import "spareshop-api/models"

// SparepartInput is bound from multipart form fields.
type SparepartInput struct {
	Name  string `form:"name" binding:"required"`
	Stock *int   `form:"stock" binding:"required,min=0"`
	Price *int64 `form:"price" binding:"required,min=1"`
}

type SparepartFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Query    string `form:"q"`
}

type AuditLogFilter struct {
	EntityType string `form:"entity_type"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

type DashboardTopItem struct {
	SparepartID uint   `json:"id_sparepart"`
	Name        string `json:"name"`
	Quantity    int64  `json:"quantity"`
}

type DashboardResponse struct {
	TodayRevenue    int64              `json:"today_revenue"`
	TodayPaidOrders int64              `json:"today_paid_orders"`
	LowStock        int64              `json:"low_stock"`
	LowStockItems   []models.Sparepart `json:"low_stock_items"`
	TopSelling      []DashboardTopItem `json:"top_selling_items"`
}
