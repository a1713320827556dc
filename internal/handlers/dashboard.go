package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/listado/internal/models"
)

// DashboardHandler serves aggregate statistics for the admin home screen.
type DashboardHandler struct {
	db *gorm.DB
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats returns list/product/order counts and profit aggregates.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	countByStatus := func(model any) (map[string]int64, error) {
		var counts []statusCount
		if err := h.db.Model(model).
			Select("status, count(*) as count").
			Group("status").
			Scan(&counts).Error; err != nil {
			return nil, err
		}
		out := make(map[string]int64, len(counts))
		for _, sc := range counts {
			out[sc.Status] = sc.Count
		}
		return out, nil
	}

	listsByStatus, err := countByStatus(&models.OfferList{})
	if err != nil {
		return err
	}
	productsByStatus, err := countByStatus(&models.Product{})
	if err != nil {
		return err
	}
	ordersByStatus, err := countByStatus(&models.Order{})
	if err != nil {
		return err
	}

	var totalSale, totalProfit float64
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_sale_local), 0)").
		Scan(&totalSale).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Order{}).
		Where("status != ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_profit_local), 0)").
		Scan(&totalProfit).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"lists_by_status":    listsByStatus,
			"products_by_status": productsByStatus,
			"orders_by_status":   ordersByStatus,
			"total_sale_local":   totalSale,
			"total_profit_local": totalProfit,
		},
	})
}

// RecentOrders returns the five most recent orders.
func (h *DashboardHandler) RecentOrders(c *fiber.Ctx) error {
	var orders []models.Order
	if err := h.db.Preload("Items").
		Order("created_at desc").
		Limit(5).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}
