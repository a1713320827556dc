package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/listado/internal/lifecycle"
	"github.com/example/listado/internal/middleware"
	"github.com/example/listado/internal/models"
	"github.com/example/listado/internal/utils"
)

// OrderHandler manages customer orders and their line items.
type OrderHandler struct {
	db      *gorm.DB
	manager *lifecycle.Manager
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, manager *lifecycle.Manager) *OrderHandler {
	return &OrderHandler{db: db, manager: manager}
}

type orderRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes"`
}

// CreateOrder opens a new order for a customer.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.CustomerName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "customer_name is required")
	}

	order := models.Order{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Status:        models.OrderStatusNew,
	}

	if operatorID, ok := middleware.GetOperatorID(c); ok {
		order.CreatedBy = &operatorID
	}

	if err := h.db.Create(&order).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns paginated orders with optional status filter and
// customer search.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where("customer_name ILIKE ? OR customer_phone ILIKE ?", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order with its items.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// UpdateOrder edits customer fields. Totals and items are untouched here.
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if req.CustomerName != "" {
		order.CustomerName = req.CustomerName
	}
	order.CustomerPhone = req.CustomerPhone
	order.Notes = req.Notes

	if err := h.db.Model(&order).Updates(map[string]any{
		"customer_name":  order.CustomerName,
		"customer_phone": order.CustomerPhone,
		"notes":          order.Notes,
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type orderStatusRequest struct {
	Status      *string `json:"status"`
	DeliveredAt *string `json:"delivered_at"`
}

// SetStatus sets the order status and/or the delivery date. Setting a
// delivery date forces the status to delivered; an empty delivered_at
// string clears a previously recorded date.
func (h *OrderHandler) SetStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req orderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Status == nil && req.DeliveredAt == nil {
		return fiber.NewError(fiber.StatusBadRequest, "status or delivered_at is required")
	}

	var deliveredAt *time.Time
	var clearDelivery bool
	if req.DeliveredAt != nil {
		if *req.DeliveredAt == "" {
			clearDelivery = true
		} else {
			parsed, err := time.Parse(time.RFC3339, *req.DeliveredAt)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "delivered_at must be RFC3339")
			}
			deliveredAt = &parsed
		}
	}

	order, err := h.manager.SetOrderStatus(id, req.Status, deliveredAt, clearDelivery)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type addItemRequest struct {
	ProductID     string  `json:"product_id"`
	Title         string  `json:"title"`
	Quantity      int     `json:"quantity"`
	UnitSaleLocal float64 `json:"unit_sale_local"`
	UnitCostLocal float64 `json:"unit_cost_local"`
}

// AddItem appends a line item. A product reference snapshots the product's
// current final price and cost; a freehand item supplies its own figures.
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	item := lifecycle.NewItem{
		Title:         req.Title,
		Quantity:      req.Quantity,
		UnitSaleLocal: req.UnitSaleLocal,
		UnitCostLocal: req.UnitCostLocal,
	}

	if req.ProductID != "" {
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
		}
		var product models.Product
		if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return err
		}
		item.Product = &product
	}

	order, err := h.manager.AddOrderItem(orderID, item)
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

type updateItemRequest struct {
	Title         *string  `json:"title"`
	Quantity      *int     `json:"quantity"`
	UnitSaleLocal *float64 `json:"unit_sale_local"`
	UnitCostLocal *float64 `json:"unit_cost_local"`
	Status        *string  `json:"status"`
	WasFound      *bool    `json:"was_found"`
}

// UpdateItem edits an item; the order totals are recomputed atomically.
func (h *OrderHandler) UpdateItem(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.manager.UpdateOrderItem(orderID, itemID, lifecycle.ItemPatch{
		Title:         req.Title,
		Quantity:      req.Quantity,
		UnitSaleLocal: req.UnitSaleLocal,
		UnitCostLocal: req.UnitCostLocal,
		Status:        req.Status,
		WasFound:      req.WasFound,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// RemoveItem deletes an item; the order totals are recomputed atomically.
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	itemID, err := uuid.Parse(c.Params("itemId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	order, err := h.manager.RemoveOrderItem(orderID, itemID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
