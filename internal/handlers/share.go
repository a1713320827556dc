package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/listado/internal/models"
	"github.com/example/listado/internal/services"
)

// ShareHandler produces WhatsApp share links for lists and orders.
type ShareHandler struct {
	db       *gorm.DB
	whatsapp *services.WhatsAppService
}

// NewShareHandler constructs ShareHandler.
func NewShareHandler(db *gorm.DB, whatsapp *services.WhatsAppService) *ShareHandler {
	return &ShareHandler{db: db, whatsapp: whatsapp}
}

// ShareList returns the share message and wa.me link for a published list.
func (h *ShareHandler) ShareList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var list models.OfferList
	if err := h.db.First(&list, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "list not found")
		}
		return err
	}

	if list.Status != models.ListStatusPublished {
		return fiber.NewError(fiber.StatusConflict, "only published lists can be shared")
	}

	var products []models.Product
	if err := h.db.Where("list_id = ? AND status = ?", id, models.ProductStatusPublished).
		Order("created_at asc").
		Find(&products).Error; err != nil {
		return err
	}

	message := h.whatsapp.ListMessage(&list, products, c.Query("catalog_url"))

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"message": message,
			"link":    h.whatsapp.ShareLink(message),
		},
	})
}

// ShareOrder returns the share message and wa.me link for an order summary.
func (h *ShareHandler) ShareOrder(c *fiber.Ctx) error {
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

	message := h.whatsapp.OrderMessage(&order)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"message": message,
			"link":    h.whatsapp.ShareLink(message),
		},
	})
}
