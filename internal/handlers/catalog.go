package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/listado/internal/models"
)

// CatalogHandler serves the read-only public catalog: published lists and
// their published products, no auth. Hidden and draft products never appear
// here; products under closed lists stay visible read-only.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// ListPublishedLists returns lists currently visible to customers.
func (h *CatalogHandler) ListPublishedLists(c *fiber.Ctx) error {
	var lists []models.OfferList
	if err := h.db.Where("status IN ?", []string{models.ListStatusPublished, models.ListStatusClosed}).
		Order("offer_date desc NULLS LAST, created_at desc").
		Find(&lists).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": lists})
}

// GetCatalogList returns one visible list with its published products. The
// public payload omits cost and profit fields.
func (h *CatalogHandler) GetCatalogList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var list models.OfferList
	if err := h.db.First(&list, "id = ? AND status IN ?", id,
		[]string{models.ListStatusPublished, models.ListStatusClosed}).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "list not found")
		}
		return err
	}

	var products []models.Product
	if err := h.db.Where("list_id = ? AND status = ?", id, models.ProductStatusPublished).
		Order("created_at asc").
		Find(&products).Error; err != nil {
		return err
	}

	items := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		item := fiber.Map{
			"id":          p.ID,
			"title":       p.Title,
			"brand":       p.Brand,
			"description": p.Description,
			"images":      p.Images,
			"final_price": p.FinalPriceLocal,
		}
		if p.DiscountPercentage > 0 {
			item["full_price"] = p.FullPriceLocal
			item["discount_percentage"] = p.DiscountPercentage
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":          list.ID,
			"title":       list.Title,
			"description": list.Description,
			"offer_date":  list.OfferDate,
			"status":      list.Status,
			"products":    items,
		},
	})
}
