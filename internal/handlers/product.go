package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/listado/internal/lifecycle"
	"github.com/example/listado/internal/models"
	"github.com/example/listado/internal/pricing"
	"github.com/example/listado/internal/utils"
)

// ProductHandler manages product CRUD. Every write of a price-affecting
// field runs the pricing engine and persists the resulting snapshot, so the
// stored breakdown is always the engine's last output for the current inputs.
type ProductHandler struct {
	db      *gorm.DB
	manager *lifecycle.Manager
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, manager *lifecycle.Manager) *ProductHandler {
	return &ProductHandler{db: db, manager: manager}
}

type productRequest struct {
	Title              string   `json:"title"`
	Brand              string   `json:"brand"`
	Description        string   `json:"description"`
	Images             []string `json:"images"`
	BaseCostUSD        float64  `json:"base_cost_usd"`
	MarginPercentage   float64  `json:"margin_percentage"`
	DiscountPercentage float64  `json:"discount_percentage"`
	ManualFinalPrice   *float64 `json:"manual_final_price"`
}

func (r productRequest) validate() error {
	if r.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	if r.BaseCostUSD < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "base_cost_usd cannot be negative")
	}
	if r.MarginPercentage < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "margin_percentage cannot be negative")
	}
	if r.DiscountPercentage < 0 || r.DiscountPercentage > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "discount_percentage must be between 0 and 100")
	}
	return nil
}

// ListProducts returns the products of one list with optional status filter.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{}).Where("list_id = ?", listID)

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Order("created_at asc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct loads a product with its parent list.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("List").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// CreateProduct adds a draft product to a list and prices it.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var product models.Product
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var list models.OfferList
		if err := tx.First(&list, "id = ?", listID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "list not found")
			}
			return err
		}

		if list.IsFrozen() {
			return fiber.NewError(fiber.StatusConflict, "list is "+list.Status+" and no longer accepts new products")
		}

		product = models.Product{
			ListID:             list.ID,
			Title:              req.Title,
			Brand:              req.Brand,
			Description:        req.Description,
			Images:             pq.StringArray(req.Images),
			BaseCostUSD:        req.BaseCostUSD,
			MarginPercentage:   req.MarginPercentage,
			DiscountPercentage: req.DiscountPercentage,
			ManualFinalPrice:   req.ManualFinalPrice,
			Status:             models.ProductStatusDraft,
		}

		if err := priceProduct(&list, &product); err != nil {
			return err
		}

		return tx.Create(&product).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct edits a product and reprices it from the current inputs.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	var product models.Product
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return err
		}

		var list models.OfferList
		if err := tx.First(&list, "id = ?", product.ListID).Error; err != nil {
			return err
		}

		if list.IsFrozen() {
			return fiber.NewError(fiber.StatusConflict, "list is "+list.Status+" and no longer accepts product changes")
		}

		product.Title = req.Title
		product.Brand = req.Brand
		product.Description = req.Description
		product.Images = pq.StringArray(req.Images)
		product.BaseCostUSD = req.BaseCostUSD
		product.MarginPercentage = req.MarginPercentage
		product.DiscountPercentage = req.DiscountPercentage
		product.ManualFinalPrice = req.ManualFinalPrice

		if err := priceProduct(&list, &product); err != nil {
			return err
		}

		return tx.Save(&product).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product unless its list is frozen.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return err
		}

		var list models.OfferList
		if err := tx.First(&list, "id = ?", product.ListID).Error; err != nil {
			return err
		}

		if list.IsFrozen() {
			return fiber.NewError(fiber.StatusConflict, "list is "+list.Status+" and no longer accepts product changes")
		}

		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// MarkReady moves a draft product with complete pricing to ready.
func (h *ProductHandler) MarkReady(c *fiber.Ctx) error {
	return h.transition(c, h.manager.MarkProductReady)
}

// Publish publishes a ready or hidden product under a published list.
func (h *ProductHandler) Publish(c *fiber.Ctx) error {
	return h.transition(c, h.manager.PublishProduct)
}

// Hide hides a published product from the catalog.
func (h *ProductHandler) Hide(c *fiber.Ctx) error {
	return h.transition(c, h.manager.HideProduct)
}

func (h *ProductHandler) transition(c *fiber.Ctx, op func(uuid.UUID) (*models.Product, error)) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	product, err := op(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type previewRequest struct {
	ListID             string   `json:"list_id"`
	BaseCostUSD        float64  `json:"base_cost_usd"`
	MarginPercentage   float64  `json:"margin_percentage"`
	DiscountPercentage float64  `json:"discount_percentage"`
	ManualFinalPrice   *float64 `json:"manual_final_price"`
}

// PreviewPricing runs the pricing engine without persisting anything. Edit
// screens call it on every change of a price-affecting field. An invalid
// input still returns 200 with valid=false so the UI can show the reason.
func (h *ProductHandler) PreviewPricing(c *fiber.Ctx) error {
	var req previewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	listID, err := uuid.Parse(req.ListID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list_id")
	}

	var list models.OfferList
	if err := h.db.First(&list, "id = ?", listID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "list not found")
		}
		return err
	}

	candidate := models.Product{
		BaseCostUSD:        req.BaseCostUSD,
		MarginPercentage:   req.MarginPercentage,
		DiscountPercentage: req.DiscountPercentage,
		ManualFinalPrice:   req.ManualFinalPrice,
	}

	result, err := pricing.ForProduct(&list, &candidate)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// priceProduct runs the engine for one product and applies the snapshot.
// An invalid pricing input is a client error: the product is not saved.
func priceProduct(list *models.OfferList, product *models.Product) error {
	result, err := pricing.ForProduct(list, product)
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if !result.Valid {
		return fiber.NewError(fiber.StatusUnprocessableEntity, result.Error)
	}
	pricing.ApplySnapshot(product, result)
	return nil
}

// repriceListProducts reprices every product of a list after its economic
// parameters changed. Called inside the list-update transaction.
func repriceListProducts(tx *gorm.DB, list *models.OfferList) error {
	var products []models.Product
	if err := tx.Where("list_id = ?", list.ID).Find(&products).Error; err != nil {
		return err
	}

	for i := range products {
		if err := priceProduct(list, &products[i]); err != nil {
			return err
		}
		if err := tx.Save(&products[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
