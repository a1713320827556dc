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

// ListHandler manages offer list CRUD and status transitions.
type ListHandler struct {
	db      *gorm.DB
	manager *lifecycle.Manager
}

// NewListHandler constructs ListHandler.
func NewListHandler(db *gorm.DB, manager *lifecycle.Manager) *ListHandler {
	return &ListHandler{db: db, manager: manager}
}

type listRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	OfferDate     string   `json:"offer_date"`
	ExchangeRate  float64  `json:"exchange_rate"`
	TaxMode       string   `json:"tax_mode"`
	TaxPercentage *float64 `json:"tax_percentage"`
	TaxFixedUSD   *float64 `json:"tax_fixed_usd"`
}

func (r listRequest) validate() error {
	if r.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	if r.ExchangeRate <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "exchange_rate must be greater than zero")
	}
	switch r.TaxMode {
	case models.TaxModePercentage:
		if r.TaxPercentage == nil || *r.TaxPercentage < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "tax_percentage is required for percentage mode and cannot be negative")
		}
		if r.TaxFixedUSD != nil {
			return fiber.NewError(fiber.StatusBadRequest, "tax_fixed_usd must be empty in percentage mode")
		}
	case models.TaxModeFixedUSD:
		if r.TaxFixedUSD == nil || *r.TaxFixedUSD < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "tax_fixed_usd is required for fixed_usd mode and cannot be negative")
		}
		if r.TaxPercentage != nil {
			return fiber.NewError(fiber.StatusBadRequest, "tax_percentage must be empty in fixed_usd mode")
		}
	default:
		return fiber.NewError(fiber.StatusBadRequest, "tax_mode must be percentage or fixed_usd")
	}
	return nil
}

func (r listRequest) offerDate() (*time.Time, error) {
	if r.OfferDate == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", r.OfferDate)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "offer_date must be YYYY-MM-DD")
	}
	return &parsed, nil
}

// ListLists returns paginated offer lists with optional status filter.
func (h *ListHandler) ListLists(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.OfferList{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var lists []models.OfferList
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&lists).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    lists,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetList loads a list with its products.
func (h *ListHandler) GetList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var list models.OfferList
	if err := h.db.Preload("Products", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc")
	}).First(&list, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "list not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

// CreateList creates a new offer list in draft.
func (h *ListHandler) CreateList(c *fiber.Ctx) error {
	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	offerDate, err := req.offerDate()
	if err != nil {
		return err
	}

	list := models.OfferList{
		Title:         req.Title,
		Description:   req.Description,
		OfferDate:     offerDate,
		ExchangeRate:  req.ExchangeRate,
		TaxMode:       req.TaxMode,
		TaxPercentage: req.TaxPercentage,
		TaxFixedUSD:   req.TaxFixedUSD,
		Status:        models.ListStatusDraft,
	}

	if operatorID, ok := middleware.GetOperatorID(c); ok {
		list.CreatedBy = &operatorID
	}

	if err := h.db.Create(&list).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": list})
}

// UpdateList edits list parameters. Changing economic parameters reprices
// every product in the list in the same transaction, so the stored snapshots
// never drift from the list configuration. Frozen lists reject edits.
func (h *ListHandler) UpdateList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	offerDate, err := req.offerDate()
	if err != nil {
		return err
	}

	var list models.OfferList
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&list, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "list not found")
			}
			return err
		}

		if list.IsFrozen() {
			return fiber.NewError(fiber.StatusConflict, "list is "+list.Status+" and can no longer be edited")
		}

		list.Title = req.Title
		list.Description = req.Description
		list.OfferDate = offerDate
		list.ExchangeRate = req.ExchangeRate
		list.TaxMode = req.TaxMode
		list.TaxPercentage = req.TaxPercentage
		list.TaxFixedUSD = req.TaxFixedUSD

		if err := tx.Save(&list).Error; err != nil {
			return err
		}

		return repriceListProducts(tx, &list)
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

// PublishList publishes the list and cascades its ready products.
func (h *ListHandler) PublishList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	list, err := h.manager.PublishList(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

// CloseList closes a published list.
func (h *ListHandler) CloseList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	list, err := h.manager.CloseList(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

// ArchiveList archives a list. Archived lists are terminal.
func (h *ListHandler) ArchiveList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	list, err := h.manager.ArchiveList(id)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": list})
}

// DeleteList removes a draft list and its products. Published and later
// lists are archived instead of deleted so published prices stay auditable.
func (h *ListHandler) DeleteList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		var list models.OfferList
		if err := tx.First(&list, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fiber.NewError(fiber.StatusNotFound, "list not found")
			}
			return err
		}

		if list.Status != models.ListStatusDraft {
			return fiber.NewError(fiber.StatusConflict, "only draft lists can be deleted; archive it instead")
		}

		if err := tx.Where("list_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.OfferList{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
