package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/listado/internal/models"
)

// Manager loads current entity state, applies the transition rules and
// persists the outcome in a single transaction. Compound transitions (the
// list-publish cascade, item mutations plus the totals recompute) are atomic:
// a concurrent reader never sees a half-applied state.
type Manager struct {
	db *gorm.DB
}

// NewManager constructs a Manager around an injected database handle.
func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

func notFound(entity string, id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id.String()}
	}
	return err
}

// PublishList publishes the list and cascades every ready product to
// published in one transaction. Returns the updated list with its products.
func (m *Manager) PublishList(listID uuid.UUID) (*models.OfferList, error) {
	var list models.OfferList
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&list, "id = ?", listID).Error; err != nil {
			return notFound("list", listID, err)
		}

		var products []models.Product
		if err := tx.Where("list_id = ?", listID).Find(&products).Error; err != nil {
			return err
		}

		if _, err := PublishList(&list, products); err != nil {
			return err
		}

		if err := tx.Model(&models.Product{}).
			Where("list_id = ? AND status = ?", listID, models.ProductStatusReady).
			Update("status", models.ProductStatusPublished).Error; err != nil {
			return err
		}
		if err := tx.Model(&list).Update("status", list.Status).Error; err != nil {
			return err
		}

		list.Products = products
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// CloseList closes a published list.
func (m *Manager) CloseList(listID uuid.UUID) (*models.OfferList, error) {
	return m.updateListStatus(listID, CloseList)
}

// ArchiveList archives a list from any non-terminal state.
func (m *Manager) ArchiveList(listID uuid.UUID) (*models.OfferList, error) {
	return m.updateListStatus(listID, ArchiveList)
}

func (m *Manager) updateListStatus(listID uuid.UUID, rule func(*models.OfferList) error) (*models.OfferList, error) {
	var list models.OfferList
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&list, "id = ?", listID).Error; err != nil {
			return notFound("list", listID, err)
		}
		if err := rule(&list); err != nil {
			return err
		}
		return tx.Model(&list).Update("status", list.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// MarkProductReady moves a draft product with complete pricing to ready.
func (m *Manager) MarkProductReady(productID uuid.UUID) (*models.Product, error) {
	return m.updateProductStatus(productID, MarkProductReady)
}

// PublishProduct publishes a ready or hidden product under a published list.
func (m *Manager) PublishProduct(productID uuid.UUID) (*models.Product, error) {
	return m.updateProductStatus(productID, PublishProduct)
}

// HideProduct hides a published product.
func (m *Manager) HideProduct(productID uuid.UUID) (*models.Product, error) {
	return m.updateProductStatus(productID, HideProduct)
}

func (m *Manager) updateProductStatus(productID uuid.UUID, rule func(*models.Product, *models.OfferList) error) (*models.Product, error) {
	var product models.Product
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			return notFound("product", productID, err)
		}
		var list models.OfferList
		if err := tx.First(&list, "id = ?", product.ListID).Error; err != nil {
			return notFound("list", product.ListID, err)
		}
		if err := rule(&product, &list); err != nil {
			return err
		}
		return tx.Model(&product).Update("status", product.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// AddOrderItem snapshots and appends an item, then persists the item and the
// recomputed totals together.
func (m *Manager) AddOrderItem(orderID uuid.UUID, in NewItem) (*models.Order, error) {
	return m.mutateOrderItems(orderID, func(tx *gorm.DB, order *models.Order) error {
		item, err := BuildItem(in)
		if err != nil {
			return err
		}
		item.OrderID = order.ID
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		order.Items = append(order.Items, item)
		return nil
	})
}

// ItemPatch carries the editable fields of an order item. Nil means leave
// unchanged. The price snapshot is editable by the operator but is never
// re-read from the product.
type ItemPatch struct {
	Title         *string
	Quantity      *int
	UnitSaleLocal *float64
	UnitCostLocal *float64
	Status        *string
	WasFound      *bool
}

var itemStatuses = map[string]bool{
	models.ItemStatusRequested: true,
	models.ItemStatusSearching: true,
	models.ItemStatusFound:     true,
	models.ItemStatusNotFound:  true,
	models.ItemStatusPurchased: true,
	models.ItemStatusDelivered: true,
	models.ItemStatusCancelled: true,
}

// UpdateOrderItem edits an item and recomputes the order totals in the same
// transaction.
func (m *Manager) UpdateOrderItem(orderID, itemID uuid.UUID, patch ItemPatch) (*models.Order, error) {
	return m.mutateOrderItems(orderID, func(tx *gorm.DB, order *models.Order) error {
		idx := -1
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NotFoundError{Entity: "order item", ID: itemID.String()}
		}

		item := &order.Items[idx]
		if patch.Title != nil {
			item.Title = *patch.Title
		}
		if patch.Quantity != nil {
			if *patch.Quantity < 1 {
				return precondition("item quantity must be at least 1")
			}
			item.Quantity = *patch.Quantity
		}
		if patch.UnitSaleLocal != nil {
			item.UnitSaleLocal = *patch.UnitSaleLocal
		}
		if patch.UnitCostLocal != nil {
			item.UnitCostLocal = *patch.UnitCostLocal
		}
		if patch.Status != nil {
			if !itemStatuses[*patch.Status] {
				return precondition("unknown item status %q", *patch.Status)
			}
			item.Status = *patch.Status
			item.WasFound = item.WasFound || *patch.Status == models.ItemStatusFound
		}
		if patch.WasFound != nil {
			item.WasFound = *patch.WasFound
		}

		return tx.Save(item).Error
	})
}

// RemoveOrderItem deletes an item and recomputes the order totals in the
// same transaction.
func (m *Manager) RemoveOrderItem(orderID, itemID uuid.UUID) (*models.Order, error) {
	return m.mutateOrderItems(orderID, func(tx *gorm.DB, order *models.Order) error {
		idx := -1
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &NotFoundError{Entity: "order item", ID: itemID.String()}
		}
		if err := tx.Delete(&models.OrderItem{}, "id = ?", itemID).Error; err != nil {
			return err
		}
		order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
		return nil
	})
}

func (m *Manager) mutateOrderItems(orderID uuid.UUID, mutate func(tx *gorm.DB, order *models.Order) error) (*models.Order, error) {
	var order models.Order
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return notFound("order", orderID, err)
		}
		if err := mutate(tx, &order); err != nil {
			return err
		}
		RecomputeOrderTotals(&order)
		return tx.Model(&order).Updates(map[string]any{
			"total_items":        order.TotalItems,
			"total_sale_local":   order.TotalSaleLocal,
			"total_cost_local":   order.TotalCostLocal,
			"total_profit_local": order.TotalProfitLocal,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SetOrderStatus sets the order status, or the delivery date when provided
// (a non-nil delivery date forces the status to delivered). clearDelivery
// removes a previously recorded delivery date without touching the status.
func (m *Manager) SetOrderStatus(orderID uuid.UUID, status *string, deliveredAt *time.Time, clearDelivery bool) (*models.Order, error) {
	var order models.Order
	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
			return notFound("order", orderID, err)
		}
		if status != nil {
			if err := SetOrderStatus(&order, *status); err != nil {
				return err
			}
		}
		if clearDelivery {
			SetDeliveredAt(&order, nil)
		} else if deliveredAt != nil {
			SetDeliveredAt(&order, deliveredAt)
		}
		return tx.Model(&order).Updates(map[string]any{
			"status":       order.Status,
			"delivered_at": order.DeliveredAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
