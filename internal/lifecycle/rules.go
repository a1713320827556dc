// Package lifecycle holds the transition rules for offer lists, products and
// orders, and a storage-backed Manager that applies them atomically. The
// rules themselves are plain synchronous functions over in-memory entities:
// they validate first and mutate only after every check has passed, so a
// returned error always means nothing changed.
package lifecycle

import (
	"time"

	"github.com/example/listado/internal/models"
)

// PublishList moves a draft list to published and cascades every ready
// product to published in the same step. Preconditions: a positive exchange
// rate, tax fields consistent with the tax mode, and at least one product
// ready to publish. Returns the number of products that were cascaded.
func PublishList(list *models.OfferList, products []models.Product) (int, error) {
	if list.Status != models.ListStatusDraft {
		return 0, illegal("list", list.Status, "publish", "")
	}
	if list.ExchangeRate <= 0 {
		return 0, precondition("list exchange rate must be greater than zero")
	}
	switch list.TaxMode {
	case models.TaxModePercentage:
		if list.TaxPercentage == nil || *list.TaxPercentage < 0 {
			return 0, precondition("list tax mode is percentage but tax_percentage is missing or negative")
		}
	case models.TaxModeFixedUSD:
		if list.TaxFixedUSD == nil || *list.TaxFixedUSD < 0 {
			return 0, precondition("list tax mode is fixed_usd but tax_fixed_usd is missing or negative")
		}
	default:
		return 0, precondition("list has unknown tax mode %q", list.TaxMode)
	}

	ready := 0
	for i := range products {
		if products[i].Status == models.ProductStatusReady {
			ready++
		}
	}
	if ready == 0 {
		return 0, precondition("list must have at least one product ready to publish")
	}

	list.Status = models.ListStatusPublished
	for i := range products {
		if products[i].Status == models.ProductStatusReady {
			products[i].Status = models.ProductStatusPublished
		}
	}
	return ready, nil
}

// CloseList moves a published list to closed. Products keep their statuses;
// the freeze on further product changes is enforced by the product rules.
func CloseList(list *models.OfferList) error {
	if list.Status != models.ListStatusPublished {
		return illegal("list", list.Status, "close", "")
	}
	list.Status = models.ListStatusClosed
	return nil
}

// ArchiveList is allowed from draft, published or closed. Archived is
// terminal: no transition ever leaves it.
func ArchiveList(list *models.OfferList) error {
	if list.Status == models.ListStatusArchived {
		return illegal("list", list.Status, "archive", "list is already archived")
	}
	list.Status = models.ListStatusArchived
	return nil
}

// MarkProductReady moves a draft product to ready. Requires a complete
// pricing snapshot, a final price at or above total cost (below-cost sales
// are caught here, not by the pricing engine), and a parent list that is not
// closed or archived.
func MarkProductReady(p *models.Product, list *models.OfferList) error {
	if list.IsFrozen() {
		return illegal("product", p.Status, "mark ready", "list is "+list.Status+" and no longer accepts product changes")
	}
	if p.Status != models.ProductStatusDraft {
		return illegal("product", p.Status, "mark ready", "")
	}
	if !p.HasPricing() {
		return precondition("product is missing price calculations; save it with valid pricing first")
	}
	if *p.FinalPriceLocal < *p.TotalCostLocal {
		return precondition("product final price %.0f is below its total cost %.0f; the sale price cannot go under cost", *p.FinalPriceLocal, *p.TotalCostLocal)
	}
	p.Status = models.ProductStatusReady
	return nil
}

// PublishProduct moves a ready or hidden product to published. An individual
// product can only be published once its list is published; draft lists get
// their products published through the list cascade instead. Re-publishing a
// hidden product does not re-check calculations, they are unchanged by
// hide/unhide.
func PublishProduct(p *models.Product, list *models.OfferList) error {
	if list.IsFrozen() {
		return illegal("product", p.Status, "publish", "list is "+list.Status+" and no longer accepts product changes")
	}
	if p.Status != models.ProductStatusReady && p.Status != models.ProductStatusHidden {
		return illegal("product", p.Status, "publish", "")
	}
	if list.Status != models.ListStatusPublished {
		return precondition("product can only be published while its list is published")
	}
	p.Status = models.ProductStatusPublished
	return nil
}

// HideProduct moves a published product to hidden.
func HideProduct(p *models.Product, list *models.OfferList) error {
	if list.IsFrozen() {
		return illegal("product", p.Status, "hide", "list is "+list.Status+" and no longer accepts product changes")
	}
	if p.Status != models.ProductStatusPublished {
		return illegal("product", p.Status, "hide", "")
	}
	p.Status = models.ProductStatusHidden
	return nil
}

var orderStatuses = map[string]bool{
	models.OrderStatusNew:        true,
	models.OrderStatusInProgress: true,
	models.OrderStatusConfirmed:  true,
	models.OrderStatusPurchasing: true,
	models.OrderStatusInTransit:  true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// SetOrderStatus sets any of the seven order statuses. Orders deliberately
// have no transition table: operators move them forward or correct them
// backward at will.
func SetOrderStatus(o *models.Order, status string) error {
	if !orderStatuses[status] {
		return precondition("unknown order status %q", status)
	}
	o.Status = status
	return nil
}

// SetDeliveredAt records the delivery date. A non-nil date forces the order
// into delivered as a derived-state convenience.
func SetDeliveredAt(o *models.Order, at *time.Time) {
	o.DeliveredAt = at
	if at != nil {
		o.Status = models.OrderStatusDelivered
	}
}

// RecomputeOrderTotals derives the four aggregate totals by summing the
// current items from scratch. Always a full recomputation, never a delta.
func RecomputeOrderTotals(o *models.Order) {
	o.TotalItems = 0
	o.TotalSaleLocal = 0
	o.TotalCostLocal = 0
	o.TotalProfitLocal = 0
	for i := range o.Items {
		it := &o.Items[i]
		o.TotalItems += it.Quantity
		o.TotalSaleLocal += it.UnitSaleLocal * float64(it.Quantity)
		o.TotalCostLocal += it.UnitCostLocal * float64(it.Quantity)
	}
	o.TotalProfitLocal = o.TotalSaleLocal - o.TotalCostLocal
}

// NewItem describes an item being added to an order. Either Product is set,
// in which case its current final price and total cost are copied as the
// immutable snapshot, or UnitSaleLocal/UnitCostLocal are supplied directly
// for a freehand item.
type NewItem struct {
	Product       *models.Product
	Title         string
	Quantity      int
	UnitSaleLocal float64
	UnitCostLocal float64
}

// BuildItem validates a NewItem and produces the OrderItem snapshot.
func BuildItem(in NewItem) (models.OrderItem, error) {
	item := models.OrderItem{
		Title:         in.Title,
		Quantity:      in.Quantity,
		UnitSaleLocal: in.UnitSaleLocal,
		UnitCostLocal: in.UnitCostLocal,
		Status:        models.ItemStatusRequested,
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Quantity < 1 {
		return item, precondition("item quantity must be at least 1")
	}

	if in.Product != nil {
		if !in.Product.HasPricing() {
			return item, precondition("referenced product has no price calculations to snapshot")
		}
		item.ProductID = &in.Product.ID
		item.UnitSaleLocal = *in.Product.FinalPriceLocal
		item.UnitCostLocal = *in.Product.TotalCostLocal
		if item.Title == "" {
			item.Title = in.Product.Title
		}
	}
	if item.Title == "" {
		return item, precondition("item needs a title or a product reference")
	}
	return item, nil
}
