package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. Unlike lists and products, orders have no enforced state
// machine: operators move them forward or correct them backward freely.
const (
	OrderStatusNew        = "new"
	OrderStatusInProgress = "in_progress"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusPurchasing = "purchasing"
	OrderStatusInTransit  = "in_transit"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order item statuses.
const (
	ItemStatusRequested = "requested"
	ItemStatusSearching = "searching"
	ItemStatusFound     = "found"
	ItemStatusNotFound  = "not_found"
	ItemStatusPurchased = "purchased"
	ItemStatusDelivered = "delivered"
	ItemStatusCancelled = "cancelled"
)

// Order is a customer request. The four totals are always derived by summing
// the current items; they are recomputed in full on every item mutation.
type Order struct {
	BaseModel
	CustomerName     string      `json:"customer_name"`
	CustomerPhone    string      `json:"customer_phone"`
	Status           string      `gorm:"index" json:"status"`
	Notes            string      `json:"notes"`
	DeliveredAt      *time.Time  `json:"delivered_at"`
	TotalItems       int         `json:"total_items"`
	TotalSaleLocal   float64     `json:"total_sale_local"`
	TotalCostLocal   float64     `json:"total_cost_local"`
	TotalProfitLocal float64     `json:"total_profit_local"`
	CreatedBy        *uuid.UUID  `gorm:"type:uuid" json:"created_by"`
	Items            []OrderItem `json:"items,omitempty"`
}

// OrderItem is a line item. Unit sale and cost are captured as an immutable
// snapshot when the item is added; later product price changes never touch
// already-placed items. ProductID is nullable so operators can enter freehand
// items that reference no catalog product.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID     *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	Title         string     `json:"title"`
	Quantity      int        `json:"quantity"`
	UnitSaleLocal float64    `json:"unit_sale_local"`
	UnitCostLocal float64    `json:"unit_cost_local"`
	Status        string     `json:"status"`
	WasFound      bool       `json:"was_found"`
}
