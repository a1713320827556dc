package models

import (
	"time"

	"github.com/google/uuid"
)

// List statuses.
const (
	ListStatusDraft     = "draft"
	ListStatusPublished = "published"
	ListStatusClosed    = "closed"
	ListStatusArchived  = "archived"
)

// Tax modes for an offer list.
const (
	TaxModePercentage = "percentage"
	TaxModeFixedUSD   = "fixed_usd"
)

// OfferList is a named batch of products sharing economic parameters: one
// exchange rate and one tax configuration apply to every product in the list.
type OfferList struct {
	BaseModel
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	OfferDate     *time.Time `json:"offer_date"`
	ExchangeRate  float64    `json:"exchange_rate"`
	TaxMode       string     `json:"tax_mode"`
	TaxPercentage *float64   `json:"tax_percentage"`
	TaxFixedUSD   *float64   `json:"tax_fixed_usd"`
	Status        string     `gorm:"index" json:"status"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	Products      []Product  `json:"products,omitempty"`
}

// IsFrozen reports whether the list no longer accepts product changes.
func (l *OfferList) IsFrozen() bool {
	return l.Status == ListStatusClosed || l.Status == ListStatusArchived
}
