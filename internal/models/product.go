package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product statuses.
const (
	ProductStatusDraft     = "draft"
	ProductStatusReady     = "ready"
	ProductStatusPublished = "published"
	ProductStatusHidden    = "hidden"
)

// Product is a sellable item imported under a single offer list. Pricing
// inputs live on the product; the exchange rate and tax configuration come
// from the parent list. The snapshot fields are written exclusively by the
// pricing engine whenever a price-affecting input changes.
type Product struct {
	BaseModel
	ListID             uuid.UUID      `gorm:"type:uuid;index" json:"list_id"`
	List               *OfferList     `json:"list,omitempty"`
	Title              string         `json:"title"`
	Brand              string         `json:"brand"`
	Description        string         `json:"description"`
	Images             pq.StringArray `gorm:"type:text[]" json:"images"`
	BaseCostUSD        float64        `json:"base_cost_usd"`
	MarginPercentage   float64        `json:"margin_percentage"`
	DiscountPercentage float64        `json:"discount_percentage"`
	ManualFinalPrice   *float64       `json:"manual_final_price"`
	Status             string         `gorm:"index" json:"status"`

	// Pricing snapshot. Nullable so "never calculated" is distinguishable
	// from a legitimate zero.
	PriceWithTaxUSD     *float64 `json:"price_with_tax_usd"`
	TotalCostUSD        *float64 `json:"total_cost_usd"`
	TotalCostLocal      *float64 `json:"total_cost_local"`
	SuggestedPriceLocal *float64 `json:"suggested_price_local"`
	FinalPriceLocal     *float64 `json:"final_price_local"`
	ProfitLocal         *float64 `json:"profit_local"`
	FullPriceLocal      *float64 `json:"full_price_local"`
	DiscountLocal       *float64 `json:"discount_local"`
}

// HasPricing reports whether the pricing engine has successfully run for this
// product. Required before the product can be marked ready to publish.
func (p *Product) HasPricing() bool {
	return p.TotalCostLocal != nil && p.FinalPriceLocal != nil && p.ProfitLocal != nil
}
