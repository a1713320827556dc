// Package pricing converts a base USD cost plus list-level tax, margin and
// discount parameters into a full retail price breakdown in local currency.
// It is the single source of truth for the pricing formulas: every
// product-edit path routes through Calculate before persisting, and no other
// code derives these figures.
package pricing

import (
	"fmt"
	"math"

	"github.com/example/listado/internal/models"
)

// Input carries everything Calculate needs. Rates are decimal fractions
// (0.10 = 10%), already resolved from the parent list's configuration; see
// ResolveTaxRate.
type Input struct {
	ExchangeRate     float64  // local currency units per 1 USD, > 0
	TaxRate          float64  // >= 0
	BaseCostUSD      float64  // >= 0
	MarginRate       float64  // >= 0, 1.00 = 100% margin
	DiscountRate     float64  // 0..1 inclusive
	ManualFinalPrice *float64 // optional override of the final local price
}

// Result is the full breakdown. When Valid is false every numeric field is
// zero and Error describes the rejected input; callers must check Valid
// before trusting the numbers.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`

	PriceWithTaxUSD     float64  `json:"price_with_tax_usd"`
	TotalCostUSD        float64  `json:"total_cost_usd"`
	TotalCostLocal      float64  `json:"total_cost_local"`
	SuggestedPriceLocal float64  `json:"suggested_price_local"`
	FinalPriceLocal     float64  `json:"final_price_local"`
	ProfitLocal         float64  `json:"profit_local"`
	FullPriceLocal      float64  `json:"full_price_local"`
	DiscountLocal       float64  `json:"discount_local"`
	DiscountVsFinal     *float64 `json:"discount_vs_final,omitempty"`

	HasManualPrice bool `json:"has_manual_price"`
	HasDiscount    bool `json:"has_discount"`
}

// round2 rounds USD amounts to 2 decimals, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round0 rounds local-currency amounts to whole units.
func round0(v float64) float64 {
	return math.Round(v)
}

func invalid(reason string) Result {
	return Result{Valid: false, Error: reason}
}

// Calculate runs the pricing formulas in their exact documented order.
// Discount applies to the tax-inclusive USD cost before margin; the full
// (zero-discount) price is kept alongside as a struck-through reference.
// Pure and deterministic: identical inputs always yield identical outputs.
func Calculate(in Input) Result {
	if math.IsNaN(in.ExchangeRate) || math.IsNaN(in.TaxRate) || math.IsNaN(in.BaseCostUSD) ||
		math.IsNaN(in.MarginRate) || math.IsNaN(in.DiscountRate) {
		return invalid("input contains a non-numeric value")
	}
	if in.ExchangeRate <= 0 {
		return invalid("exchange rate must be greater than zero")
	}
	if in.TaxRate < 0 {
		return invalid("tax rate cannot be negative")
	}
	if in.BaseCostUSD < 0 {
		return invalid("base cost cannot be negative")
	}
	if in.MarginRate < 0 {
		return invalid("margin rate cannot be negative")
	}
	if in.DiscountRate < 0 || in.DiscountRate > 1 {
		return invalid("discount rate must be between 0 and 1")
	}
	if in.ManualFinalPrice != nil && math.IsNaN(*in.ManualFinalPrice) {
		return invalid("manual final price is not a number")
	}

	r := Result{Valid: true}

	r.PriceWithTaxUSD = round2(in.BaseCostUSD * (1 + in.TaxRate))
	r.TotalCostUSD = round2(r.PriceWithTaxUSD * (1 - in.DiscountRate))
	r.TotalCostLocal = round0(r.TotalCostUSD * in.ExchangeRate)
	r.SuggestedPriceLocal = round0(r.TotalCostLocal * (1 + in.MarginRate))

	if in.ManualFinalPrice != nil && *in.ManualFinalPrice > 0 {
		r.FinalPriceLocal = round0(*in.ManualFinalPrice)
		r.HasManualPrice = true
	} else {
		r.FinalPriceLocal = r.SuggestedPriceLocal
	}

	r.ProfitLocal = round0(r.FinalPriceLocal - r.TotalCostLocal)
	r.FullPriceLocal = round0(r.PriceWithTaxUSD * (1 + in.MarginRate) * in.ExchangeRate)
	r.DiscountLocal = round0(r.FullPriceLocal - r.SuggestedPriceLocal)

	if r.HasManualPrice {
		vsFinal := round0(r.FullPriceLocal - r.FinalPriceLocal)
		r.DiscountVsFinal = &vsFinal
	}

	r.HasDiscount = in.DiscountRate > 0
	return r
}

// ResolveTaxRate converts a list's tax configuration into the decimal rate
// Calculate expects. A percentage mode divides by 100; a fixed USD amount is
// converted into the equivalent rate for this product's base cost so the
// tax formula stays uniform (rate 0 when the base cost is 0).
func ResolveTaxRate(list *models.OfferList, baseCostUSD float64) (float64, error) {
	switch list.TaxMode {
	case models.TaxModePercentage:
		if list.TaxPercentage == nil {
			return 0, fmt.Errorf("list tax mode is percentage but tax_percentage is not set")
		}
		return *list.TaxPercentage / 100, nil
	case models.TaxModeFixedUSD:
		if list.TaxFixedUSD == nil {
			return 0, fmt.Errorf("list tax mode is fixed_usd but tax_fixed_usd is not set")
		}
		if baseCostUSD == 0 {
			return 0, nil
		}
		return *list.TaxFixedUSD / baseCostUSD, nil
	default:
		return 0, fmt.Errorf("unknown tax mode %q", list.TaxMode)
	}
}

// ForProduct resolves the tax rate from the parent list and prices a product
// with the list's exchange rate. Helper used by every product write path.
func ForProduct(list *models.OfferList, p *models.Product) (Result, error) {
	taxRate, err := ResolveTaxRate(list, p.BaseCostUSD)
	if err != nil {
		return Result{}, err
	}
	return Calculate(Input{
		ExchangeRate:     list.ExchangeRate,
		TaxRate:          taxRate,
		BaseCostUSD:      p.BaseCostUSD,
		MarginRate:       p.MarginPercentage / 100,
		DiscountRate:     p.DiscountPercentage / 100,
		ManualFinalPrice: p.ManualFinalPrice,
	}), nil
}

// ApplySnapshot copies a valid result onto the product's snapshot fields.
func ApplySnapshot(p *models.Product, r Result) {
	p.PriceWithTaxUSD = &r.PriceWithTaxUSD
	p.TotalCostUSD = &r.TotalCostUSD
	p.TotalCostLocal = &r.TotalCostLocal
	p.SuggestedPriceLocal = &r.SuggestedPriceLocal
	p.FinalPriceLocal = &r.FinalPriceLocal
	p.ProfitLocal = &r.ProfitLocal
	p.FullPriceLocal = &r.FullPriceLocal
	p.DiscountLocal = &r.DiscountLocal
}
