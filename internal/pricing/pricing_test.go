package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/listado/internal/models"
)

func validInput() Input {
	return Input{
		ExchangeRate: 4000,
		TaxRate:      0.10,
		BaseCostUSD:  100,
		MarginRate:   1.00,
		DiscountRate: 0.50,
	}
}

func TestCalculateReferenceCase(t *testing.T) {
	r := Calculate(validInput())

	require.True(t, r.Valid)
	assert.Equal(t, 110.0, r.PriceWithTaxUSD)
	assert.Equal(t, 55.0, r.TotalCostUSD)
	assert.Equal(t, 220000.0, r.TotalCostLocal)
	assert.Equal(t, 440000.0, r.SuggestedPriceLocal)
	assert.Equal(t, 440000.0, r.FinalPriceLocal)
	assert.Equal(t, 220000.0, r.ProfitLocal)
	assert.Equal(t, 880000.0, r.FullPriceLocal)
	assert.Equal(t, 440000.0, r.DiscountLocal)
	assert.True(t, r.HasDiscount)
	assert.False(t, r.HasManualPrice)
	assert.Nil(t, r.DiscountVsFinal)
}

func TestCalculateDeterministic(t *testing.T) {
	in := validInput()
	assert.Equal(t, Calculate(in), Calculate(in))
}

func TestCalculateRoundingInvariants(t *testing.T) {
	r := Calculate(Input{
		ExchangeRate: 3947.33,
		TaxRate:      0.07,
		BaseCostUSD:  13.99,
		MarginRate:   0.35,
		DiscountRate: 0.15,
	})
	require.True(t, r.Valid)

	for name, v := range map[string]float64{
		"total_cost_local":      r.TotalCostLocal,
		"suggested_price_local": r.SuggestedPriceLocal,
		"final_price_local":     r.FinalPriceLocal,
		"profit_local":          r.ProfitLocal,
		"full_price_local":      r.FullPriceLocal,
		"discount_local":        r.DiscountLocal,
	} {
		assert.Equal(t, math.Trunc(v), v, "%s must be a whole number", name)
	}

	for name, v := range map[string]float64{
		"price_with_tax_usd": r.PriceWithTaxUSD,
		"total_cost_usd":     r.TotalCostUSD,
	} {
		assert.InDelta(t, math.Round(v*100)/100, v, 1e-9, "%s must have at most 2 decimals", name)
	}
}

func TestCalculateNoDiscount(t *testing.T) {
	in := validInput()
	in.DiscountRate = 0
	r := Calculate(in)

	require.True(t, r.Valid)
	assert.Equal(t, r.SuggestedPriceLocal, r.FullPriceLocal)
	assert.Equal(t, 0.0, r.DiscountLocal)
	assert.False(t, r.HasDiscount)
}

func TestCalculateFullDiscount(t *testing.T) {
	in := validInput()
	in.DiscountRate = 1
	r := Calculate(in)

	require.True(t, r.Valid)
	assert.Equal(t, 0.0, r.TotalCostUSD)
	assert.Equal(t, 0.0, r.TotalCostLocal)
}

func TestCalculateManualOverride(t *testing.T) {
	in := validInput()
	manual := 399999.49
	in.ManualFinalPrice = &manual
	r := Calculate(in)

	require.True(t, r.Valid)
	assert.Equal(t, 399999.0, r.FinalPriceLocal)
	assert.True(t, r.HasManualPrice)
	assert.Equal(t, r.FinalPriceLocal-r.TotalCostLocal, r.ProfitLocal)
	require.NotNil(t, r.DiscountVsFinal)
	assert.Equal(t, r.FullPriceLocal-399999.0, *r.DiscountVsFinal)
}

func TestCalculateManualOverrideIgnoredWhenZero(t *testing.T) {
	in := validInput()
	manual := 0.0
	in.ManualFinalPrice = &manual
	r := Calculate(in)

	require.True(t, r.Valid)
	assert.False(t, r.HasManualPrice)
	assert.Equal(t, r.SuggestedPriceLocal, r.FinalPriceLocal)
	assert.Nil(t, r.DiscountVsFinal)
}

func TestCalculateNegativeProfitAllowed(t *testing.T) {
	in := validInput()
	in.DiscountRate = 0
	manual := 100.0 // far below cost
	in.ManualFinalPrice = &manual
	r := Calculate(in)

	require.True(t, r.Valid)
	assert.Negative(t, r.ProfitLocal)
}

func TestCalculateValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero exchange rate", func(in *Input) { in.ExchangeRate = 0 }},
		{"negative exchange rate", func(in *Input) { in.ExchangeRate = -1 }},
		{"negative tax rate", func(in *Input) { in.TaxRate = -0.01 }},
		{"negative base cost", func(in *Input) { in.BaseCostUSD = -5 }},
		{"negative margin", func(in *Input) { in.MarginRate = -0.1 }},
		{"discount above one", func(in *Input) { in.DiscountRate = 1.5 }},
		{"negative discount", func(in *Input) { in.DiscountRate = -0.2 }},
		{"nan exchange rate", func(in *Input) { in.ExchangeRate = math.NaN() }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			r := Calculate(in)

			assert.False(t, r.Valid)
			assert.NotEmpty(t, r.Error)
			assert.Zero(t, r.PriceWithTaxUSD)
			assert.Zero(t, r.TotalCostUSD)
			assert.Zero(t, r.TotalCostLocal)
			assert.Zero(t, r.SuggestedPriceLocal)
			assert.Zero(t, r.FinalPriceLocal)
			assert.Zero(t, r.ProfitLocal)
			assert.Zero(t, r.FullPriceLocal)
			assert.Zero(t, r.DiscountLocal)
		})
	}
}

func TestResolveTaxRatePercentage(t *testing.T) {
	pct := 10.0
	list := &models.OfferList{TaxMode: models.TaxModePercentage, TaxPercentage: &pct}

	rate, err := ResolveTaxRate(list, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.10, rate)
}

func TestResolveTaxRateFixedUSD(t *testing.T) {
	fixed := 25.0
	list := &models.OfferList{TaxMode: models.TaxModeFixedUSD, TaxFixedUSD: &fixed}

	rate, err := ResolveTaxRate(list, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.25, rate)

	rate, err = ResolveTaxRate(list, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rate)
}

func TestResolveTaxRateMisconfigured(t *testing.T) {
	_, err := ResolveTaxRate(&models.OfferList{TaxMode: models.TaxModePercentage}, 100)
	assert.Error(t, err)

	_, err = ResolveTaxRate(&models.OfferList{TaxMode: models.TaxModeFixedUSD}, 100)
	assert.Error(t, err)

	_, err = ResolveTaxRate(&models.OfferList{TaxMode: "flat"}, 100)
	assert.Error(t, err)
}

func TestForProductAppliesListParameters(t *testing.T) {
	pct := 10.0
	list := &models.OfferList{
		ExchangeRate:  4000,
		TaxMode:       models.TaxModePercentage,
		TaxPercentage: &pct,
	}
	p := &models.Product{
		BaseCostUSD:        100,
		MarginPercentage:   100,
		DiscountPercentage: 50,
	}

	r, err := ForProduct(list, p)
	require.NoError(t, err)
	require.True(t, r.Valid)
	assert.Equal(t, 440000.0, r.FinalPriceLocal)

	ApplySnapshot(p, r)
	require.True(t, p.HasPricing())
	assert.Equal(t, 440000.0, *p.FinalPriceLocal)
	assert.Equal(t, 220000.0, *p.ProfitLocal)
}
