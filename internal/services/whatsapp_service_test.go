package services

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/listado/internal/models"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$440.000", FormatPrice(440000))
	assert.Equal(t, "$1.030.000", FormatPrice(1030000))
	assert.Equal(t, "$0", FormatPrice(0))
	assert.Equal(t, "$999", FormatPrice(999))
	assert.Equal(t, "-$15.000", FormatPrice(-15000))
}

func TestShareLink(t *testing.T) {
	s := NewWhatsAppService("+573001112233")
	link := s.ShareLink("hola mundo")
	assert.Equal(t, "https://wa.me/573001112233?text=hola+mundo", link)

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "hola mundo", parsed.Query().Get("text"))

	open := NewWhatsAppService("")
	assert.Equal(t, "https://wa.me/?text=hi", open.ShareLink("hi"))
}

func TestListMessage(t *testing.T) {
	s := NewWhatsAppService("")
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	final, full := 440000.0, 880000.0
	hiddenFinal := 99000.0

	list := &models.OfferList{Title: "Ofertas septiembre", OfferDate: &date}
	products := []models.Product{
		{
			Title:              "Wireless earbuds",
			Status:             models.ProductStatusPublished,
			DiscountPercentage: 50,
			FinalPriceLocal:    &final,
			FullPriceLocal:     &full,
		},
		{
			Title:           "Phone case",
			Status:          models.ProductStatusHidden,
			FinalPriceLocal: &hiddenFinal,
		},
	}

	msg := s.ListMessage(list, products, "https://example.com/catalogo/ofertas")

	assert.Contains(t, msg, "*Ofertas septiembre*")
	assert.Contains(t, msg, "01/09/2026")
	assert.Contains(t, msg, "~$880.000~ *$440.000*")
	assert.NotContains(t, msg, "Phone case")
	assert.Contains(t, msg, "https://example.com/catalogo/ofertas")
}

func TestOrderMessage(t *testing.T) {
	s := NewWhatsAppService("")
	order := &models.Order{
		CustomerName:   "Laura",
		TotalSaleLocal: 1030000,
		Items: []models.OrderItem{
			{Title: "Wireless earbuds", Quantity: 2, UnitSaleLocal: 440000},
			{Title: "Phone case", Quantity: 1, UnitSaleLocal: 150000},
		},
	}

	msg := s.OrderMessage(order)
	assert.Contains(t, msg, "Laura")
	assert.Contains(t, msg, "1. Wireless earbuds x2 — $880.000")
	assert.Contains(t, msg, "Total: *$1.030.000*")
}
