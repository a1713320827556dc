package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/example/listado/internal/models"
)

// WhatsAppService builds shareable wa.me deep links with pre-filled text for
// catalog lists and order summaries. It performs no network calls: the link
// is opened by the operator's browser or phone.
type WhatsAppService struct {
	businessNumber string
}

// NewWhatsAppService creates a WhatsAppService. businessNumber may be empty,
// in which case links open a recipient chooser instead of a fixed chat.
func NewWhatsAppService(businessNumber string) *WhatsAppService {
	return &WhatsAppService{businessNumber: strings.TrimLeft(businessNumber, "+")}
}

// FormatPrice formats a local-currency amount with thousand separators.
func FormatPrice(amount float64) string {
	str := fmt.Sprintf("%d", int64(amount))

	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(".")
		}
		result.WriteRune(digit)
	}

	formatted := "$" + result.String()
	if negative {
		return "-" + formatted
	}
	return formatted
}

// ShareLink wraps text into a wa.me deep link.
func (s *WhatsAppService) ShareLink(text string) string {
	base := "https://wa.me/"
	if s.businessNumber != "" {
		base += s.businessNumber
	}
	return base + "?text=" + url.QueryEscape(text)
}

// ListMessage builds the share text for a published list: title, offer date
// and one line per published product with the final price, plus the full
// price struck through when the product carries a discount.
func (s *WhatsAppService) ListMessage(list *models.OfferList, products []models.Product, catalogURL string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*%s*\n", list.Title))
	if list.Description != "" {
		b.WriteString(list.Description + "\n")
	}
	if list.OfferDate != nil {
		b.WriteString(list.OfferDate.Format("02/01/2006") + "\n")
	}
	b.WriteString("\n")

	for _, p := range products {
		if p.Status != models.ProductStatusPublished || p.FinalPriceLocal == nil {
			continue
		}
		if p.DiscountPercentage > 0 && p.FullPriceLocal != nil {
			b.WriteString(fmt.Sprintf("• %s: ~%s~ *%s*\n",
				p.Title, FormatPrice(*p.FullPriceLocal), FormatPrice(*p.FinalPriceLocal)))
		} else {
			b.WriteString(fmt.Sprintf("• %s: *%s*\n", p.Title, FormatPrice(*p.FinalPriceLocal)))
		}
	}

	if catalogURL != "" {
		b.WriteString("\nCatálogo completo: " + catalogURL)
	}

	return strings.TrimSpace(b.String())
}

// OrderMessage builds the share text summarizing an order for the customer.
func (s *WhatsAppService) OrderMessage(order *models.Order) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Hola %s, resumen de tu pedido:\n\n", order.CustomerName))
	for i, item := range order.Items {
		b.WriteString(fmt.Sprintf("%d. %s x%d — %s\n",
			i+1, item.Title, item.Quantity, FormatPrice(item.UnitSaleLocal*float64(item.Quantity))))
	}
	b.WriteString(fmt.Sprintf("\nTotal: *%s*", FormatPrice(order.TotalSaleLocal)))

	return b.String()
}
