package checkout

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product plus quantity and a price snapshot taken when the
// item entered the checkout attempt. It is never persisted on its own; it is
// embedded in the order request at submission time.
type LineItem struct {
	ProductID      string          `json:"productId"`
	ProductName    string          `json:"productName"`
	ProductImage   string          `json:"productImage"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	OriginalPrice  decimal.Decimal `json:"originalPrice,omitempty"`
	DiscountAmount decimal.Decimal `json:"discountAmount,omitempty"`
}

// LineTotal returns unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Subtotal sums unit price times quantity across all items. This is the
// discountable base the coupon engine operates on.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.LineTotal())
	}
	return sum
}
