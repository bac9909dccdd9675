package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/checkout"
)

// Status is the server-side order lifecycle state. Only PENDING matters to
// this service; later states belong to the order collaborator.
type Status string

const (
	StatusPending Status = "PENDING"
)

// Line is a price-snapshotted order line. Both the charged unit price and
// the pre-sale original price are carried so downstream readers can render
// the markdown without consulting the catalog.
type Line struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductImage  string          `json:"productImage"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
}

// Order is the persisted order as this service sees it. The id is assigned
// by the order collaborator and is the single source of truth for every
// downstream step. Monetary and shipping fields are fixed at creation time
// and never recomputed.
//
// Field names and the flattened ShippingAddress format are read verbatim by
// the order history, order detail, and seller views; changing either is a
// breaking change for all three.
type Order struct {
	ID              string                 `json:"id"`
	OrderDate       time.Time              `json:"orderDate"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	Status          Status                 `json:"status"`
	Details         []Line                 `json:"orderDetails"`
	ShippingName    string                 `json:"shippingName"`
	ShippingPhone   string                 `json:"shippingPhone"`
	ShippingAddress string                 `json:"shippingAddress"`
	PaymentMethod   checkout.PaymentMethod `json:"paymentMethod"`
	ShippingFee     decimal.Decimal        `json:"shippingFee"`
	DiscountAmount  decimal.Decimal        `json:"discountAmount"`
	CouponCode      string                 `json:"couponCode"`
	Note            string                 `json:"note,omitempty"`
}

// CreateRequest is the wire shape sent to the order collaborator.
type CreateRequest struct {
	OrderDate       string                 `json:"orderDate"`
	TotalAmount     decimal.Decimal        `json:"totalAmount"`
	ShippingName    string                 `json:"shippingName"`
	ShippingPhone   string                 `json:"shippingPhone"`
	ShippingAddress string                 `json:"shippingAddress"`
	Note            string                 `json:"note"`
	CouponCode      string                 `json:"couponCode"`
	PaymentMethod   checkout.PaymentMethod `json:"paymentMethod"`
	ShippingFee     decimal.Decimal        `json:"shippingFee"`
	DiscountAmount  decimal.Decimal        `json:"discountAmount"`
	Details         []Line                 `json:"orderDetails"`
}
