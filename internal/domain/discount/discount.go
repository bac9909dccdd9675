package discount

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported coupon discount strategies.
type Type string

const (
	// TypePercentage discounts a percentage of the discountable subtotal.
	TypePercentage Type = "PERCENTAGE"
	// TypeFixed discounts a fixed amount, capped at the subtotal.
	TypeFixed Type = "FIXED"
	// TypeFreeShipping discounts the flat shipping fee. The amount is the
	// configured shipping constant, not anything derived from the order.
	TypeFreeShipping Type = "FREE_SHIPPING"
)

// ErrUnsupportedType is returned when the coupon collaborator hands back a
// discount type this build does not know how to compute.
var ErrUnsupportedType = errors.New("unsupported discount type")

// Terms are the authoritative coupon terms returned by the coupon
// collaborator after validation. They are immutable once fetched.
type Terms struct {
	ID      string
	Code    string
	Type    Type
	Percent decimal.Decimal
	Value   decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Apply computes the discount amount for the given terms and discountable
// subtotal. It is a pure function: identical inputs always yield identical
// output. shippingFee is the flat shipping constant used by FREE_SHIPPING.
//
// Post-condition for every type: 0 <= result <= subtotal. A coupon can never
// push the order below the cost of its items.
func Apply(t Terms, subtotal, shippingFee decimal.Decimal) (decimal.Decimal, error) {
	var amount decimal.Decimal
	switch t.Type {
	case TypePercentage:
		amount = subtotal.Mul(t.Percent).Div(hundred).Floor()
	case TypeFixed:
		amount = t.Value
	case TypeFreeShipping:
		amount = shippingFee
	default:
		return decimal.Zero, errors.Wrapf(ErrUnsupportedType, "%q", t.Type)
	}

	amount = decimal.Min(amount, subtotal)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return amount, nil
}
