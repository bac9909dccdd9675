package checkout

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/discount"
)

// PaymentMethod enumerates the supported fulfillment paths.
type PaymentMethod string

const (
	// MethodCOD is cash on delivery: no payment network calls at all.
	MethodCOD PaymentMethod = "COD"
	// MethodVNPay redirects the client to an externally issued payment URL.
	MethodVNPay PaymentMethod = "VNPAY"
	// MethodMomo is the wallet path; settlement is simulated in this build.
	MethodMomo PaymentMethod = "MOMO"
)

// ErrUnknownPaymentMethod is returned for any method outside COD/VNPAY/MOMO.
var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// ParsePaymentMethod validates a raw payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case MethodCOD, MethodVNPay, MethodMomo:
		return PaymentMethod(s), nil
	default:
		return "", ErrUnknownPaymentMethod
	}
}

// Preconditions checked by CanPlace.
var (
	ErrNoItems   = errors.New("nothing to pay")
	ErrNoAddress = errors.New("shipping address required")
)

// Session is the ephemeral aggregate of one checkout attempt. There is at
// most one live Session per user; it is destroyed on successful order
// submission or explicit abandonment and kept alive across recoverable
// failures so the user can retry.
//
// A Session is owned by a single request flow (see Store) and carries no
// internal locking.
type Session struct {
	ID             string
	UserID         string
	Mode           Mode
	Items          []LineItem
	AddressID      string
	PaymentMethod  PaymentMethod
	Coupon         *discount.Terms
	DiscountAmount decimal.Decimal
	Note           string
	CreatedAt      time.Time
}

// NewSession creates a live session for the resolved items. The payment
// method defaults to COD until the user picks another one.
func NewSession(userID string, mode Mode, items []LineItem, addressID string) *Session {
	return &Session{
		ID:             uuid.New().String(),
		UserID:         userID,
		Mode:           mode,
		Items:          items,
		AddressID:      addressID,
		PaymentMethod:  MethodCOD,
		DiscountAmount: decimal.Zero,
		CreatedAt:      time.Now().UTC(),
	}
}

// Subtotal is the discountable base: sum of unit price times quantity.
func (s *Session) Subtotal() decimal.Decimal {
	return Subtotal(s.Items)
}

// Total computes subtotal + shipping fee - discount. The discount engine
// caps the discount at the subtotal, so the result never goes negative.
func (s *Session) Total(shippingFee decimal.Decimal) decimal.Decimal {
	total := s.Subtotal().Add(shippingFee).Sub(s.DiscountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total
}

// SetItems replaces the item list. Any applied coupon is invalidated: its
// terms were validated against the old subtotal.
func (s *Session) SetItems(items []LineItem) {
	s.Items = items
	s.ClearCoupon()
}

// ApplyCoupon records the validated coupon terms and the computed discount.
func (s *Session) ApplyCoupon(t discount.Terms, amount decimal.Decimal) {
	s.Coupon = &t
	s.DiscountAmount = amount
}

// ClearCoupon removes the applied coupon and zeroes the discount.
func (s *Session) ClearCoupon() {
	s.Coupon = nil
	s.DiscountAmount = decimal.Zero
}

// CouponCode returns the applied coupon code, or "" when none is applied.
func (s *Session) CouponCode() string {
	if s.Coupon == nil {
		return ""
	}
	return s.Coupon.Code
}

// CanPlace reports whether the session may proceed to order submission.
// An empty item list is a valid blocked state, not a data error.
func (s *Session) CanPlace() error {
	if len(s.Items) == 0 {
		return ErrNoItems
	}
	if s.AddressID == "" {
		return ErrNoAddress
	}
	return nil
}
