package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/address"
	"github.com/oakmart/checkout/internal/domain/checkout"
)

// ErrMissingOrderID is returned when the collaborator accepts the request
// but answers without an order id. Nothing downstream can run without one,
// so this aborts the checkout like any other submission failure.
var ErrMissingOrderID = errors.New("order response carries no id")

// Receipt is what the order collaborator hands back on creation.
type Receipt struct {
	ID     string
	Status Status
}

// Creator persists an order server-side on behalf of userID. This is the
// only way an Order comes into existence; the id may never be synthesized
// client-side.
type Creator interface {
	CreateOrder(ctx context.Context, userID string, req CreateRequest) (Receipt, error)
}

// Submitter turns a checkout session into a persisted Order. Submission is
// strictly sequenced before payment dispatch: on any failure here the
// session is left untouched for retry and no payment branch runs.
type Submitter struct {
	creator     Creator
	shippingFee decimal.Decimal
	now         func() time.Time
}

// NewSubmitter creates a Submitter. shippingFee is the flat fee added to
// every order.
func NewSubmitter(creator Creator, shippingFee decimal.Decimal) *Submitter {
	return &Submitter{
		creator:     creator,
		shippingFee: shippingFee,
		now:         time.Now,
	}
}

// Submit builds the creation request from the session and shipping address,
// sends it, and returns the resulting Order entity. The returned Order's
// monetary fields are final; later steps only read them.
func (s *Submitter) Submit(ctx context.Context, sess *checkout.Session, addr address.Address) (*Order, error) {
	if err := sess.CanPlace(); err != nil {
		return nil, err
	}

	placedAt := s.now().UTC()
	req := CreateRequest{
		OrderDate:       placedAt.Format(time.RFC3339),
		TotalAmount:     sess.Total(s.shippingFee),
		ShippingName:    addr.RecipientName,
		ShippingPhone:   addr.Phone,
		ShippingAddress: addr.Flatten(),
		Note:            sess.Note,
		CouponCode:      sess.CouponCode(),
		PaymentMethod:   sess.PaymentMethod,
		ShippingFee:     s.shippingFee,
		DiscountAmount:  sess.DiscountAmount,
		Details:         buildLines(sess.Items),
	}

	receipt, err := s.creator.CreateOrder(ctx, sess.UserID, req)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	if receipt.ID == "" {
		return nil, ErrMissingOrderID
	}

	status := receipt.Status
	if status == "" {
		status = StatusPending
	}

	return &Order{
		ID:              receipt.ID,
		OrderDate:       placedAt,
		TotalAmount:     req.TotalAmount,
		Status:          status,
		Details:         req.Details,
		ShippingName:    req.ShippingName,
		ShippingPhone:   req.ShippingPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ShippingFee:     req.ShippingFee,
		DiscountAmount:  req.DiscountAmount,
		CouponCode:      req.CouponCode,
		Note:            req.Note,
	}, nil
}

// buildLines snapshots session items into order lines. An item without a
// recorded original price is sold at list price.
func buildLines(items []checkout.LineItem) []Line {
	lines := make([]Line, len(items))
	for i, li := range items {
		original := li.OriginalPrice
		if original.IsZero() {
			original = li.UnitPrice
		}
		lines[i] = Line{
			ProductID:     li.ProductID,
			ProductName:   li.ProductName,
			ProductImage:  li.ProductImage,
			Quantity:      li.Quantity,
			UnitPrice:     li.UnitPrice,
			OriginalPrice: original,
		}
	}
	return lines
}
