package discount

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrUnknownCode is returned when the offline codebook proves a code cannot
// exist, before any network call is made.
var ErrUnknownCode = errors.New("invalid coupon code")

// Validator asks the coupon collaborator whether a code may be used by this
// user at this subtotal. Policy (time boxing, per-user limits, minimum order)
// lives server-side; on rejection the returned error carries the server's
// reason verbatim.
type Validator interface {
	ValidateCoupon(ctx context.Context, code, userID string, subtotal decimal.Decimal) (Terms, error)
}

// Applied is the outcome of a successful coupon application.
type Applied struct {
	Terms  Terms
	Amount decimal.Decimal
}

// Engine validates a coupon code remotely and executes the discount
// arithmetic on the returned terms. It holds no per-request state; applying
// the same code to the same subtotal twice yields identical output.
type Engine struct {
	validator   Validator
	codebook    *Codebook
	shippingFee decimal.Decimal
}

// NewEngine creates an Engine. codebook may be nil, in which case every code
// goes straight to the remote validator.
func NewEngine(validator Validator, codebook *Codebook, shippingFee decimal.Decimal) *Engine {
	return &Engine{
		validator:   validator,
		codebook:    codebook,
		shippingFee: shippingFee,
	}
}

// Apply validates code for the user and computes the discount on subtotal.
//
// The codebook check is a definite-negative filter: a miss proves the code
// was never issued, so the collaborator round trip is skipped. A hit may be
// a false positive and carries no authority; the collaborator still decides.
func (e *Engine) Apply(ctx context.Context, code, userID string, subtotal decimal.Decimal) (Applied, error) {
	if e.codebook != nil && !e.codebook.MightContain(code) {
		return Applied{}, ErrUnknownCode
	}

	terms, err := e.validator.ValidateCoupon(ctx, code, userID, subtotal)
	if err != nil {
		return Applied{}, errors.Wrap(err, "validate coupon")
	}

	amount, err := Apply(terms, subtotal, e.shippingFee)
	if err != nil {
		return Applied{}, err
	}

	return Applied{Terms: terms, Amount: amount}, nil
}
