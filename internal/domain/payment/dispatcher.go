// Package payment turns a confirmed order into a finalized or failed payment
// outcome. It is a small state machine entered only with a server-assigned
// order id; it never creates or retracts orders.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/oakmart/checkout/internal/domain/checkout"
	"github.com/oakmart/checkout/internal/domain/order"
	"github.com/oakmart/checkout/internal/mirror"
)

// State is a dispatcher state. Transitions:
//
//	ORDER_CONFIRMED -> DISPATCHING_COD        -> SUCCEEDED
//	ORDER_CONFIRMED -> REQUESTING_GATEWAY_URL -> SUCCEEDED | FAILED
//	ORDER_CONFIRMED -> SIMULATING_WALLET      -> SUCCEEDED
//
// Only the gateway branch can fail: COD and the simulated wallet have no
// external rejection point once the order exists.
type State string

const (
	StateOrderConfirmed       State = "ORDER_CONFIRMED"
	StateDispatchingCOD       State = "DISPATCHING_COD"
	StateRequestingGatewayURL State = "REQUESTING_GATEWAY_URL"
	StateSimulatingWallet     State = "SIMULATING_WALLET"
	StateSucceeded            State = "SUCCEEDED"
	StateFailed               State = "FAILED"
)

// Outcome is the terminal result of a dispatch.
type Outcome struct {
	State State
	// RedirectURL is set on the gateway path: the client must perform a
	// full-page navigation to it. The dispatcher never observes what
	// happens there; completion is reported out-of-band.
	RedirectURL string
	// Err carries the raw failure on StateFailed. Translating it into a
	// user-facing message is the HTTP layer's job; this package never
	// rewrites collaborator errors.
	Err error
}

// URLRequester obtains an externally issued payment URL for an order on
// behalf of userID.
type URLRequester interface {
	PaymentURL(ctx context.Context, userID, orderID string, amount decimal.Decimal, description string, method checkout.PaymentMethod) (string, error)
}

// Dispatcher executes the payment branch for a confirmed order and persists
// the local recovery mirror on every path that keeps the order.
type Dispatcher struct {
	urls         URLRequester
	mirror       mirror.Mirror
	walletSettle time.Duration
	now          func() time.Time
}

// NewDispatcher creates a Dispatcher. walletSettle is the simulated wallet
// confirmation delay.
func NewDispatcher(urls URLRequester, m mirror.Mirror, walletSettle time.Duration) *Dispatcher {
	return &Dispatcher{
		urls:         urls,
		mirror:       m,
		walletSettle: walletSettle,
		now:          time.Now,
	}
}

// Dispatch runs the branch selected by ord.PaymentMethod. ord must carry a
// server-assigned id; price and discount fields are read, never recomputed.
// userID keys the recovery mirror.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, ord *order.Order) (Outcome, error) {
	switch ord.PaymentMethod {
	case checkout.MethodCOD:
		return d.dispatchCOD(ctx, userID, ord), nil
	case checkout.MethodVNPay:
		return d.dispatchGateway(ctx, userID, ord), nil
	case checkout.MethodMomo:
		return d.dispatchWallet(ctx, userID, ord)
	default:
		return Outcome{State: StateFailed}, checkout.ErrUnknownPaymentMethod
	}
}

// dispatchCOD finalizes locally: mirror the order, done. Payment itself is
// settled at delivery.
func (d *Dispatcher) dispatchCOD(ctx context.Context, userID string, ord *order.Order) Outcome {
	d.mirrorOrder(ctx, userID, ord)
	return Outcome{State: StateSucceeded}
}

// dispatchGateway asks the payment collaborator for a redirect URL. The
// mirror is written before the URL is handed out: once the client navigates
// away this process never hears back. On failure the order stays valid and
// PENDING; the user may retry against the same id.
func (d *Dispatcher) dispatchGateway(ctx context.Context, userID string, ord *order.Order) Outcome {
	description := fmt.Sprintf("payment for order %s", ord.ID)
	url, err := d.urls.PaymentURL(ctx, userID, ord.ID, ord.TotalAmount, description, ord.PaymentMethod)
	if err != nil {
		zctx.From(ctx).Warn("payment URL request failed",
			zap.String("order_id", ord.ID),
			zap.Error(err),
		)
		return Outcome{State: StateFailed, Err: err}
	}

	d.mirrorOrder(ctx, userID, ord)
	return Outcome{State: StateSucceeded, RedirectURL: url}
}

// dispatchWallet is the simulated wallet branch: mirror, wait the settle
// delay, succeed unconditionally. There is no real confirmation call in this
// build; a production deployment must replace this with the wallet's
// confirmation protocol before trusting the outcome.
func (d *Dispatcher) dispatchWallet(ctx context.Context, userID string, ord *order.Order) (Outcome, error) {
	d.mirrorOrder(ctx, userID, ord)

	timer := time.NewTimer(d.walletSettle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return Outcome{State: StateSimulatingWallet}, ctx.Err()
	case <-timer.C:
	}
	return Outcome{State: StateSucceeded}, nil
}

// mirrorOrder writes the recovery entry. The mirror is best-effort by
// contract, so a failed write is logged and swallowed.
func (d *Dispatcher) mirrorOrder(ctx context.Context, userID string, ord *order.Order) {
	entry := mirror.Entry{Order: *ord, SavedAt: d.now().UTC()}
	if err := d.mirror.Prepend(ctx, userID, entry); err != nil {
		zctx.From(ctx).Warn("mirror write failed",
			zap.String("order_id", ord.ID),
			zap.Error(err),
		)
	}
}
