package payment

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakmart/checkout/internal/domain/checkout"
	"github.com/oakmart/checkout/internal/domain/order"
	"github.com/oakmart/checkout/internal/mirror"
)

// --- Mock implementations ---

type mockURLRequester struct {
	url     string
	err     error
	calls   int
	gotUser string
}

func (m *mockURLRequester) PaymentURL(_ context.Context, userID, _ string, _ decimal.Decimal, _ string, _ checkout.PaymentMethod) (string, error) {
	m.calls++
	m.gotUser = userID
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

// --- Helpers ---

func testOrder(method checkout.PaymentMethod) *order.Order {
	return &order.Order{
		ID:            "ord-1",
		OrderDate:     time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		TotalAmount:   decimal.NewFromInt(795_000),
		Status:        order.StatusPending,
		PaymentMethod: method,
	}
}

func newDispatcher(urls URLRequester, m mirror.Mirror) *Dispatcher {
	return NewDispatcher(urls, m, time.Millisecond)
}

// --- Tests ---

func TestDispatch_CODMirrorsAndSucceeds(t *testing.T) {
	m := mirror.NewMemory(10)
	d := newDispatcher(&mockURLRequester{}, m)

	out, err := d.Dispatch(context.Background(), "u1", testOrder(checkout.MethodCOD))
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, out.State)
	assert.Empty(t, out.RedirectURL)

	entries, err := m.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ord-1", entries[0].Order.ID)
}

func TestDispatch_GatewaySuccessMirrorsBeforeRedirect(t *testing.T) {
	m := mirror.NewMemory(10)
	urls := &mockURLRequester{url: "https://pay.example.com/ord-1"}
	d := newDispatcher(urls, m)

	out, err := d.Dispatch(context.Background(), "u1", testOrder(checkout.MethodVNPay))
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, out.State)
	assert.Equal(t, "https://pay.example.com/ord-1", out.RedirectURL)
	assert.Equal(t, 1, urls.calls)
	assert.Equal(t, "u1", urls.gotUser)

	entries, err := m.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDispatch_GatewayFailureCarriesRawError(t *testing.T) {
	m := mirror.NewMemory(10)
	rejection := errors.New("amount exceeds gateway limit")
	d := newDispatcher(&mockURLRequester{err: rejection}, m)

	out, err := d.Dispatch(context.Background(), "u1", testOrder(checkout.MethodVNPay))
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
	// The collaborator's error is handed up untouched; the HTTP layer owns
	// the user-facing wording.
	assert.ErrorIs(t, out.Err, rejection)

	// A failed gateway dispatch leaves no mirror entry; the order is still
	// PENDING server-side and retryable.
	entries, err := m.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDispatch_WalletSettlesAfterDelay(t *testing.T) {
	m := mirror.NewMemory(10)
	d := newDispatcher(&mockURLRequester{}, m)

	out, err := d.Dispatch(context.Background(), "u1", testOrder(checkout.MethodMomo))
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, out.State)

	entries, err := m.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDispatch_WalletHonorsContextCancellation(t *testing.T) {
	d := NewDispatcher(&mockURLRequester{}, mirror.NewMemory(10), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := d.Dispatch(ctx, "u1", testOrder(checkout.MethodMomo))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateSimulatingWallet, out.State)
}

func TestDispatch_UnknownMethod(t *testing.T) {
	d := newDispatcher(&mockURLRequester{}, mirror.NewMemory(10))

	out, err := d.Dispatch(context.Background(), "u1", testOrder("PAYPAL"))
	require.ErrorIs(t, err, checkout.ErrUnknownPaymentMethod)
	assert.Equal(t, StateFailed, out.State)
}
