// Package handler is the HTTP surface of the checkout service. It maps the
// REST routes onto the domain components and translates domain errors into
// the response taxonomy: validation inline, remote rejections verbatim,
// connectivity failures generic.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/address"
	"github.com/oakmart/checkout/internal/domain/checkout"
	"github.com/oakmart/checkout/internal/domain/discount"
	"github.com/oakmart/checkout/internal/domain/order"
	"github.com/oakmart/checkout/internal/domain/payment"
	"github.com/oakmart/checkout/internal/mirror"
	"github.com/oakmart/checkout/internal/notify"
)

// Handler wires the checkout pipeline behind the REST routes.
type Handler struct {
	aggregator  *checkout.Aggregator
	sessions    *checkout.Store
	addresses   *address.Registry
	engine      *discount.Engine
	submitter   *order.Submitter
	dispatcher  *payment.Dispatcher
	mirror      mirror.Mirror
	notices     *notify.Queue
	shippingFee decimal.Decimal
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	aggregator *checkout.Aggregator,
	sessions *checkout.Store,
	addresses *address.Registry,
	engine *discount.Engine,
	submitter *order.Submitter,
	dispatcher *payment.Dispatcher,
	m mirror.Mirror,
	notices *notify.Queue,
	shippingFee decimal.Decimal,
) *Handler {
	return &Handler{
		aggregator:  aggregator,
		sessions:    sessions,
		addresses:   addresses,
		engine:      engine,
		submitter:   submitter,
		dispatcher:  dispatcher,
		mirror:      m,
		notices:     notices,
		shippingFee: shippingFee,
	}
}

// Routes returns the chi router for the /api surface.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requireUser)

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/", h.startCheckout)
		r.Get("/", h.getCheckout)
		r.Delete("/", h.abandonCheckout)
		r.Post("/coupon", h.applyCoupon)
		r.Delete("/coupon", h.removeCoupon)
		r.Put("/address", h.selectAddress)
		r.Put("/payment-method", h.selectPaymentMethod)
		r.Put("/note", h.setNote)
		r.Post("/place", h.placeOrder)
	})

	r.Get("/addresses", h.listAddresses)
	r.Post("/addresses", h.addAddress)
	r.Get("/orders/recent", h.recentOrders)
	r.Get("/notifications", h.drainNotifications)

	return r
}

// userIDKey is the context key for the authenticated user id.
type userIDKey struct{}

// requireUser rejects requests without an X-User-ID header. Verifying the
// token behind that identity is the auth collaborator's job upstream.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "missing user identity")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userID extracts the authenticated user id installed by requireUser.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey{}).(string)
	return id
}
