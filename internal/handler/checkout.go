package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/oakmart/checkout/internal/domain/checkout"
	"github.com/oakmart/checkout/internal/domain/discount"
	"github.com/oakmart/checkout/internal/domain/order"
	"github.com/oakmart/checkout/internal/domain/payment"
	"github.com/oakmart/checkout/internal/gateway"
	"github.com/oakmart/checkout/internal/notify"
)

type startCheckoutRequest struct {
	Mode      string              `json:"mode"`
	ProductID string              `json:"productId,omitempty"`
	Quantity  int                 `json:"quantity,omitempty"`
	Items     []checkout.LineItem `json:"items,omitempty"`
}

// sessionView is the session as the client sees it, with the derived
// amounts the checkout screen renders.
type sessionView struct {
	ID             string                 `json:"id"`
	Mode           checkout.Mode          `json:"mode"`
	Items          []checkout.LineItem    `json:"items"`
	ItemCount      string                 `json:"itemCount"`
	AddressID      string                 `json:"addressId,omitempty"`
	PaymentMethod  checkout.PaymentMethod `json:"paymentMethod"`
	CouponCode     string                 `json:"couponCode,omitempty"`
	Subtotal       decimal.Decimal        `json:"subtotal"`
	ShippingFee    decimal.Decimal        `json:"shippingFee"`
	DiscountAmount decimal.Decimal        `json:"discountAmount"`
	Total          decimal.Decimal        `json:"total"`
	Note           string                 `json:"note,omitempty"`
}

func (h *Handler) viewOf(sess *checkout.Session) sessionView {
	return sessionView{
		ID:             sess.ID,
		Mode:           sess.Mode,
		Items:          sess.Items,
		ItemCount:      itemCountLabel(sess.Items),
		AddressID:      sess.AddressID,
		PaymentMethod:  sess.PaymentMethod,
		CouponCode:     sess.CouponCode(),
		Subtotal:       sess.Subtotal(),
		ShippingFee:    h.shippingFee,
		DiscountAmount: sess.DiscountAmount,
		Total:          sess.Total(h.shippingFee),
	}
}

// itemCountLabel renders the human-readable item count for the view.
func itemCountLabel(items []checkout.LineItem) string {
	total := 0
	for _, li := range items {
		total += li.Quantity
	}
	switch total {
	case 0:
		return "no items"
	case 1:
		return "1 item"
	default:
		return fmt.Sprintf("%d items", total)
	}
}

// startCheckout resolves the item source and installs a fresh session,
// replacing any previous one. An empty resolved list is a valid blocked
// state; placement refuses it later.
func (h *Handler) startCheckout(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req startCheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var src checkout.Source
	switch checkout.Mode(req.Mode) {
	case checkout.ModeCart:
		src = checkout.CartSource()
	case checkout.ModeBuyNow:
		src = checkout.BuyNowSource(req.ProductID, req.Quantity)
	case checkout.ModeSelection:
		src = checkout.SelectionSource(req.Items)
	default:
		respondError(w, http.StatusBadRequest, "unknown checkout mode")
		return
	}

	items, err := h.aggregator.Resolve(r.Context(), uid, src)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidQuantity) {
			respondError(w, http.StatusBadRequest, checkout.ErrInvalidQuantity.Error())
			return
		}
		h.respondRemoteError(w, r, err)
		return
	}

	addressID := ""
	if addr, err := h.addresses.BookFor(uid).Default(); err == nil {
		addressID = addr.ID
	}

	sess := checkout.NewSession(uid, src.Mode, items, addressID)
	h.sessions.Put(sess)
	respondJSON(w, http.StatusCreated, h.viewOf(sess))
}

func (h *Handler) getCheckout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(userID(r))
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}
	respondJSON(w, http.StatusOK, h.viewOf(sess))
}

// abandonCheckout discards the session. Any order already created stays
// PENDING server-side; abandonment is not a rollback trigger.
func (h *Handler) abandonCheckout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Delete(userID(r))
	w.WriteHeader(http.StatusNoContent)
}

type couponRequest struct {
	Code string `json:"code"`
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	sess := h.sessions.Get(uid)
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}

	var req couponRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" {
		respondError(w, http.StatusBadRequest, "coupon code required")
		return
	}

	applied, err := h.engine.Apply(r.Context(), req.Code, uid, sess.Subtotal())
	if err != nil {
		switch {
		case errors.Is(err, discount.ErrUnknownCode):
			respondError(w, http.StatusUnprocessableEntity, discount.ErrUnknownCode.Error())
		case errors.Is(err, discount.ErrUnsupportedType):
			respondError(w, http.StatusUnprocessableEntity, "coupon cannot be applied")
		default:
			h.respondRemoteError(w, r, err)
		}
		return
	}

	sess.ApplyCoupon(applied.Terms, applied.Amount)
	respondJSON(w, http.StatusOK, h.viewOf(sess))
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(userID(r))
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}
	sess.ClearCoupon()
	respondJSON(w, http.StatusOK, h.viewOf(sess))
}

type selectAddressRequest struct {
	AddressID string `json:"addressId"`
}

// selectAddress points the session at one of the user's addresses. An
// unknown id is a silent no-op, mirroring the address book's own Select.
func (h *Handler) selectAddress(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	sess := h.sessions.Get(uid)
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}

	var req selectAddressRequest
	if !decodeBody(w, r, &req) {
		return
	}

	book := h.addresses.BookFor(uid)
	if _, ok := book.Get(req.AddressID); ok {
		book.Select(req.AddressID)
		sess.AddressID = req.AddressID
	}
	respondJSON(w, http.StatusOK, h.viewOf(sess))
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

func (h *Handler) selectPaymentMethod(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(userID(r))
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}

	var req paymentMethodRequest
	if !decodeBody(w, r, &req) {
		return
	}
	method, err := checkout.ParsePaymentMethod(req.Method)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess.PaymentMethod = method
	respondJSON(w, http.StatusOK, h.viewOf(sess))
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) setNote(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(userID(r))
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess.Note = req.Note
	respondJSON(w, http.StatusOK, h.viewOf(sess))
}

type paymentView struct {
	Status      payment.State `json:"status"`
	RedirectURL string        `json:"redirectUrl,omitempty"`
	Message     string        `json:"message,omitempty"`
}

type placeResponse struct {
	Order   *order.Order `json:"order"`
	Payment paymentView  `json:"payment"`
}

// placeOrder runs submission then payment dispatch, strictly in that order.
// Submission failure keeps the session live with every selection intact; a
// payment failure after submission does not retract the order.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	sess := h.sessions.Get(uid)
	if sess == nil {
		respondError(w, http.StatusNotFound, "no live checkout session")
		return
	}

	if err := sess.CanPlace(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	addr, ok := h.addresses.BookFor(uid).Get(sess.AddressID)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, checkout.ErrNoAddress.Error())
		return
	}

	ord, err := h.submitter.Submit(r.Context(), sess, addr)
	if err != nil {
		if errors.Is(err, order.ErrMissingOrderID) {
			message := order.ErrMissingOrderID.Error()
			h.notices.Push(uid, notify.LevelError, message)
			respondError(w, http.StatusBadGateway, message)
			return
		}
		h.respondRemoteError(w, r, err)
		return
	}

	// The order exists; the session has served its purpose even if the
	// payment branch fails below.
	h.sessions.Delete(uid)

	outcome, err := h.dispatcher.Dispatch(r.Context(), uid, ord)
	if err != nil {
		outcome = payment.Outcome{State: payment.StateFailed, Err: err}
	}

	// The dispatcher hands back the raw error; translation into the
	// user-facing message (remote reason verbatim, generic for
	// connectivity) happens here.
	var failMessage string
	if outcome.State == payment.StateFailed && outcome.Err != nil {
		failMessage = gateway.UserMessage(outcome.Err)
		h.notices.Push(uid, notify.LevelError, "payment failed, order is placed: "+failMessage)
	}

	respondJSON(w, http.StatusOK, placeResponse{
		Order: ord,
		Payment: paymentView{
			Status:      outcome.State,
			RedirectURL: outcome.RedirectURL,
			Message:     failMessage,
		},
	})
}
