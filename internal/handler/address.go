package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/oakmart/checkout/internal/domain/address"
)

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	book := h.addresses.BookFor(userID(r))
	respondJSON(w, http.StatusOK, book.List())
}

// addAddress validates and inserts a new shipping address. Validation
// failures are reported inline and destroy nothing.
func (h *Handler) addAddress(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var candidate address.Address
	if !decodeBody(w, r, &candidate) {
		return
	}

	added, err := h.addresses.BookFor(uid).Add(candidate)
	if err != nil {
		var verr *address.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "add address")
		return
	}

	// A session started before the first address existed is unblocked by
	// adopting it right away.
	if sess := h.sessions.Get(uid); sess != nil && sess.AddressID == "" {
		sess.AddressID = added.ID
	}

	respondJSON(w, http.StatusCreated, added)
}
