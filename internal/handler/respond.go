package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/oakmart/checkout/internal/gateway"
	"github.com/oakmart/checkout/internal/notify"
)

// errorResponse is the uniform error envelope.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondRemoteError maps a collaborator failure onto the error taxonomy and
// routes the user-facing message through the debounced notification queue.
// Remote rejections keep the server's message verbatim (422); connectivity
// failures get the generic unreachable message (502). The session, when one
// exists, stays live for retry in both cases.
func (h *Handler) respondRemoteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, gateway.ErrUnreachable) {
		status = http.StatusBadGateway
	}
	message := gateway.UserMessage(err)

	zctx.From(r.Context()).Warn("collaborator call failed",
		zap.Int("status", status),
		zap.Error(err),
	)
	h.notices.Push(userID(r), notify.LevelError, message)
	respondError(w, status, message)
}

// decodeBody decodes a JSON request body into dst, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
