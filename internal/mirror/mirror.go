// Package mirror is the local recovery cache of placed orders. It exists for
// resilience and history display only; the order collaborator remains the
// source of truth. Entries are keyed by order id, most recent first, and the
// list is capped.
package mirror

import (
	"context"
	"time"

	"github.com/oakmart/checkout/internal/domain/order"
)

// Entry is one mirrored order.
type Entry struct {
	Order   order.Order `json:"order"`
	SavedAt time.Time   `json:"savedAt"`
}

// Mirror stores mirrored orders per user. Writes are prepends, which keeps
// them race-free under rapid repeated submissions.
type Mirror interface {
	// Prepend inserts e at the head of the user's list, evicting the
	// oldest entry beyond the cap.
	Prepend(ctx context.Context, userID string, e Entry) error
	// Recent returns up to limit entries, most recent first.
	Recent(ctx context.Context, userID string, limit int) ([]Entry, error)
}
