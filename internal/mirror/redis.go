package mirror

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// Redis is a Mirror backed by a Redis list per user, so the recovery cache
// survives server restarts. LPUSH + LTRIM gives the capped most-recent-first
// semantics directly.
type Redis struct {
	client *redis.Client
	cap    int64
}

var _ Mirror = (*Redis)(nil)

// NewRedis creates a Redis-backed mirror. A non-positive cap falls back
// to 50.
func NewRedis(client *redis.Client, cap int) *Redis {
	if cap <= 0 {
		cap = 50
	}
	return &Redis{client: client, cap: int64(cap)}
}

func key(userID string) string {
	return "checkout:mirror:" + userID
}

// Prepend pushes the entry onto the head of the user's list and trims it to
// the cap.
func (r *Redis) Prepend(ctx context.Context, userID string, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal mirror entry")
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key(userID), raw)
	pipe.LTrim(ctx, key(userID), 0, r.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "push mirror entry")
	}
	return nil
}

// Recent reads up to limit entries from the head of the user's list.
func (r *Redis) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = int(r.cap)
	}
	raws, err := r.client.LRange(ctx, key(userID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "read mirror")
	}

	entries := make([]Entry, 0, len(raws))
	for _, raw := range raws {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			// A corrupt entry is skipped rather than failing the
			// whole read; the mirror is best-effort by contract.
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
