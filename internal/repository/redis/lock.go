package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/bazaarhq/checkout/pkg/errors"
)

// releaseScript deletes the lock only if the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CheckoutLocker serializes checkouts per owner with a Redis lock. The TTL
// bounds how long a crashed checkout can block its owner.
type CheckoutLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCheckoutLocker(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CheckoutLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CheckoutLocker{client: client, ttl: ttl, logger: logger}
}

func lockKey(ownerID string) string {
	return "checkout:lock:" + ownerID
}

// Acquire takes the owner's checkout lock. While another checkout holds it,
// Acquire fails with a conflict. The returned release function is safe to
// call after the TTL expired; it never releases a lock a later checkout took.
func (l *CheckoutLocker) Acquire(ctx context.Context, ownerID string) (func(), error) {
	key := lockKey(ownerID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("CHECKOUT_IN_PROGRESS", "another checkout is already in progress")
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release checkout lock", "owner_id", ownerID, "error", err)
		}
	}

	return release, nil
}
