// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/concilia/backend/internal/application/adapter"
)

const lockKeyPrefix = "reconciliation:lock:"

// releaseScript deletes the lock only when it still holds our token, so an
// expired lock reacquired by another operation is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisTransactionLock implements adapter.TransactionLock on top of redis
// SET NX with a TTL.
type redisTransactionLock struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisTransactionLock creates a redis-backed transaction lock.
func NewRedisTransactionLock(client *redis.Client, logger *slog.Logger) adapter.TransactionLock {
	return &redisTransactionLock{
		client: client,
		logger: logger,
	}
}

// Acquire takes the lock for the bank transaction, returning a release
// function on success. ok is false when another operation holds the lock.
func (l *redisTransactionLock) Acquire(ctx context.Context, bankTransactionID uuid.UUID, ttl time.Duration) (func(), bool, error) {
	key := lockKeyPrefix + bankTransactionID.String()
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire transaction lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// Release runs during cleanup paths too, so it does not inherit a
		// possibly cancelled request context.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release transaction lock",
				slog.String("bank_transaction_id", bankTransactionID.String()),
				slog.String("error", err.Error()))
		}
	}

	return release, true, nil
}
