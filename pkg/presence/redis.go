package presence

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisTracker keeps one set of live session ids per user, so presence
// survives a user holding several concurrent connections: the user goes
// offline only when the last session leaves.
type RedisTracker struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisTracker(rdb *redis.Client, log *slog.Logger) *RedisTracker {
	return &RedisTracker{rdb: rdb, log: log}
}

func key(userID string) string {
	return "chat:online:" + userID
}

func (t *RedisTracker) Online(ctx context.Context, userID, sessionID string) error {
	return t.rdb.SAdd(ctx, key(userID), sessionID).Err()
}

func (t *RedisTracker) Offline(ctx context.Context, userID, sessionID string) error {
	return t.rdb.SRem(ctx, key(userID), sessionID).Err()
}

func (t *RedisTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := t.rdb.SCard(ctx, key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
