package room

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// roomChannelPattern matches every canonical room key on the redis side.
const roomChannelPattern = "chat_*"

// RedisBridge extends a local Registry across gateway instances. Publish
// goes to redis; a subscriber loop feeds everything published on any
// instance (this one included) back into the local registry. Join and Leave
// stay purely local.
type RedisBridge struct {
	local *Registry
	rdb   *redis.Client
	log   *slog.Logger
}

// NewRedisBridge starts the relay loop, which runs until ctx is cancelled.
func NewRedisBridge(ctx context.Context, local *Registry, rdb *redis.Client, log *slog.Logger) *RedisBridge {
	b := &RedisBridge{local: local, rdb: rdb, log: log}

	pubsub := rdb.PSubscribe(ctx, roomChannelPattern)
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				b.local.Publish(msg.Channel, []byte(msg.Payload))
			}
		}
	}()

	return b
}

func (b *RedisBridge) Join(roomKey string, sub Subscriber) {
	b.local.Join(roomKey, sub)
}

func (b *RedisBridge) Leave(roomKey string, sub Subscriber) {
	b.local.Leave(roomKey, sub)
}

func (b *RedisBridge) Publish(roomKey string, payload []byte) {
	if err := b.rdb.Publish(context.Background(), roomKey, payload).Err(); err != nil {
		// Local delivery keeps working even when the bridge is down.
		b.log.Error("redis publish failed, delivering locally only", "room", roomKey, "error", err)
		b.local.Publish(roomKey, payload)
	}
}
