package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const busChannel = "chat.broadcast"

type BusMessage struct {
	Instance string          `json:"instance"`
	Group    string          `json:"group"`
	Payload  json.RawMessage `json:"payload"`
}

// Bus relays broadcast payloads between instances over redis pub/sub. Local
// delivery stays in-process; remote instances replay the payload into their
// own hubs, skipping messages they published themselves.
type Bus struct {
	rdb      *redis.Client
	instance string
}

// NewBus connects to redis and verifies connectivity.
func NewBus(ctx context.Context, addr string, db int) (*Bus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Bus{rdb: rdb, instance: uuid.NewString()}, nil
}

func (b *Bus) Publish(ctx context.Context, group string, payload []byte) error {
	raw, err := json.Marshal(BusMessage{Instance: b.instance, Group: group, Payload: payload})
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, busChannel, raw).Err()
}

// Run consumes the relay channel until ctx is done, fanning each remote
// payload out through the local hub.
func (b *Bus) Run(ctx context.Context, hub *Hub) {
	sub := b.rdb.Subscribe(ctx, busChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				slog.Warn("bus: bad relay payload", "err", err)
				continue
			}
			if m.Instance == b.instance {
				continue
			}
			hub.Send(m.Group, m.Payload)
		case <-ctx.Done():
			return
		}
	}
}

func (b *Bus) Close() error {
	return b.rdb.Close()
}
