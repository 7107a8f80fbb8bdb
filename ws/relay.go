package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"lab-server/entities"
	"lab-server/logger"
)

const (
	StatusChannel  = "lab:computer-status"
	ScreensChannel = "lab:screens"

	relayPublishTimeout = 2 * time.Second
)

// RedisRelay fans one feed out to the hubs of every server instance sharing
// one redis channel. Forward publishes; Run feeds the local hub.
type RedisRelay struct {
	client  *redis.Client
	local   *Hub
	channel string
	log     zerolog.Logger
}

func NewRedisRelay(client *redis.Client, local *Hub, channel string) *RedisRelay {
	return &RedisRelay{
		client:  client,
		local:   local,
		channel: channel,
		log:     logger.WithComponent("redis-relay").With().Str("channel", channel).Logger(),
	}
}

func (r *RedisRelay) Broadcast(status entities.ComputerStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.Forward(payload)
}

// Forward publishes payload for every instance. When redis is unreachable
// the local observers still get it; the error is returned all the same.
func (r *RedisRelay) Forward(payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.local.BroadcastRaw(payload)
		return err
	}
	return nil
}

func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	r.log.Info().Msg("relaying from redis")
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.local.BroadcastRaw([]byte(msg.Payload))
		}
	}
}
