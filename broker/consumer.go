package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"lab-server/logger"
	"lab-server/metrics"
)

// Handler processes one payload. A returned error means the message is
// dropped; it is logged and acknowledged, never redelivered.
type Handler func(ctx context.Context, data []byte) error

type Consumer struct {
	consumer jetstream.Consumer
	subject  string
	name     string
	log      zerolog.Logger
}

const (
	defaultMaxPullMessages = 10
	defaultPullExpiry      = 5 * time.Second
	fetchRetryDelay        = time.Second
)

func NewConsumer(ctx context.Context, js jetstream.JetStream, stream, name, subject string) (*Consumer, error) {
	log := logger.WithComponent("consumer").With().Str("subject", subject).Logger()
	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxAckPending: 1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer %s on %s: %w", name, stream, err)
	}
	log.Info().Str("consumer", name).Msg("pull consumer ready")
	return &Consumer{consumer: consumer, subject: subject, name: name, log: log}, nil
}

// Run drains the subject until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, handle Handler) {
	c.log.Info().Str("consumer", c.name).Msg("starting consumer loop")
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("stopping consumer loop")
			return
		default:
		}

		msgs, err := c.consumer.Fetch(defaultMaxPullMessages, jetstream.FetchMaxWait(defaultPullExpiry))
		if err != nil {
			c.log.Warn().Err(err).Msg("fetch failed")
			select {
			case <-ctx.Done():
				c.log.Info().Msg("stopping consumer loop")
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}
		for msg := range msgs.Messages() {
			c.dispatch(ctx, msg.Data(), handle)
			if err := msg.Ack(); err != nil {
				c.log.Warn().Err(err).Msg("ack failed")
			}
		}
		if err := msgs.Error(); err != nil && ctx.Err() == nil {
			c.log.Debug().Err(err).Msg("fetch ended with error")
		}
	}
}

// dispatch runs handle on one payload and reports the outcome. Handler panics
// are contained so one poison message cannot stop the loop.
func (c *Consumer) dispatch(ctx context.Context, data []byte, handle Handler) (outcome string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("handler panicked, message dropped")
			outcome = "dropped"
		}
		metrics.BrokerMessages.WithLabelValues(c.subject, outcome).Inc()
	}()

	if err := handle(ctx, data); err != nil {
		c.log.Warn().Err(err).Int("bytes", len(data)).Msg("message dropped")
		return "dropped"
	}
	return "applied"
}
