// Package broker carries commands to lab agents and their reports back over
// NATS JetStream.
package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"lab-server/logger"
)

const (
	SubjectCommands = "pc_commands"
	SubjectResults  = "pc_responses"
	SubjectStatus   = "pc_status_updates"
	// SubjectControl carries exam-monitoring orders to every agent at once.
	SubjectControl = "spy.control"
	SubjectScreens = "spy.screens"
)

// Connect dials NATS and makes sure the lab stream captures every lab subject.
func Connect(ctx context.Context, url, stream string) (*nats.Conn, jetstream.JetStream, error) {
	log := logger.WithComponent("broker")

	nc, err := nats.Connect(url,
		nats.Name("lab-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("disconnected from NATS")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{SubjectCommands, SubjectResults, SubjectStatus, SubjectControl, SubjectScreens},
		Storage:  jetstream.FileStorage,
		MaxAge:   24 * time.Hour,
	})
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to ensure stream %s: %w", stream, err)
	}

	log.Info().Str("url", url).Str("stream", stream).Msg("connected to NATS JetStream")
	return nc, js, nil
}
