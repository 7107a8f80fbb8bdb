package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"lab-server/entities"
)

var ErrDisabled = errors.New("broker integration is disabled")

// DisabledPublisher is selected when BROKER_ENABLED is false. Every publish
// fails, so dispatched commands end FAILED with the reason recorded.
type DisabledPublisher struct{}

func (DisabledPublisher) Publish(context.Context, entities.AgentCommand) error {
	return ErrDisabled
}

func (DisabledPublisher) PublishControl(context.Context, string) error {
	return ErrDisabled
}

type jetStreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

type JetStreamPublisher struct {
	js      jetStreamPublisher
	subject string
	control string
}

func NewJetStreamPublisher(js jetstream.JetStream) *JetStreamPublisher {
	return &JetStreamPublisher{js: js, subject: SubjectCommands, control: SubjectControl}
}

// EncodeCommand renders the exact bytes agents parse.
func EncodeCommand(msg entities.AgentCommand) ([]byte, error) {
	return json.Marshal(msg)
}

// Publish makes one attempt, bounded by ctx. Each message carries a fresh
// Nats-Msg-Id so the stream drops accidental duplicates.
func (p *JetStreamPublisher) Publish(ctx context.Context, msg entities.AgentCommand) error {
	data, err := EncodeCommand(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data, jetstream.WithMsgID(uuid.New().String())); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.subject, err)
	}
	return nil
}

// PublishControl sends a bare control word such as START to every agent.
func (p *JetStreamPublisher) PublishControl(ctx context.Context, action string) error {
	if _, err := p.js.Publish(ctx, p.control, []byte(action), jetstream.WithMsgID(uuid.New().String())); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.control, err)
	}
	return nil
}
