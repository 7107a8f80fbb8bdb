package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lab-server/logger"
)

const (
	ExamStart = "START"
	ExamStop  = "STOP"
)

// ControlPublisher fans a control word out to every agent.
type ControlPublisher interface {
	PublishControl(ctx context.Context, action string) error
}

// ExamControlUseCase turns exam monitoring on or off across the whole lab.
type ExamControlUseCase struct {
	publisher ControlPublisher
	timeout   time.Duration
	log       zerolog.Logger
}

func NewExamControlUseCase(publisher ControlPublisher, timeout time.Duration) *ExamControlUseCase {
	return &ExamControlUseCase{publisher: publisher, timeout: timeout, log: logger.WithComponent("exam-control")}
}

// Send publishes START or STOP and returns the normalized action.
func (uc *ExamControlUseCase) Send(ctx context.Context, action, issuer string) (string, error) {
	action = strings.ToUpper(strings.TrimSpace(action))
	if action != ExamStart && action != ExamStop {
		return "", fmt.Errorf("%w: unknown control action %q", ErrValidation, action)
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	if err := uc.publisher.PublishControl(ctx, action); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	uc.log.Info().Str("action", action).Str("issuer", issuer).Msg("exam control sent")
	return action, nil
}
