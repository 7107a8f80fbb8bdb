package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingControl struct {
	sent []string
	err  error
}

func (p *recordingControl) PublishControl(_ context.Context, action string) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, action)
	return nil
}

func TestExamControlSend(t *testing.T) {
	pub := &recordingControl{}
	uc := NewExamControlUseCase(pub, time.Second)
	ctx := context.Background()

	action, err := uc.Send(ctx, " start ", "proctor@lab.edu")
	require.NoError(t, err)
	assert.Equal(t, ExamStart, action)
	_, err = uc.Send(ctx, "STOP", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"START", "STOP"}, pub.sent)

	_, err = uc.Send(ctx, "pause", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Len(t, pub.sent, 2)
}

func TestExamControlBrokerDown(t *testing.T) {
	uc := NewExamControlUseCase(&recordingControl{err: errBrokerDown}, time.Second)
	_, err := uc.Send(context.Background(), "START", "")
	assert.ErrorIs(t, err, ErrBrokerUnavailable)
}
