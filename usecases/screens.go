package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// FrameFeed hands an encoded payload to every connected observer.
type FrameFeed interface {
	Forward(payload []byte) error
}

// ScreenRelay passes agent screen frames to observers untouched.
type ScreenRelay struct {
	feed FrameFeed
}

func NewScreenRelay(feed FrameFeed) *ScreenRelay {
	return &ScreenRelay{feed: feed}
}

func (s *ScreenRelay) HandleFrame(_ context.Context, payload []byte) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: empty screen frame", ErrMalformedMessage)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("%w: screen frame is not JSON", ErrMalformedMessage)
	}
	return s.feed.Forward(payload)
}
