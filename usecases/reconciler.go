package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"lab-server/entities"
	"lab-server/logger"
	"lab-server/repositories"
)

// StatusFeed pushes live computer status to observers. Broadcast must not
// block on slow observers.
type StatusFeed interface {
	Broadcast(status entities.ComputerStatus) error
}

// Reconciler folds agent reports back into the command store and the live
// computer status view. Its handlers never panic on bad input; they return an
// error describing why the message was dropped.
type Reconciler struct {
	commands  *CommandsUseCase
	statuses  repositories.ComputerStatusRepository
	directory *DirectoryUseCase
	feed      StatusFeed
	log       zerolog.Logger
	now       func() time.Time
}

func NewReconciler(commands *CommandsUseCase, statuses repositories.ComputerStatusRepository, directory *DirectoryUseCase, feed StatusFeed) *Reconciler {
	return &Reconciler{
		commands:  commands,
		statuses:  statuses,
		directory: directory,
		feed:      feed,
		log:       logger.WithComponent("reconciler"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reconciler) HandleCommandResult(ctx context.Context, payload []byte) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: empty command result", ErrMalformedMessage)
	}
	var res entities.CommandResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if res.CommandID == 0 {
		return fmt.Errorf("%w: command result without commandId", ErrMalformedMessage)
	}
	status, err := ParseCommandStatus(res.Status)
	if err != nil {
		return fmt.Errorf("%w: command %d: %v", ErrMalformedMessage, res.CommandID, err)
	}

	cmd, changed, err := r.commands.ApplyResult(ctx, res.CommandID, status, res.ResultMessage, parseTimestamp(res.ExecutedAt, r.now()))
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("%w: %d", ErrUnknownCommand, res.CommandID)
	case err != nil:
		return err
	}

	if changed {
		r.log.Info().Uint("command_id", cmd.ID).Str("status", string(cmd.Status)).
			Str("computer", cmd.ComputerName).Msg("command result applied")
	} else {
		r.log.Debug().Uint("command_id", cmd.ID).Msg("duplicate command result ignored")
	}
	return nil
}

func (r *Reconciler) HandleHeartbeat(ctx context.Context, payload []byte) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return fmt.Errorf("%w: empty heartbeat", ErrMalformedMessage)
	}
	var hb entities.Heartbeat
	if err := json.Unmarshal(payload, &hb); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	hb.IPAddress = strings.TrimSpace(hb.IPAddress)
	if hb.IPAddress == "" {
		return fmt.Errorf("%w: heartbeat without ipAddress", ErrMalformedMessage)
	}

	now := r.now()
	status := entities.ComputerStatus{
		IPAddress:  hb.IPAddress,
		PcID:       hb.PcID,
		PcName:     hb.PcName,
		MacAddress: hb.MacAddress,
		Status:     entities.ParseComputerState(hb.Status),
		LastSeen:   parseTimestamp(hb.Timestamp, now),
		UpdatedAt:  now,
	}

	pc, err := r.directory.FindByIP(ctx, hb.IPAddress)
	switch {
	case err == nil:
		status.RoomNumber = pc.RoomNumber
		status.PcID = pc.PcID
		if status.PcName == "" {
			status.PcName = pc.Name
		}
		if status.MacAddress == "" {
			status.MacAddress = pc.MAC
		}
	case !errors.Is(err, ErrNotFound):
		r.log.Warn().Err(err).Str("ip", hb.IPAddress).Msg("directory lookup failed, storing heartbeat without room")
	}

	if err := r.statuses.Upsert(ctx, &status); err != nil {
		return fmt.Errorf("store status of %s: %w", hb.IPAddress, err)
	}

	r.log.Debug().Str("ip", status.IPAddress).Str("status", string(status.Status)).Msg("computer status updated")

	if r.feed != nil {
		if err := r.feed.Broadcast(status); err != nil {
			r.log.Warn().Err(err).Str("ip", status.IPAddress).Msg("status broadcast failed")
		}
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// parseTimestamp reads agent timestamps; zone-less values are taken as UTC.
func parseTimestamp(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
