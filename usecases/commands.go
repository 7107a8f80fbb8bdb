package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"lab-server/entities"
	"lab-server/logger"
	"lab-server/metrics"
	"lab-server/repositories"
)

const maxResultMessage = 500

// CommandPublisher hands an agent command to the broker. Implementations
// make a single attempt and honour ctx's deadline.
type CommandPublisher interface {
	Publish(ctx context.Context, msg entities.AgentCommand) error
}

type CommandRequest struct {
	RoomNumber int
	PcID       uint
	Action     string
	Parameters string
}

type CommandsUseCase struct {
	repo           repositories.CommandRepository
	directory      *DirectoryUseCase
	publisher      CommandPublisher
	publishTimeout time.Duration
	log            zerolog.Logger
	now            func() time.Time
}

func NewCommandsUseCase(repo repositories.CommandRepository, directory *DirectoryUseCase, publisher CommandPublisher, publishTimeout time.Duration) *CommandsUseCase {
	return &CommandsUseCase{
		repo:           repo,
		directory:      directory,
		publisher:      publisher,
		publishTimeout: publishTimeout,
		log:            logger.WithComponent("dispatcher"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and resolves the request, records the command as PENDING,
// publishes it once and records SENT or FAILED. Once the row exists, publish
// problems end up in the row rather than in the returned error.
func (uc *CommandsUseCase) Submit(ctx context.Context, req CommandRequest, issuer string) (*entities.Command, error) {
	if !uc.directory.ValidRoom(req.RoomNumber) {
		return nil, fmt.Errorf("%w: invalid room number %d, valid rooms are %v", ErrValidation, req.RoomNumber, uc.directory.Rooms())
	}
	if req.PcID == 0 {
		return nil, fmt.Errorf("%w: pcId is required", ErrValidation)
	}
	action, err := NormalizeAction(req.Action)
	if err != nil {
		return nil, err
	}

	pc, err := uc.directory.Resolve(ctx, req.RoomNumber, req.PcID)
	if err != nil {
		return nil, err
	}

	cmd := &entities.Command{
		RoomNumber:   req.RoomNumber,
		PcID:         pc.PcID,
		ComputerName: pc.Name,
		TargetIP:     pc.IP,
		MacAddress:   pc.MAC,
		Action:       action,
		Parameters:   req.Parameters,
		Status:       entities.CommandPending,
		CreatedAt:    uc.now(),
	}
	if issuer = strings.TrimSpace(issuer); issuer != "" {
		cmd.UserEmail = &issuer
	}
	if err := uc.repo.Create(ctx, cmd); err != nil {
		return nil, fmt.Errorf("persist command: %w", err)
	}

	// The row exists now; a caller hanging up must not leave it PENDING.
	ctx = context.WithoutCancel(ctx)

	msg, err := BuildAgentCommand(cmd)
	if err != nil {
		return uc.finish(ctx, cmd, repositories.StatusChange{
			Status:        entities.CommandFailed,
			ResultMessage: truncate("cannot translate command: " + err.Error()),
		})
	}

	pubCtx, cancel := context.WithTimeout(ctx, uc.publishTimeout)
	err = uc.publisher.Publish(pubCtx, msg)
	cancel()
	if err != nil {
		uc.log.Error().Err(err).Uint("command_id", cmd.ID).Str("computer", cmd.ComputerName).
			Int("room", cmd.RoomNumber).Msg("broker publish failed")
		return uc.finish(ctx, cmd, repositories.StatusChange{
			Status:        entities.CommandFailed,
			ResultMessage: truncate("broker publish failed: " + err.Error()),
		})
	}

	sentAt := uc.now()
	updated, err := uc.finish(ctx, cmd, repositories.StatusChange{
		Status: entities.CommandSent,
		SentAt: &sentAt,
	})
	if err == nil {
		uc.log.Info().Uint("command_id", cmd.ID).Str("action", msg.Action).Str("computer", cmd.ComputerName).
			Int("room", cmd.RoomNumber).Msg("command sent")
	}
	return updated, err
}

// finish moves a command out of PENDING. When an agent result already moved
// it further, the stored row wins.
func (uc *CommandsUseCase) finish(ctx context.Context, cmd *entities.Command, change repositories.StatusChange) (*entities.Command, error) {
	ok, err := uc.repo.Transition(ctx, cmd.ID, []entities.CommandStatus{entities.CommandPending}, change)
	if err != nil {
		return nil, fmt.Errorf("persist dispatch state of command %d: %w", cmd.ID, err)
	}
	if !ok {
		return uc.repo.GetByID(ctx, cmd.ID)
	}
	metrics.CommandsDispatched.WithLabelValues(cmd.Action, string(change.Status)).Inc()
	cmd.Status = change.Status
	cmd.ResultMessage = change.ResultMessage
	if change.SentAt != nil {
		cmd.SentAt = change.SentAt
	}
	return cmd, nil
}

func (uc *CommandsUseCase) Get(ctx context.Context, id uint) (*entities.Command, error) {
	cmd, err := uc.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: command %d", ErrNotFound, id)
	}
	return cmd, err
}

func (uc *CommandsUseCase) List(ctx context.Context, computerName, status string) ([]entities.Command, error) {
	filter := repositories.CommandFilter{ComputerName: strings.TrimSpace(computerName)}
	if status != "" {
		st, err := ParseCommandStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	return uc.repo.List(ctx, filter)
}

// UpdateStatus is the direct-callback path for agents that report over HTTP.
func (uc *CommandsUseCase) UpdateStatus(ctx context.Context, id uint, status, resultMessage string) (*entities.Command, error) {
	st, err := ParseCommandStatus(status)
	if err != nil {
		return nil, err
	}
	cmd, _, err := uc.ApplyResult(ctx, id, st, resultMessage, uc.now())
	return cmd, err
}

// ApplyResult records an agent-reported status. Replaying the same report is a
// no-op; a report for the status already stored keeps the first executedAt.
// Between terminal statuses the later executedAt wins, so a report older than
// the stored one is ignored. It returns whether a write happened.
func (uc *CommandsUseCase) ApplyResult(ctx context.Context, id uint, status entities.CommandStatus, resultMessage string, executedAt time.Time) (*entities.Command, bool, error) {
	current, err := uc.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	resultMessage = truncate(resultMessage)

	if current.Status == status && current.ResultMessage == resultMessage &&
		(!status.Terminal() || current.ExecutedAt != nil) {
		return current, false, nil
	}
	if status.Rank() < current.Status.Rank() {
		return current, false, fmt.Errorf("%w: command %d is %s, got %s", ErrStaleTransition, id, current.Status, status)
	}
	if status.Terminal() && current.Status.Terminal() && current.ExecutedAt != nil && executedAt.Before(*current.ExecutedAt) {
		return current, false, nil
	}

	change := repositories.StatusChange{Status: status, ResultMessage: resultMessage}
	if status.Terminal() {
		ts := executedAt
		if current.Status == status && current.ExecutedAt != nil {
			ts = *current.ExecutedAt
		}
		change.ExecutedAt = &ts
	}

	ok, err := uc.repo.Transition(ctx, id, status.Predecessors(), change)
	if err != nil {
		return nil, false, fmt.Errorf("update command %d: %w", id, err)
	}
	if !ok {
		return current, false, fmt.Errorf("%w: command %d moved on concurrently", ErrStaleTransition, id)
	}

	updated := *current
	updated.Status = change.Status
	updated.ResultMessage = change.ResultMessage
	if change.ExecutedAt != nil {
		updated.ExecutedAt = change.ExecutedAt
	}
	return &updated, true, nil
}

func ParseCommandStatus(s string) (entities.CommandStatus, error) {
	st := entities.CommandStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown command status %q", ErrValidation, s)
	}
	return st, nil
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxResultMessage {
		return s
	}
	return string([]rune(s)[:maxResultMessage])
}
