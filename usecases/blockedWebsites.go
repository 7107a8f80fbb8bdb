package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"lab-server/entities"
	"lab-server/logger"
	"lab-server/metrics"
	"lab-server/repositories"
)

// BroadcastReport summarises one policy fan-out. Sent counts commands that
// reached the broker; Failed counts PCs that were rejected or ended FAILED.
type BroadcastReport struct {
	Action  string `json:"action"`
	URL     string `json:"url"`
	Targets int    `json:"targets"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

type BlockedWebsitesUseCase struct {
	repo      repositories.BlockedWebsiteRepository
	commands  *CommandsUseCase
	directory *DirectoryUseCase
	log       zerolog.Logger
}

func NewBlockedWebsitesUseCase(repo repositories.BlockedWebsiteRepository, commands *CommandsUseCase, directory *DirectoryUseCase) *BlockedWebsitesUseCase {
	return &BlockedWebsitesUseCase{
		repo:      repo,
		commands:  commands,
		directory: directory,
		log:       logger.WithComponent("blocked-websites"),
	}
}

func (uc *BlockedWebsitesUseCase) List(ctx context.Context) ([]entities.BlockedWebsite, error) {
	return uc.repo.GetAll(ctx)
}

func (uc *BlockedWebsitesUseCase) Count(ctx context.Context) (int64, error) {
	return uc.repo.Count(ctx)
}

// Add stores the site and then asks every PC to block it.
func (uc *BlockedWebsitesUseCase) Add(ctx context.Context, name, url, issuer string) (*entities.BlockedWebsite, BroadcastReport, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, BroadcastReport{}, fmt.Errorf("%w: url is required", ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = url
	}

	exists, err := uc.repo.ExistsByURL(ctx, url)
	if err != nil {
		return nil, BroadcastReport{}, err
	}
	if exists {
		return nil, BroadcastReport{}, fmt.Errorf("%w: website %s is already blocked", ErrDuplicate, url)
	}

	site := &entities.BlockedWebsite{Name: name, URL: url}
	if err := uc.repo.Create(ctx, site); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, BroadcastReport{}, fmt.Errorf("%w: website %s is already blocked", ErrDuplicate, url)
		}
		return nil, BroadcastReport{}, err
	}
	uc.log.Info().Str("url", url).Msg("blocked website added")

	return site, uc.broadcast(ctx, ActionBlockWebsite, url, issuer), nil
}

// Remove deletes the site and then asks every PC to unblock it.
func (uc *BlockedWebsitesUseCase) Remove(ctx context.Context, id uint, issuer string) (BroadcastReport, error) {
	site, err := uc.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return BroadcastReport{}, fmt.Errorf("%w: blocked website %d", ErrNotFound, id)
	}
	if err != nil {
		return BroadcastReport{}, err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return BroadcastReport{}, fmt.Errorf("%w: blocked website %d", ErrNotFound, id)
		}
		return BroadcastReport{}, err
	}
	uc.log.Info().Str("url", site.URL).Msg("blocked website removed")

	return uc.broadcast(ctx, ActionUnblockWebsite, site.URL, issuer), nil
}

// broadcast dispatches one command per known PC. A failing PC is logged and
// skipped; it never stops the loop.
func (uc *BlockedWebsitesUseCase) broadcast(ctx context.Context, action, url, issuer string) BroadcastReport {
	ctx = context.WithoutCancel(ctx)
	report := BroadcastReport{Action: action, URL: url}
	uc.log.Info().Str("action", action).Str("url", url).Msg("broadcasting to all computers")

	for _, room := range uc.directory.Rooms() {
		pcs, err := uc.directory.ListRoom(ctx, room)
		if err != nil {
			uc.log.Error().Err(err).Int("room", room).Msg("cannot list room, skipping")
			continue
		}
		for _, pc := range pcs {
			report.Targets++
			cmd, err := uc.commands.Submit(ctx, CommandRequest{
				RoomNumber: room,
				PcID:       pc.PcID,
				Action:     action,
				Parameters: url,
			}, issuer)
			switch {
			case err != nil:
				report.Failed++
				metrics.BroadcastTargets.WithLabelValues(action, "rejected").Inc()
				uc.log.Error().Err(err).Int("room", room).Uint("pc_id", pc.PcID).Str("action", action).Msg("dispatch failed")
			case cmd.Status == entities.CommandFailed:
				report.Failed++
				metrics.BroadcastTargets.WithLabelValues(action, "failed").Inc()
			default:
				report.Sent++
				metrics.BroadcastTargets.WithLabelValues(action, "sent").Inc()
			}
		}
	}

	uc.log.Info().Str("action", action).Str("url", url).Int("targets", report.Targets).
		Int("sent", report.Sent).Int("failed", report.Failed).Msg("broadcast completed")
	return report
}
