package usecases

import (
	"context"
	"errors"
	"fmt"

	"lab-server/entities"
	"lab-server/repositories"
)

type DashboardStats struct {
	TotalComputers   int64                            `json:"totalComputers"`
	OnlineComputers  int64                            `json:"onlineComputers"`
	BlockedWebsites  int64                            `json:"blockedWebsites"`
	CommandsByStatus map[entities.CommandStatus]int64 `json:"commandsByStatus"`
}

type DashboardUseCase struct {
	directory *DirectoryUseCase
	statuses  repositories.ComputerStatusRepository
	websites  repositories.BlockedWebsiteRepository
	commands  repositories.CommandRepository
}

func NewDashboardUseCase(directory *DirectoryUseCase, statuses repositories.ComputerStatusRepository, websites repositories.BlockedWebsiteRepository, commands repositories.CommandRepository) *DashboardUseCase {
	return &DashboardUseCase{directory: directory, statuses: statuses, websites: websites, commands: commands}
}

func (uc *DashboardUseCase) Stats(ctx context.Context) (*DashboardStats, error) {
	total, err := uc.directory.Count(ctx)
	if err != nil {
		return nil, err
	}
	online, err := uc.statuses.CountByStatus(ctx, entities.ComputerOnline)
	if err != nil {
		return nil, err
	}
	blocked, err := uc.websites.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := uc.commands.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalComputers:   total,
		OnlineComputers:  online,
		BlockedWebsites:  blocked,
		CommandsByStatus: byStatus,
	}, nil
}

// ComputerStatuses returns the whole live view.
func (uc *DashboardUseCase) ComputerStatuses(ctx context.Context) ([]entities.ComputerStatus, error) {
	return uc.statuses.GetAll(ctx)
}

// ComputerStatus returns the last known status of the machine at ip.
func (uc *DashboardUseCase) ComputerStatus(ctx context.Context, ip string) (*entities.ComputerStatus, error) {
	status, err := uc.statuses.GetByIP(ctx, ip)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: no status for %s", ErrNotFound, ip)
	}
	return status, err
}
