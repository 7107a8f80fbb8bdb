package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lab-server/entities"
	"lab-server/repositories"
)

type InstallableAppsUseCase struct {
	repo     repositories.InstallableAppRepository
	commands *CommandsUseCase
}

func NewInstallableAppsUseCase(repo repositories.InstallableAppRepository, commands *CommandsUseCase) *InstallableAppsUseCase {
	return &InstallableAppsUseCase{repo: repo, commands: commands}
}

func (uc *InstallableAppsUseCase) List(ctx context.Context) ([]entities.InstallableApp, error) {
	return uc.repo.GetAll(ctx)
}

func (uc *InstallableAppsUseCase) Add(ctx context.Context, app *entities.InstallableApp) error {
	app.Name = strings.TrimSpace(app.Name)
	app.Command = strings.TrimSpace(app.Command)
	if app.Name == "" || app.Command == "" {
		return fmt.Errorf("%w: name and command are required", ErrValidation)
	}
	_, err := uc.repo.GetByName(ctx, app.Name)
	switch {
	case err == nil:
		return fmt.Errorf("%w: app %s", ErrDuplicate, app.Name)
	case !errors.Is(err, repositories.ErrNotFound):
		return err
	}
	// a concurrent Add can pass the lookup too; the unique index settles it
	err = uc.repo.Create(ctx, app)
	if errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("%w: app %s", ErrDuplicate, app.Name)
	}
	return err
}

func (uc *InstallableAppsUseCase) Delete(ctx context.Context, id uint) error {
	err := uc.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: app %d", ErrNotFound, id)
	}
	return err
}

// Install sends INSTALL_APP to one PC with the catalogue's install command
// as the parameter.
func (uc *InstallableAppsUseCase) Install(ctx context.Context, room int, pcID uint, appName, issuer string) (*entities.Command, error) {
	if strings.TrimSpace(appName) == "" {
		return nil, fmt.Errorf("%w: appName is required", ErrValidation)
	}
	app, err := uc.repo.GetByName(ctx, strings.TrimSpace(appName))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: application %s", ErrNotFound, appName)
	}
	if err != nil {
		return nil, err
	}
	return uc.commands.Submit(ctx, CommandRequest{
		RoomNumber: room,
		PcID:       pcID,
		Action:     ActionInstallApp,
		Parameters: app.Command,
	}, issuer)
}
