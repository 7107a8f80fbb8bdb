package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-server/entities"
	"lab-server/repositories"
)

func TestInstallableAppsCatalogue(t *testing.T) {
	f := room4Fixture()
	uc := NewInstallableAppsUseCase(f.apps, f.dispatch)
	ctx := context.Background()

	app := &entities.InstallableApp{Name: " VS Code ", Command: "snap install code --classic"}
	require.NoError(t, uc.Add(ctx, app))
	assert.Equal(t, "VS Code", app.Name)

	assert.ErrorIs(t, uc.Add(ctx, &entities.InstallableApp{Name: "vs code", Command: "x"}), ErrDuplicate)
	assert.ErrorIs(t, uc.Add(ctx, &entities.InstallableApp{Name: "empty"}), ErrValidation)

	apps, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	require.NoError(t, uc.Delete(ctx, app.ID))
	assert.ErrorIs(t, uc.Delete(ctx, app.ID), ErrNotFound)
}

// staleLookupApps never sees existing rows, like an Add racing another one.
type staleLookupApps struct {
	*memApps
}

func (staleLookupApps) GetByName(context.Context, string) (*entities.InstallableApp, error) {
	return nil, repositories.ErrNotFound
}

func TestAddReportsDuplicateFromStore(t *testing.T) {
	f := room4Fixture()
	uc := NewInstallableAppsUseCase(staleLookupApps{f.apps}, f.dispatch)
	ctx := context.Background()

	require.NoError(t, uc.Add(ctx, &entities.InstallableApp{Name: "Firefox", Command: "apt-get install -y firefox"}))
	err := uc.Add(ctx, &entities.InstallableApp{Name: "FIREFOX", Command: "snap install firefox"})
	assert.ErrorIs(t, err, ErrDuplicate)

	apps, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestInstallSendsCatalogueCommand(t *testing.T) {
	f := room4Fixture()
	uc := NewInstallableAppsUseCase(f.apps, f.dispatch)
	ctx := context.Background()
	require.NoError(t, uc.Add(ctx, &entities.InstallableApp{Name: "Firefox", Command: "apt-get install -y firefox"}))

	cmd, err := uc.Install(ctx, 4, 1, "firefox", "tech@lab.edu")
	require.NoError(t, err)
	assert.Equal(t, ActionInstallApp, cmd.Action)
	assert.Equal(t, "apt-get install -y firefox", cmd.Parameters)
	assert.Equal(t, entities.CommandSent, cmd.Status)

	sent := f.publisher.published()
	require.Len(t, sent, 1)
	assert.Equal(t, "install_app", sent[0].Action)
	assert.Equal(t, "10.0.120.2", sent[0].TargetIP)

	_, err = uc.Install(ctx, 4, 1, "photoshop", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = uc.Install(ctx, 4, 1, "", "")
	assert.ErrorIs(t, err, ErrValidation)
}
