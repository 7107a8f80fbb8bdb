package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-server/entities"
)

func TestDashboardStats(t *testing.T) {
	f := newFixture([]int{1, 2}, labPCs(2, 2))
	f.publisher.failFor[pcIP(1, 2)] = true
	ctx := context.Background()
	r := newTestReconciler(f)

	require.NoError(t, r.HandleHeartbeat(ctx, []byte(`{"ipAddress":"10.0.1.1","status":"ONLINE"}`)))
	require.NoError(t, r.HandleHeartbeat(ctx, []byte(`{"ipAddress":"10.0.2.1","status":"OFFLINE"}`)))
	_, _, err := NewBlockedWebsitesUseCase(f.websites, f.dispatch, f.directory).Add(ctx, "", "x.com", "")
	require.NoError(t, err)

	stats, err := NewDashboardUseCase(f.directory, f.statuses, f.websites, f.commands).Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalComputers)
	assert.Equal(t, int64(1), stats.OnlineComputers)
	assert.Equal(t, int64(1), stats.BlockedWebsites)
	assert.Equal(t, map[entities.CommandStatus]int64{
		entities.CommandSent:   3,
		entities.CommandFailed: 1,
	}, stats.CommandsByStatus)
}

func TestComputerStatusByIP(t *testing.T) {
	f := newFixture([]int{1}, labPCs(1, 2))
	ctx := context.Background()
	require.NoError(t, newTestReconciler(f).HandleHeartbeat(ctx, []byte(`{"ipAddress":"10.0.1.2","status":"ONLINE"}`)))
	uc := NewDashboardUseCase(f.directory, f.statuses, f.websites, f.commands)

	st, err := uc.ComputerStatus(ctx, "10.0.1.2")
	require.NoError(t, err)
	assert.Equal(t, entities.ComputerOnline, st.Status)
	assert.Equal(t, uint(2), st.PcID)

	_, err = uc.ComputerStatus(ctx, "10.0.1.1")
	assert.ErrorIs(t, err, ErrNotFound)
}
