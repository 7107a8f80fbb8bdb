package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-server/entities"
)

func room4Fixture() *fixture {
	return newFixture([]int{1, 2, 3, 4}, []entities.RoomPC{
		{RoomNumber: 4, PcID: 1, Name: "PC 1", IP: "10.0.120.2", MAC: "08:bf:b8:03:13:0f"},
	})
}

func TestSubmitShutdownRoom4(t *testing.T) {
	f := room4Fixture()

	cmd, err := f.dispatch.Submit(context.Background(), CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "prof@lab.edu")
	require.NoError(t, err)

	assert.Equal(t, "PC 1", cmd.ComputerName)
	assert.Equal(t, "10.0.120.2", cmd.TargetIP)
	assert.Equal(t, "08:bf:b8:03:13:0f", cmd.MacAddress)
	assert.Equal(t, ActionShutdown, cmd.Action)
	assert.Equal(t, entities.CommandSent, cmd.Status)
	assert.NotNil(t, cmd.SentAt)
	assert.Nil(t, cmd.ExecutedAt)
	require.NotNil(t, cmd.UserEmail)
	assert.Equal(t, "prof@lab.edu", *cmd.UserEmail)

	assert.Equal(t, []entities.AgentCommand{{Action: "shutdown", TargetIP: "10.0.120.2", Parameters: ""}}, f.publisher.published())

	stored, err := f.dispatch.Get(context.Background(), cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CommandSent, stored.Status)
	assert.NotNil(t, stored.SentAt)
}

func TestSubmitUnknownPcCreatesNoRow(t *testing.T) {
	f := room4Fixture()

	_, err := f.dispatch.Submit(context.Background(), CommandRequest{RoomNumber: 4, PcID: 2, Action: "SHUTDOWN"}, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.commands.all())
	assert.Empty(t, f.publisher.published())
}

func TestSubmitValidation(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()

	cases := []CommandRequest{
		{RoomNumber: 0, PcID: 1, Action: "SHUTDOWN"},
		{RoomNumber: 5, PcID: 1, Action: "SHUTDOWN"},
		{RoomNumber: 4, PcID: 0, Action: "SHUTDOWN"},
		{RoomNumber: 4, PcID: 1, Action: ""},
		{RoomNumber: 4, PcID: 1, Action: "LAUNCH_MISSILES"},
	}
	for _, req := range cases {
		_, err := f.dispatch.Submit(ctx, req, "")
		assert.ErrorIs(t, err, ErrValidation, "%+v", req)
	}
	assert.Empty(t, f.commands.all())
}

func TestSubmitPublishFailureRecordsFailed(t *testing.T) {
	f := room4Fixture()
	f.publisher.failFor["10.0.120.2"] = true

	cmd, err := f.dispatch.Submit(context.Background(), CommandRequest{RoomNumber: 4, PcID: 1, Action: "REBOOT"}, "")
	require.NoError(t, err)

	assert.Equal(t, entities.CommandFailed, cmd.Status)
	assert.NotEmpty(t, cmd.ResultMessage)
	assert.Contains(t, cmd.ResultMessage, errBrokerDown.Error())
	assert.Nil(t, cmd.SentAt)
	assert.Nil(t, cmd.UserEmail)

	stored := f.commands.all()
	require.Len(t, stored, 1)
	assert.Equal(t, entities.CommandFailed, stored[0].Status)
	assert.Nil(t, stored[0].SentAt)
}

func TestSubmitCallerCancellationDoesNotStrandPending(t *testing.T) {
	f := room4Fixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "TEST"}, "")
	require.NoError(t, err)
	assert.Equal(t, entities.CommandSent, cmd.Status)
}

func TestSubmitWakeOnLanPublishesMAC(t *testing.T) {
	f := room4Fixture()

	_, err := f.dispatch.Submit(context.Background(), CommandRequest{RoomNumber: 4, PcID: 1, Action: "wakeup"}, "")
	require.NoError(t, err)

	sent := f.publisher.published()
	require.Len(t, sent, 1)
	assert.Equal(t, entities.AgentCommand{Action: "wakeup", MacAddress: "08:bf:b8:03:13:0f"}, sent[0])
}

func TestApplyResultIsIdempotent(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()
	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "")
	require.NoError(t, err)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	updated, changed, err := f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandExecuted, "done", first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, first, *updated.ExecutedAt)

	again, changed, err := f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandExecuted, "done", first.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, *again.ExecutedAt)

	stored := f.commands.all()
	require.Len(t, stored, 1)
	assert.Equal(t, entities.CommandExecuted, stored[0].Status)
	assert.Equal(t, "done", stored[0].ResultMessage)
	assert.Equal(t, first, *stored[0].ExecutedAt)
}

func TestApplyResultSameStatusNewMessageKeepsExecutedAt(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()
	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "")
	require.NoError(t, err)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	_, _, err = f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandFailed, "timeout", first)
	require.NoError(t, err)

	updated, changed, err := f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandFailed, "timeout after retry", first.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "timeout after retry", updated.ResultMessage)
	assert.Equal(t, first, *updated.ExecutedAt)
}

func TestApplyResultTerminalLastWriteWins(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()
	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "")
	require.NoError(t, err)

	_, _, err = f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandFailed, "no answer", time.Now())
	require.NoError(t, err)
	updated, changed, err := f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandExecuted, "ok", time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, entities.CommandExecuted, updated.Status)
}

func TestApplyResultIgnoresOlderTerminalReport(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()
	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "")
	require.NoError(t, err)

	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, _, err = f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandExecuted, "ok", noon)
	require.NoError(t, err)

	_, changed, err := f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandFailed, "timeout", noon.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := f.dispatch.Get(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CommandExecuted, stored.Status)
	assert.Equal(t, "ok", stored.ResultMessage)
	require.NotNil(t, stored.ExecutedAt)
	assert.Equal(t, noon, *stored.ExecutedAt)
}

func TestApplyResultRejectsRegression(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()
	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "")
	require.NoError(t, err)
	_, _, err = f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandExecuted, "", time.Now())
	require.NoError(t, err)

	_, changed, err := f.dispatch.ApplyResult(ctx, cmd.ID, entities.CommandSent, "", time.Now())
	assert.ErrorIs(t, err, ErrStaleTransition)
	assert.False(t, changed)

	stored, err := f.dispatch.Get(ctx, cmd.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.CommandExecuted, stored.Status)
}

func TestApplyResultUnknownCommand(t *testing.T) {
	f := room4Fixture()
	_, _, err := f.dispatch.ApplyResult(context.Background(), 42, entities.CommandExecuted, "", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusTruncatesMessage(t *testing.T) {
	f := room4Fixture()
	ctx := context.Background()
	cmd, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 4, PcID: 1, Action: "SHUTDOWN"}, "")
	require.NoError(t, err)

	updated, err := f.dispatch.UpdateStatus(ctx, cmd.ID, "executed", strings.Repeat("é", 600))
	require.NoError(t, err)
	assert.Equal(t, entities.CommandExecuted, updated.Status)
	assert.Equal(t, maxResultMessage, len([]rune(updated.ResultMessage)))
	assert.NotNil(t, updated.ExecutedAt)

	_, err = f.dispatch.UpdateStatus(ctx, cmd.ID, "DONE", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListFilters(t *testing.T) {
	f := newFixture([]int{1}, labPCs(1, 2))
	f.publisher.failFor[pcIP(1, 2)] = true
	ctx := context.Background()

	_, err := f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 1, PcID: 1, Action: "TEST"}, "")
	require.NoError(t, err)
	_, err = f.dispatch.Submit(ctx, CommandRequest{RoomNumber: 1, PcID: 2, Action: "TEST"}, "")
	require.NoError(t, err)

	all, err := f.dispatch.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := f.dispatch.List(ctx, "", "failed")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, pcName(1, 2), failed[0].ComputerName)

	byName, err := f.dispatch.List(ctx, pcName(1, 1), "")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, entities.CommandSent, byName[0].Status)

	_, err = f.dispatch.List(ctx, "", "LOST")
	assert.ErrorIs(t, err, ErrValidation)
}
