package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatebot/pkg/logger"
)

func newTestAdmin(t *testing.T) (*fakeStorage, AdminService) {
	t.Helper()
	stg := newFakeStorage()
	return stg, NewAdminService(stg, logger.New("test", "error"))
}

func TestToggleFlipsEnableFlag(t *testing.T) {
	_, svc := newTestAdmin(t)
	ctx := context.Background()

	enabled, err := svc.Enabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled, "default is on")

	enabled, err = svc.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = svc.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestConsumeInputChannelAdd(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     InputKind
		channels []string
	}{
		{"valid", "@mychannel", InputChannelAdded, []string{"@mychannel"}},
		{"trimmed", "  @mychannel \n", InputChannelAdded, []string{"@mychannel"}},
		{"missing sigil", "mychannel", InputChannelBadFormat, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stg, svc := newTestAdmin(t)
			ctx := context.Background()

			svc.AwaitChannelAdd(testAdminID)
			res, err := svc.ConsumeInput(ctx, testAdminID, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Kind)

			list, _ := stg.channels.List(ctx)
			assert.Equal(t, tt.channels, list)
		})
	}
}

func TestConsumeInputDuplicateAdd(t *testing.T) {
	stg, svc := newTestAdmin(t)
	ctx := context.Background()
	stg.channels.Add(ctx, "@mychannel")

	svc.AwaitChannelAdd(testAdminID)
	res, err := svc.ConsumeInput(ctx, testAdminID, "@mychannel")
	require.NoError(t, err)
	assert.Equal(t, InputChannelExists, res.Kind)

	list, _ := stg.channels.List(ctx)
	assert.Equal(t, []string{"@mychannel"}, list)
}

func TestConsumeInputRemoveNormalizesSigil(t *testing.T) {
	stg, svc := newTestAdmin(t)
	ctx := context.Background()
	stg.channels.Add(ctx, "@mychannel")

	svc.AwaitChannelRemove(testAdminID)
	res, err := svc.ConsumeInput(ctx, testAdminID, "mychannel")
	require.NoError(t, err)
	assert.Equal(t, InputChannelRemoved, res.Kind)
	assert.Equal(t, "@mychannel", res.Channel)

	list, _ := stg.channels.List(ctx)
	assert.Empty(t, list)
}

func TestConsumeInputRemoveMissing(t *testing.T) {
	_, svc := newTestAdmin(t)

	svc.AwaitChannelRemove(testAdminID)
	res, err := svc.ConsumeInput(context.Background(), testAdminID, "@ghost")
	require.NoError(t, err)
	assert.Equal(t, InputChannelMissing, res.Kind)
}

func TestConsumeInputWithoutPendingIsIgnored(t *testing.T) {
	_, svc := newTestAdmin(t)

	res, err := svc.ConsumeInput(context.Background(), testAdminID, "hello")
	require.NoError(t, err)
	assert.Equal(t, InputIgnored, res.Kind)
}

func TestPendingStateClearsEvenOnBadInput(t *testing.T) {
	_, svc := newTestAdmin(t)
	ctx := context.Background()

	svc.AwaitChannelAdd(testAdminID)
	res, err := svc.ConsumeInput(ctx, testAdminID, "no-sigil")
	require.NoError(t, err)
	assert.Equal(t, InputChannelBadFormat, res.Kind)

	// The malformed input consumed the prompt; the next message is plain text.
	res, err = svc.ConsumeInput(ctx, testAdminID, "@mychannel")
	require.NoError(t, err)
	assert.Equal(t, InputIgnored, res.Kind)
}

func TestUsersPagination(t *testing.T) {
	stg, svc := newTestAdmin(t)
	ctx := context.Background()

	for i := 0; i < UserPageSize+7; i++ {
		name := fmt.Sprintf("user%d", i)
		require.NoError(t, stg.users.Upsert(ctx, int64(i+1), &name, nil))
	}

	users, remainder, err := svc.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, UserPageSize)
	assert.Equal(t, 7, remainder)

	// Most recently touched first.
	assert.Equal(t, int64(UserPageSize+7), users[0].TelegramID)
}

func TestStatsAndExport(t *testing.T) {
	stg, svc := newTestAdmin(t)
	ctx := context.Background()

	phone := "+1"
	name := "alice"
	require.NoError(t, stg.users.Upsert(ctx, 1, &name, &phone))
	require.NoError(t, stg.users.Upsert(ctx, 2, nil, nil))
	stg.channels.Add(ctx, "@one")

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Users: 2, WithPhone: 1, Channels: 1, Enabled: true}, stats)

	export, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"@one"}, export.Channels)
	assert.Len(t, export.Users, 2)
	assert.False(t, export.TakenAt.IsZero())
}
