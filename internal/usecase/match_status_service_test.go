package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	"github.com/stretchr/testify/require"
)

func TestMatchStatusService_Lookup_InMatch(t *testing.T) {
	t.Parallel()

	provider := &fakeStatsProvider{
		statusFunc: func(string) (rawjson.Value, error) {
			return rawjson.Parse([]byte(`{"online":true,"match":{"max_players":16,"players":[{"uuid":"a"},{"uuid":"b"},"junk"]}}`)), nil
		},
		bulk: func(_ int, ids []string) (rawjson.Value, error) {
			return rawjson.Parse([]byte(`[
				{"username":"Alpha","kills":10,"deaths":2,"rank":"Sergeant","prestige":1,"punishments":{"active":{"mute":{"reason":"spam"}}}},
				{"username":"Bravo","kills":3,"deaths":5,"punishments":{"active":{}}}
			]`)), nil
		},
	}
	service := NewMatchStatusService(provider, logging.NewNop())

	got, err := service.Lookup(context.Background(), "Alpha")
	require.NoError(t, err)
	require.True(t, got.Online)
	require.True(t, got.InMatch)
	require.Equal(t, []string{"a", "b"}, provider.bulkCalls[0])
	require.Len(t, got.Players, 2)
	require.True(t, got.Players[0].Muted)
	require.Equal(t, "Sergeant", got.Players[0].Rank)
	require.False(t, got.Players[1].Muted)
	require.Equal(t, "2 out of 16 players in match.", got.Summary)
}

func TestMatchStatusService_Lookup_Offline(t *testing.T) {
	t.Parallel()

	provider := &fakeStatsProvider{
		statusFunc: func(string) (rawjson.Value, error) {
			return rawjson.Parse([]byte(`{"online":false}`)), nil
		},
	}
	got, err := NewMatchStatusService(provider, logging.NewNop()).Lookup(context.Background(), "Steve")
	require.NoError(t, err)
	require.Equal(t, "Steve is offline.", got.Message)
	require.Equal(t, "Player is offline.", got.Summary)
}

func TestMatchStatusService_Lookup_NotInMatch(t *testing.T) {
	t.Parallel()

	provider := &fakeStatsProvider{
		statusFunc: func(string) (rawjson.Value, error) {
			return rawjson.Parse([]byte(`{"online":true,"match":null}`)), nil
		},
	}
	got, err := NewMatchStatusService(provider, logging.NewNop()).Lookup(context.Background(), "Steve")
	require.NoError(t, err)
	require.False(t, got.InMatch)
	require.Equal(t, "No match data found for player.", got.Summary)
}

func TestMatchStatusService_Lookup_UpstreamFailureDegrades(t *testing.T) {
	t.Parallel()

	provider := &fakeStatsProvider{
		statusFunc: func(string) (rawjson.Value, error) {
			return rawjson.Value{}, errors.New("status 500")
		},
	}
	got, err := NewMatchStatusService(provider, logging.NewNop()).Lookup(context.Background(), "Steve")
	require.NoError(t, err)
	require.Equal(t, "Failed to fetch match stats", got.Summary)
	require.Contains(t, got.Message, "Steve")
	require.NotNil(t, got.Players)
}

func TestMatchStatusService_Lookup_EmptyName(t *testing.T) {
	t.Parallel()

	_, err := NewMatchStatusService(&fakeStatsProvider{}, logging.NewNop()).Lookup(context.Background(), " ")
	require.ErrorIs(t, err, ErrInvalidInput)
}
