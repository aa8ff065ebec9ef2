package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
	cloudstatsmock "github.com/blockfront-stats/tracker/internal/mocks/domain/cloudstats"
	playermock "github.com/blockfront-stats/tracker/internal/mocks/domain/player"
	playerstatsmock "github.com/blockfront-stats/tracker/internal/mocks/domain/playerstats"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"
)

func TestStatsQueryService_PlayerHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	playerRepo := playermock.NewRepository(t)
	statsRepo := playerstatsmock.NewRepository(t)
	cloudRepo := cloudstatsmock.NewRepository(t)

	steve := player.Player{ID: 3, UUID: "u-3", Name: "Steve"}
	rows := []playerstats.Snapshot{{ID: 10, PlayerID: 3}, {ID: 11, PlayerID: 3}}
	playerRepo.On("GetByName", mock.Anything, "steve").Return(steve, true, nil).Once()
	statsRepo.On("ListByPlayer", mock.Anything, int64(3), DefaultHistoryLimit).Return(rows, nil).Once()

	service := NewStatsQueryService(playerRepo, statsRepo, cloudRepo)
	got, err := service.PlayerHistory(ctx, "steve", 0)
	require.NoError(t, err)
	require.Equal(t, steve, got.Player)
	require.Len(t, got.Snapshots, 2)
}

func TestStatsQueryService_PlayerHistory_Untracked(t *testing.T) {
	t.Parallel()

	playerRepo := playermock.NewRepository(t)
	playerRepo.On("GetByName", mock.Anything, "ghost").Return(player.Player{}, false, nil).Once()

	service := NewStatsQueryService(playerRepo, playerstatsmock.NewRepository(t), cloudstatsmock.NewRepository(t))
	_, err := service.PlayerHistory(context.Background(), "ghost", 10)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestStatsQueryService_LatestCloud(t *testing.T) {
	t.Parallel()

	cloudRepo := cloudstatsmock.NewRepository(t)
	cloudRepo.On("Latest", mock.Anything).Return(cloudstats.Snapshot{}, false, nil).Once()
	cloudRepo.On("Latest", mock.Anything).Return(cloudstats.Snapshot{ID: 2, PlayersOnline: null.IntFrom(77)}, true, nil).Once()

	service := NewStatsQueryService(playermock.NewRepository(t), playerstatsmock.NewRepository(t), cloudRepo)

	_, err := service.LatestCloud(context.Background())
	require.ErrorIs(t, err, ErrNotFound)

	got, err := service.LatestCloud(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 77, got.PlayersOnline.Int64)
}

func TestStatsQueryService_CloudSeriesClampsLimit(t *testing.T) {
	t.Parallel()

	cloudRepo := cloudstatsmock.NewRepository(t)
	cloudRepo.On("ListRecent", mock.Anything, DefaultCloudSeriesLimit).Return([]cloudstats.Snapshot{}, nil).Once()
	cloudRepo.On("ListRecent", mock.Anything, MaxCloudSeriesLimit).Return([]cloudstats.Snapshot{}, nil).Once()

	service := NewStatsQueryService(playermock.NewRepository(t), playerstatsmock.NewRepository(t), cloudRepo)

	_, err := service.CloudSeries(context.Background(), -1)
	require.NoError(t, err)
	_, err = service.CloudSeries(context.Background(), 1_000_000)
	require.NoError(t, err)
}
