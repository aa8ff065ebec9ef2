package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
)

const (
	DefaultCloudSeriesLimit = 288
	MaxCloudSeriesLimit     = 2016
	DefaultHistoryLimit     = 100
	MaxHistoryLimit         = 1000
)

type PlayerHistory struct {
	Player    player.Player          `json:"player"`
	Snapshots []playerstats.Snapshot `json:"snapshots"`
}

// StatsQueryService serves the read side. Caching, when enabled, lives in
// the repositories it is given.
type StatsQueryService struct {
	playerRepo player.Repository
	statsRepo  playerstats.Repository
	cloudRepo  cloudstats.Repository
}

func NewStatsQueryService(playerRepo player.Repository, statsRepo playerstats.Repository, cloudRepo cloudstats.Repository) *StatsQueryService {
	return &StatsQueryService{
		playerRepo: playerRepo,
		statsRepo:  statsRepo,
		cloudRepo:  cloudRepo,
	}
}

func (s *StatsQueryService) ListPlayers(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.ListPlayers")
	defer span.End()

	items, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return items, nil
}

func (s *StatsQueryService) PlayerHistory(ctx context.Context, name string, limit int) (PlayerHistory, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.PlayerHistory")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return PlayerHistory{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	limit = clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit)

	p, exists, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return PlayerHistory{}, fmt.Errorf("lookup player %s: %w", name, err)
	}
	if !exists {
		return PlayerHistory{}, fmt.Errorf("%w: player %s is not tracked", ErrNotFound, name)
	}

	snapshots, err := s.statsRepo.ListByPlayer(ctx, p.ID, limit)
	if err != nil {
		return PlayerHistory{}, fmt.Errorf("list stats for player %s: %w", name, err)
	}
	return PlayerHistory{Player: p, Snapshots: snapshots}, nil
}

func (s *StatsQueryService) LatestCloud(ctx context.Context) (cloudstats.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.LatestCloud")
	defer span.End()

	item, exists, err := s.cloudRepo.Latest(ctx)
	if err != nil {
		return cloudstats.Snapshot{}, fmt.Errorf("latest cloud stats: %w", err)
	}
	if !exists {
		return cloudstats.Snapshot{}, fmt.Errorf("%w: no cloud stats recorded yet", ErrNotFound)
	}
	return item, nil
}

func (s *StatsQueryService) CloudSeries(ctx context.Context, limit int) ([]cloudstats.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsQueryService.CloudSeries")
	defer span.End()

	items, err := s.cloudRepo.ListRecent(ctx, clampLimit(limit, DefaultCloudSeriesLimit, MaxCloudSeriesLimit))
	if err != nil {
		return nil, fmt.Errorf("list cloud stats: %w", err)
	}
	return items, nil
}

func clampLimit(limit, fallback, max int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > max {
		return max
	}
	return limit
}
