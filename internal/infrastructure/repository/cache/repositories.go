package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	basecache "github.com/blockfront-stats/tracker/internal/platform/cache"
)

const (
	cloudLatestKey     = "cloud:latest"
	cloudRecentPrefix  = "cloud:recent:"
	playerListKey      = "player:list"
	playerByNamePrefix = "player:name:"
)

type CloudStatsRepository struct {
	next   cloudstats.Repository
	latest *basecache.Store[cachedCloudLatest]
	recent *basecache.Store[[]cloudstats.Snapshot]
}

type cachedCloudLatest struct {
	value  cloudstats.Snapshot
	exists bool
}

func NewCloudStatsRepository(next cloudstats.Repository, ttl time.Duration) *CloudStatsRepository {
	return &CloudStatsRepository{
		next:   next,
		latest: basecache.NewStore[cachedCloudLatest](ttl),
		recent: basecache.NewStore[[]cloudstats.Snapshot](ttl),
	}
}

func (r *CloudStatsRepository) AppendCloudStat(ctx context.Context, snapshot cloudstats.Snapshot) (int64, error) {
	id, err := r.next.AppendCloudStat(ctx, snapshot)
	if err != nil {
		return 0, err
	}
	r.latest.Delete(ctx, cloudLatestKey)
	r.recent.DeletePrefix(ctx, cloudRecentPrefix)
	return id, nil
}

func (r *CloudStatsRepository) Latest(ctx context.Context) (cloudstats.Snapshot, bool, error) {
	cached, err := r.latest.GetOrLoad(ctx, cloudLatestKey, func(ctx context.Context) (cachedCloudLatest, error) {
		item, exists, err := r.next.Latest(ctx)
		if err != nil {
			return cachedCloudLatest{}, err
		}
		return cachedCloudLatest{value: item, exists: exists}, nil
	})
	if err != nil {
		return cloudstats.Snapshot{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *CloudStatsRepository) ListRecent(ctx context.Context, limit int) ([]cloudstats.Snapshot, error) {
	key := cloudRecentPrefix + strconv.Itoa(limit)
	items, err := r.recent.GetOrLoad(ctx, key, func(ctx context.Context) ([]cloudstats.Snapshot, error) {
		items, err := r.next.ListRecent(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]cloudstats.Snapshot(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]cloudstats.Snapshot(nil), items...), nil
}

type PlayerRepository struct {
	next   player.Repository
	list   *basecache.Store[[]player.Player]
	byName *basecache.Store[cachedPlayerByName]
}

type cachedPlayerByName struct {
	value  player.Player
	exists bool
}

func NewPlayerRepository(next player.Repository, ttl time.Duration) *PlayerRepository {
	return &PlayerRepository{
		next:   next,
		list:   basecache.NewStore[[]player.Player](ttl),
		byName: basecache.NewStore[cachedPlayerByName](ttl),
	}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (player.Player, error) {
	created, err := r.next.Create(ctx, p)
	if err != nil {
		return player.Player{}, err
	}
	r.invalidate(ctx)
	return created, nil
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	cached, err := r.byName.GetOrLoad(ctx, playerByNameKey(name), func(ctx context.Context) (cachedPlayerByName, error) {
		item, exists, err := r.next.GetByName(ctx, name)
		if err != nil {
			return cachedPlayerByName{}, err
		}
		return cachedPlayerByName{value: item, exists: exists}, nil
	})
	if err != nil {
		return player.Player{}, false, err
	}
	return cached.value, cached.exists, nil
}

// FindIDByName is not cached. The ingestion cycle renames players right
// before resolving them and must see its own writes.
func (r *PlayerRepository) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	return r.next.FindIDByName(ctx, name)
}

func (r *PlayerRepository) UpdateName(ctx context.Context, externalID, name string) error {
	if err := r.next.UpdateName(ctx, externalID, name); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *PlayerRepository) ListExternalIDs(ctx context.Context) ([]string, error) {
	return r.next.ListExternalIDs(ctx)
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	items, err := r.list.GetOrLoad(ctx, playerListKey, func(ctx context.Context) ([]player.Player, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]player.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]player.Player(nil), items...), nil
}

func (r *PlayerRepository) invalidate(ctx context.Context) {
	r.list.Delete(ctx, playerListKey)
	r.byName.DeletePrefix(ctx, playerByNamePrefix)
}

func playerByNameKey(name string) string {
	return playerByNamePrefix + strings.ToLower(strings.TrimSpace(name))
}
