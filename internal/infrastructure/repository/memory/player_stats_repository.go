package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
)

type PlayerStatsRepository struct {
	mu      sync.RWMutex
	players *PlayerRepository
	nextID  int64
	rows    []playerstats.Snapshot
	now     func() time.Time
}

// NewPlayerStatsRepository keeps snapshots in insertion order. When players
// is set, appends for unknown player ids are rejected like a foreign key would.
func NewPlayerStatsRepository(players *PlayerRepository) *PlayerStatsRepository {
	return &PlayerStatsRepository{
		players: players,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *PlayerStatsRepository) AppendStat(_ context.Context, playerID int64, fields playerstats.Fields) (int64, error) {
	if err := playerstats.ValidatePlayerID(playerID); err != nil {
		return 0, err
	}
	if r.players != nil && !r.players.exists(playerID) {
		return 0, fmt.Errorf("append stat: player %d does not exist", playerID)
	}
	counters := fields.Counters()

	r.mu.Lock()
	defer r.mu.Unlock()

	recentIdx := make([]int, 0, 2)
	for i := len(r.rows) - 1; i >= 0 && len(recentIdx) < 2; i-- {
		if r.rows[i].PlayerID == playerID {
			recentIdx = append(recentIdx, i)
		}
	}
	recent := make([]playerstats.Counters, 0, len(recentIdx))
	for _, idx := range recentIdx {
		recent = append(recent, r.rows[idx].Counters)
	}
	if playerstats.ShouldCompact(recent, counters) {
		idx := recentIdx[0]
		r.rows = append(r.rows[:idx], r.rows[idx+1:]...)
	}

	r.nextID++
	r.rows = append(r.rows, playerstats.Snapshot{
		ID:       r.nextID,
		PlayerID: playerID,
		Date:     r.now(),
		Counters: counters,
	})
	return r.nextID, nil
}

func (r *PlayerStatsRepository) ListByPlayer(_ context.Context, playerID int64, limit int) ([]playerstats.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.Snapshot, 0)
	for _, row := range r.rows {
		if row.PlayerID == playerID {
			out = append(out, row)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *PlayerStatsRepository) Latest(_ context.Context, playerID int64) (playerstats.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].PlayerID == playerID {
			return r.rows[i], true, nil
		}
	}
	return playerstats.Snapshot{}, false, nil
}
