package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
	qb "github.com/blockfront-stats/tracker/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type PlayerStatsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

type recentStatRow struct {
	StatID int64 `db:"stat_id"`
	playerstats.Counters
}

type statTableModel struct {
	StatID   int64     `db:"stat_id"`
	PlayerID int64     `db:"player_id"`
	Date     time.Time `db:"date"`
	playerstats.Counters
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db, now: utcNow}
}

func (r *PlayerStatsRepository) AppendStat(ctx context.Context, playerID int64, fields playerstats.Fields) (int64, error) {
	if err := playerstats.ValidatePlayerID(playerID); err != nil {
		return 0, err
	}
	counters := fields.Counters()

	var statID int64
	err := withTx(ctx, r.db, "player stat append", func(tx *sqlx.Tx) error {
		recentQuery, recentArgs, err := qb.Select(append([]string{"stat_id"}, playerstats.ColumnNames()...)...).
			From("player_stats").
			Where(qb.Eq("player_id", playerID)).
			OrderBy("stat_id DESC").
			Limit(2).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build select recent stats query: %w", err)
		}

		var recent []recentStatRow
		if err := tx.SelectContext(ctx, &recent, tx.Rebind(recentQuery), recentArgs...); err != nil {
			return fmt.Errorf("select recent stats: %w", err)
		}

		recentCounters := make([]playerstats.Counters, 0, len(recent))
		for _, row := range recent {
			recentCounters = append(recentCounters, row.Counters)
		}
		if playerstats.ShouldCompact(recentCounters, counters) {
			deleteQuery, deleteArgs, err := qb.DeleteFrom("player_stats").
				Where(qb.Eq("stat_id", recent[0].StatID)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build delete stat query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, tx.Rebind(deleteQuery), deleteArgs...); err != nil {
				return fmt.Errorf("delete compacted stat %d: %w", recent[0].StatID, err)
			}
		}

		insertQuery, insertArgs, err := qb.InsertInto("player_stats").
			Columns(append([]string{"player_id", "date"}, playerstats.ColumnNames()...)...).
			Values(append([]any{playerID, r.now()}, counters.Values()...)...).
			Suffix("RETURNING stat_id").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert stat query: %w", err)
		}
		if err := tx.GetContext(ctx, &statID, tx.Rebind(insertQuery), insertArgs...); err != nil {
			return fmt.Errorf("insert stat: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return statID, nil
}

// ListByPlayer returns up to limit of the newest snapshots, oldest first.
// A limit <= 0 returns the full history.
func (r *PlayerStatsRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]playerstats.Snapshot, error) {
	query, args, err := qb.Select(statSelectColumns()...).
		From("player_stats").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("stat_id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select stats by player query: %w", err)
	}

	var rows []statTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select stats by player: %w", err)
	}

	out := make([]playerstats.Snapshot, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row.toDomain()
	}
	return out, nil
}

func (r *PlayerStatsRepository) Latest(ctx context.Context, playerID int64) (playerstats.Snapshot, bool, error) {
	query, args, err := qb.Select(statSelectColumns()...).
		From("player_stats").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("stat_id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return playerstats.Snapshot{}, false, fmt.Errorf("build select latest stat query: %w", err)
	}

	var row statTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return playerstats.Snapshot{}, false, nil
		}
		return playerstats.Snapshot{}, false, fmt.Errorf("select latest stat: %w", err)
	}
	return row.toDomain(), true, nil
}

func statSelectColumns() []string {
	return append([]string{"stat_id", "player_id", "date"}, playerstats.ColumnNames()...)
}

func (m statTableModel) toDomain() playerstats.Snapshot {
	return playerstats.Snapshot{
		ID:       m.StatID,
		PlayerID: m.PlayerID,
		Date:     m.Date,
		Counters: m.Counters,
	}
}
