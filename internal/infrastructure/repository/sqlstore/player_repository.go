package sqlstore

import (
	"context"
	"fmt"

	"github.com/blockfront-stats/tracker/internal/domain/player"
	qb "github.com/blockfront-stats/tracker/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type PlayerRepository struct {
	db *sqlx.DB
}

type playerTableModel struct {
	ID   int64  `db:"id"`
	UUID string `db:"uuid"`
	Name string `db:"name"`
}

var playerSelectColumns = []string{"id", "uuid", "name"}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) (player.Player, error) {
	query, args, err := qb.InsertInto("players").
		Columns("uuid", "name").
		Values(p.UUID, p.Name).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return player.Player{}, fmt.Errorf("build insert player query: %w", err)
	}

	if err := r.db.GetContext(ctx, &p.ID, r.db.Rebind(query), args...); err != nil {
		if isUniqueViolation(err) {
			return player.Player{}, fmt.Errorf("%w: %s", player.ErrAlreadyExists, p.Name)
		}
		return player.Player{}, fmt.Errorf("insert player: %w", err)
	}
	return p, nil
}

func (r *PlayerRepository) GetByName(ctx context.Context, name string) (player.Player, bool, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").
		Where(qb.EqFold("name", name)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player by name query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player by name: %w", err)
	}
	return player.Player{ID: row.ID, UUID: row.UUID, Name: row.Name}, true, nil
}

func (r *PlayerRepository) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	query, args, err := qb.Select("id").From("players").
		Where(qb.EqFold("name", name)).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build select player id by name query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("select player id by name: %w", err)
	}
	return id, true, nil
}

func (r *PlayerRepository) UpdateName(ctx context.Context, externalID, name string) error {
	canonical := player.CanonicalExternalID(externalID)
	compact := player.CompactExternalID(canonical)

	return withTx(ctx, r.db, "player name update", func(tx *sqlx.Tx) error {
		updateQuery, updateArgs, err := qb.Update("players").
			Set("name", name).
			Where(qb.In("uuid", stringSliceToAny([]string{canonical, compact}))).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build update player name query: %w", err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(updateQuery), updateArgs...)
		if err != nil {
			return fmt.Errorf("update player name: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read updated player rows: %w", err)
		}
		if affected > 0 {
			return nil
		}

		insertQuery, insertArgs, err := qb.InsertInto("players").
			Columns("uuid", "name").
			Values(canonical, name).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build insert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(insertQuery), insertArgs...); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", player.ErrAlreadyExists, name)
			}
			return fmt.Errorf("insert player on name update: %w", err)
		}
		return nil
	})
}

func (r *PlayerRepository) ListExternalIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("uuid").From("players").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player uuids query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select player uuids: %w", err)
	}
	return out, nil
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select(playerSelectColumns...).From("players").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{ID: row.ID, UUID: row.UUID, Name: row.Name})
	}
	return out, nil
}
