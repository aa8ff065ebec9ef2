package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	qb "github.com/blockfront-stats/tracker/internal/platform/querybuilder"
	"github.com/jmoiron/sqlx"
)

type CloudStatsRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

var cloudStatSelectColumns = []string{
	"id",
	"date",
	"players_online",
	"players_in_dom",
	"players_in_tdm",
	"players_in_inf",
	"players_in_gg",
	"players_in_ttt",
	"players_in_boot",
}

func NewCloudStatsRepository(db *sqlx.DB) *CloudStatsRepository {
	return &CloudStatsRepository{db: db, now: utcNow}
}

func (r *CloudStatsRepository) AppendCloudStat(ctx context.Context, snapshot cloudstats.Snapshot) (int64, error) {
	cols, vals, err := qb.ColumnsAndValues(snapshot)
	if err != nil {
		return 0, fmt.Errorf("map cloud stat columns: %w", err)
	}
	query, args, err := qb.InsertInto("cloud_stats").
		Columns(append([]string{"date"}, cols...)...).
		Values(append([]any{r.now()}, vals...)...).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert cloud stat query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("insert cloud stat: %w", err)
	}
	return id, nil
}

func (r *CloudStatsRepository) Latest(ctx context.Context) (cloudstats.Snapshot, bool, error) {
	query, args, err := qb.Select(cloudStatSelectColumns...).
		From("cloud_stats").
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return cloudstats.Snapshot{}, false, fmt.Errorf("build select latest cloud stat query: %w", err)
	}

	var out cloudstats.Snapshot
	if err := r.db.GetContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		if isNotFound(err) {
			return cloudstats.Snapshot{}, false, nil
		}
		return cloudstats.Snapshot{}, false, fmt.Errorf("select latest cloud stat: %w", err)
	}
	return out, true, nil
}

func (r *CloudStatsRepository) ListRecent(ctx context.Context, limit int) ([]cloudstats.Snapshot, error) {
	query, args, err := qb.Select(cloudStatSelectColumns...).
		From("cloud_stats").
		OrderBy("id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select cloud stats query: %w", err)
	}

	var rows []cloudstats.Snapshot
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select cloud stats: %w", err)
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
