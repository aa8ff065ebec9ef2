package memory

import (
	"context"
	"sync"
	"time"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
)

type CloudStatsRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []cloudstats.Snapshot
	now    func() time.Time
}

func NewCloudStatsRepository() *CloudStatsRepository {
	return &CloudStatsRepository{now: func() time.Time { return time.Now().UTC() }}
}

func (r *CloudStatsRepository) AppendCloudStat(_ context.Context, snapshot cloudstats.Snapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	snapshot.ID = r.nextID
	snapshot.Date = r.now()
	r.rows = append(r.rows, snapshot)
	return snapshot.ID, nil
}

func (r *CloudStatsRepository) Latest(_ context.Context) (cloudstats.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.rows) == 0 {
		return cloudstats.Snapshot{}, false, nil
	}
	return r.rows[len(r.rows)-1], true, nil
}

func (r *CloudStatsRepository) ListRecent(_ context.Context, limit int) ([]cloudstats.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := 0
	if limit > 0 && len(r.rows) > limit {
		start = len(r.rows) - limit
	}
	return append([]cloudstats.Snapshot(nil), r.rows[start:]...), nil
}
