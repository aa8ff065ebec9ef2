package playerstats

import "context"

type Repository interface {
	// AppendStat stores fields as the newest snapshot for playerID, removing
	// the middle row when it would complete a run of three identical snapshots.
	AppendStat(ctx context.Context, playerID int64, fields Fields) (int64, error)
	ListByPlayer(ctx context.Context, playerID int64, limit int) ([]Snapshot, error)
	Latest(ctx context.Context, playerID int64) (Snapshot, bool, error)
}
