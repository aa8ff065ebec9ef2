package cloudstats

import "context"

type Repository interface {
	AppendCloudStat(ctx context.Context, snapshot Snapshot) (int64, error)
	Latest(ctx context.Context) (Snapshot, bool, error)
	// ListRecent returns up to limit snapshots, oldest first.
	ListRecent(ctx context.Context, limit int) ([]Snapshot, error)
}
