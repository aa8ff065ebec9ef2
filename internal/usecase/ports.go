package usecase

import (
	"context"

	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
)

// StatsProvider is the read side of the BlockFront API used by the poller.
type StatsProvider interface {
	FetchCloudData(ctx context.Context) (rawjson.Value, error)
	FetchPlayersBulk(ctx context.Context, ids []string) (rawjson.Value, error)
}

type PlayerStatusProvider interface {
	FetchPlayerStatus(ctx context.Context, name string) (rawjson.Value, error)
	FetchPlayersBulk(ctx context.Context, ids []string) (rawjson.Value, error)
}

type ResolvedIdentity struct {
	ExternalID string
	Name       string
}

// IdentityResolver maps a username to an account id, or ErrNotFound.
type IdentityResolver interface {
	Resolve(ctx context.Context, name string) (ResolvedIdentity, error)
}
