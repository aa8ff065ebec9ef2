package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p Player) (Player, error)
	GetByName(ctx context.Context, name string) (Player, bool, error)
	// FindIDByName matches name case-insensitively.
	FindIDByName(ctx context.Context, name string) (int64, bool, error)
	// UpdateName sets the display name for externalID, inserting the player when unknown.
	UpdateName(ctx context.Context, externalID, name string) error
	ListExternalIDs(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]Player, error)
}
