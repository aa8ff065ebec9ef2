package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blockfront-stats/tracker/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	nextID  int64
	players []player.Player
}

func NewPlayerRepository(seed ...player.Player) *PlayerRepository {
	r := &PlayerRepository{}
	for _, p := range seed {
		r.nextID++
		p.ID = r.nextID
		r.players = append(r.players, p)
	}
	return r
}

func (r *PlayerRepository) Create(_ context.Context, p player.Player) (player.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.players {
		if existing.UUID == p.UUID || strings.EqualFold(existing.Name, p.Name) {
			return player.Player{}, fmt.Errorf("%w: %s", player.ErrAlreadyExists, p.Name)
		}
	}

	r.nextID++
	p.ID = r.nextID
	r.players = append(r.players, p)
	return p, nil
}

func (r *PlayerRepository) GetByName(_ context.Context, name string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *PlayerRepository) FindIDByName(ctx context.Context, name string) (int64, bool, error) {
	p, found, err := r.GetByName(ctx, name)
	return p.ID, found, err
}

func (r *PlayerRepository) UpdateName(_ context.Context, externalID, name string) error {
	canonical := player.CanonicalExternalID(externalID)
	compact := player.CompactExternalID(canonical)

	r.mu.Lock()
	defer r.mu.Unlock()

	updated := false
	for i := range r.players {
		if r.players[i].UUID == canonical || r.players[i].UUID == compact {
			r.players[i].Name = name
			updated = true
		}
	}
	if updated {
		return nil
	}

	for _, existing := range r.players {
		if strings.EqualFold(existing.Name, name) {
			return fmt.Errorf("%w: %s", player.ErrAlreadyExists, name)
		}
	}
	r.nextID++
	r.players = append(r.players, player.Player{ID: r.nextID, UUID: canonical, Name: name})
	return nil
}

func (r *PlayerRepository) ListExternalIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p.UUID)
	}
	return out, nil
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]player.Player(nil), r.players...), nil
}

func (r *PlayerRepository) exists(playerID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
