package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
	"gopkg.in/guregu/null.v4"
)

func TestPlayerStatsRepository_CompactsIdenticalRun(t *testing.T) {
	players := NewPlayerRepository(player.Player{UUID: "u-1", Name: "Steve"})
	repo := NewPlayerStatsRepository(players)
	ctx := context.Background()

	ids := make([]int64, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := repo.AppendStat(ctx, 1, playerstats.Fields{"kills": 7})
		if err != nil {
			t.Fatalf("append stat: %v", err)
		}
		ids = append(ids, id)
	}

	rows, err := repo.ListByPlayer(ctx, 1, 0)
	if err != nil {
		t.Fatalf("list stats: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].ID != ids[0] || rows[1].ID != ids[2] {
		t.Fatalf("expected first and third ids kept, got %d and %d", rows[0].ID, rows[1].ID)
	}
}

func TestPlayerStatsRepository_DoesNotTouchOtherPlayers(t *testing.T) {
	players := NewPlayerRepository(
		player.Player{UUID: "u-1", Name: "Steve"},
		player.Player{UUID: "u-2", Name: "Alex"},
	)
	repo := NewPlayerStatsRepository(players)
	ctx := context.Background()

	mustAppend := func(playerID int64) {
		t.Helper()
		if _, err := repo.AppendStat(ctx, playerID, playerstats.Fields{"kills": 1}); err != nil {
			t.Fatalf("append stat: %v", err)
		}
	}
	mustAppend(1)
	mustAppend(2)
	mustAppend(1)
	mustAppend(2)

	for _, playerID := range []int64{1, 2} {
		rows, _ := repo.ListByPlayer(ctx, playerID, 0)
		if len(rows) != 2 {
			t.Fatalf("player %d: expected 2 rows, got %d", playerID, len(rows))
		}
	}
}

func TestPlayerStatsRepository_RejectsMissingPlayer(t *testing.T) {
	repo := NewPlayerStatsRepository(NewPlayerRepository())

	_, err := repo.AppendStat(context.Background(), 0, playerstats.Fields{})
	var invalid *playerstats.InvalidPlayerError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidPlayerError, got %v", err)
	}

	if _, err := repo.AppendStat(context.Background(), 9, playerstats.Fields{}); err == nil {
		t.Fatalf("expected error for unknown player")
	}
}

func TestPlayerRepository_UpdateNameUpserts(t *testing.T) {
	repo := NewPlayerRepository(player.Player{UUID: "abcd1234abcd1234abcd1234abcd1234", Name: "Old"})
	ctx := context.Background()

	if err := repo.UpdateName(ctx, "abcd1234-abcd-1234-abcd-1234abcd1234", "New"); err != nil {
		t.Fatalf("update name: %v", err)
	}
	if _, found, _ := repo.FindIDByName(ctx, "NEW"); !found {
		t.Fatalf("expected renamed player to be found case-insensitively")
	}

	if err := repo.UpdateName(ctx, "u-new", "Fresh"); err != nil {
		t.Fatalf("insert on update: %v", err)
	}
	ids, _ := repo.ListExternalIDs(ctx)
	if len(ids) != 2 || ids[1] != "u-new" {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if _, err := repo.Create(ctx, player.Player{UUID: "u-3", Name: "fresh"}); !errors.Is(err, player.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCloudStatsRepository_ListRecentOldestFirst(t *testing.T) {
	repo := NewCloudStatsRepository()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		if _, err := repo.AppendCloudStat(ctx, cloudstats.Snapshot{PlayersOnline: null.IntFrom(i)}); err != nil {
			t.Fatalf("append cloud stat: %v", err)
		}
	}

	rows, _ := repo.ListRecent(ctx, 2)
	if len(rows) != 2 || rows[0].PlayersOnline.Int64 != 2 || rows[1].PlayersOnline.Int64 != 3 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	latest, found, _ := repo.Latest(ctx)
	if !found || latest.PlayersOnline.Int64 != 3 {
		t.Fatalf("unexpected latest: %+v", latest)
	}
}
