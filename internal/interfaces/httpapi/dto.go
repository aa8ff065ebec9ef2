package httpapi

import (
	"context"
	"time"

	"github.com/blockfront-stats/tracker/internal/domain/cloudstats"
	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/domain/playerstats"
	"gopkg.in/guregu/null.v4"
)

type trackPlayerRequest struct {
	Name string `json:"name" validate:"required,min=3,max=16"`
}

type playerDTO struct {
	ID   int64  `json:"id"`
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

type statSnapshotDTO struct {
	ID   int64     `json:"id"`
	Date time.Time `json:"date"`
	playerstats.Counters
	KDR  *float64 `json:"kdr"`
	HSKR *float64 `json:"hskr"`
}

type playerHistoryDTO struct {
	Player    playerDTO         `json:"player"`
	Snapshots []statSnapshotDTO `json:"snapshots"`
	Message   string            `json:"message,omitempty"`
}

type cloudSnapshotDTO struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	PlayersOnline null.Int  `json:"players_online"`
	PlayersInDom  null.Int  `json:"players_in_dom"`
	PlayersInTDM  null.Int  `json:"players_in_tdm"`
	PlayersInInf  null.Int  `json:"players_in_inf"`
	PlayersInGG   null.Int  `json:"players_in_gg"`
	PlayersInTTT  null.Int  `json:"players_in_ttt"`
	PlayersInBoot null.Int  `json:"players_in_boot"`
}

type latestCloudDTO struct {
	Snapshot           *cloudSnapshotDTO `json:"snapshot"`
	MinutesSinceUpdate *int64            `json:"minutes_since_update,omitempty"`
	Message            string            `json:"message,omitempty"`
}

type cloudSeriesDTO struct {
	Items   []cloudSnapshotDTO `json:"items"`
	Message string             `json:"message,omitempty"`
}

type playerListDTO struct {
	Items []playerDTO `json:"items"`
}

func playerToDTO(ctx context.Context, v player.Player) playerDTO {
	_, span := startSpan(ctx, "httpapi.playerToDTO")
	defer span.End()

	return playerDTO{ID: v.ID, UUID: v.UUID, Name: v.Name}
}

func statSnapshotToDTO(v playerstats.Snapshot) statSnapshotDTO {
	return statSnapshotDTO{
		ID:       v.ID,
		Date:     v.Date.UTC(),
		Counters: v.Counters,
		KDR:      v.KDR(),
		HSKR:     v.HSKR(),
	}
}

func cloudSnapshotToDTO(v cloudstats.Snapshot) cloudSnapshotDTO {
	return cloudSnapshotDTO{
		ID:            v.ID,
		Date:          v.Date.UTC(),
		PlayersOnline: v.PlayersOnline,
		PlayersInDom:  v.PlayersInDom,
		PlayersInTDM:  v.PlayersInTDM,
		PlayersInInf:  v.PlayersInInf,
		PlayersInGG:   v.PlayersInGG,
		PlayersInTTT:  v.PlayersInTTT,
		PlayersInBoot: v.PlayersInBoot,
	}
}

// minutesSince floors the elapsed time to whole minutes, never negative.
func minutesSince(then, now time.Time) int64 {
	elapsed := now.Sub(then)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / time.Minute)
}
