package cloudstats

import (
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	"gopkg.in/guregu/null.v4"
)

type GameMode string

const (
	GameModeDomination     GameMode = "dom"
	GameModeTeamDeathmatch GameMode = "tdm"
	GameModeInfected       GameMode = "inf"
	GameModeGunGame        GameMode = "gg"
	GameModeTTT            GameMode = "ttt"
	GameModeBoot           GameMode = "boot"
)

var AllGameModes = []GameMode{
	GameModeDomination,
	GameModeTeamDeathmatch,
	GameModeInfected,
	GameModeGunGame,
	GameModeTTT,
	GameModeBoot,
}

// Snapshot is one server-wide population sample. Counters the upstream did
// not report stay null.
type Snapshot struct {
	ID            int64     `db:"id,readonly" json:"id"`
	Date          time.Time `db:"date,readonly" json:"date"`
	PlayersOnline null.Int  `db:"players_online" json:"players_online"`
	PlayersInDom  null.Int  `db:"players_in_dom" json:"players_in_dom"`
	PlayersInTDM  null.Int  `db:"players_in_tdm" json:"players_in_tdm"`
	PlayersInInf  null.Int  `db:"players_in_inf" json:"players_in_inf"`
	PlayersInGG   null.Int  `db:"players_in_gg" json:"players_in_gg"`
	PlayersInTTT  null.Int  `db:"players_in_ttt" json:"players_in_ttt"`
	PlayersInBoot null.Int  `db:"players_in_boot" json:"players_in_boot"`
}

// PlayersIn returns the count for mode.
func (s Snapshot) PlayersIn(mode GameMode) null.Int {
	switch mode {
	case GameModeDomination:
		return s.PlayersInDom
	case GameModeTeamDeathmatch:
		return s.PlayersInTDM
	case GameModeInfected:
		return s.PlayersInInf
	case GameModeGunGame:
		return s.PlayersInGG
	case GameModeTTT:
		return s.PlayersInTTT
	case GameModeBoot:
		return s.PlayersInBoot
	default:
		return null.Int{}
	}
}

// Normalize reads players_online and game_player_count from a cloud_data
// payload. A game_player_count that is not a record counts as empty.
func Normalize(raw rawjson.Value) Snapshot {
	var out Snapshot
	record, ok := raw.Record()
	if !ok {
		return out
	}

	out.PlayersOnline = intField(record, "players_online")
	perMode, _ := record.Record("game_player_count")
	out.PlayersInDom = intField(perMode, string(GameModeDomination))
	out.PlayersInTDM = intField(perMode, string(GameModeTeamDeathmatch))
	out.PlayersInInf = intField(perMode, string(GameModeInfected))
	out.PlayersInGG = intField(perMode, string(GameModeGunGame))
	out.PlayersInTTT = intField(perMode, string(GameModeTTT))
	out.PlayersInBoot = intField(perMode, string(GameModeBoot))
	return out
}

func intField(record rawjson.Record, key string) null.Int {
	if v, ok := record.Int(key); ok {
		return null.IntFrom(v)
	}
	return null.Int{}
}
