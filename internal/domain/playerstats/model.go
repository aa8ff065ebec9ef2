package playerstats

import (
	"fmt"
	"time"
)

// Counters is the fixed set of per-player counters stored with every snapshot.
// Two snapshots are identical when their Counters compare equal.
type Counters struct {
	Kills              int64 `db:"kills" json:"kills"`
	Assists            int64 `db:"assists" json:"assists"`
	Deaths             int64 `db:"deaths" json:"deaths"`
	Headshots          int64 `db:"headshots" json:"headshots"`
	Backstabs          int64 `db:"backstabs" json:"backstabs"`
	NoScopes           int64 `db:"no_scopes" json:"no_scopes"`
	FirstBloods        int64 `db:"first_bloods" json:"first_bloods"`
	FireKills          int64 `db:"fire_kills" json:"fire_kills"`
	BotKills           int64 `db:"bot_kills" json:"bot_kills"`
	InfectedKills      int64 `db:"infected_kills" json:"infected_kills"`
	InfectedRoundsWon  int64 `db:"infected_rounds_won" json:"infected_rounds_won"`
	InfectedMatchesWon int64 `db:"infected_matches_won" json:"infected_matches_won"`
	VehicleKills       int64 `db:"vehicle_kills" json:"vehicle_kills"`
	HighestKillStreak  int64 `db:"highest_kill_streak" json:"highest_kill_streak"`
	HighestDeathStreak int64 `db:"highest_death_streak" json:"highest_death_streak"`
	Exp                int64 `db:"exp" json:"exp"`
	Prestige           int64 `db:"prestige" json:"prestige"`
	RifleXP            int64 `db:"rifle_xp" json:"rifle_xp"`
	LtRifleXP          int64 `db:"lt_rifle_xp" json:"lt_rifle_xp"`
	AssaultXP          int64 `db:"assault_xp" json:"assault_xp"`
	SupportXP          int64 `db:"support_xp" json:"support_xp"`
	MedicXP            int64 `db:"medic_xp" json:"medic_xp"`
	SniperXP           int64 `db:"sniper_xp" json:"sniper_xp"`
	GunnerXP           int64 `db:"gunner_xp" json:"gunner_xp"`
	AntiTankXP         int64 `db:"anti_tank_xp" json:"anti_tank_xp"`
	CommanderXP        int64 `db:"commander_xp" json:"commander_xp"`
	MatchKarma         int64 `db:"match_karma" json:"match_karma"`
	TotalGames         int64 `db:"total_games" json:"total_games"`
	MatchWins          int64 `db:"match_wins" json:"match_wins"`
	TimePlayed         int64 `db:"time_played" json:"time_played"`
}

type column struct {
	name string
	ref  func(*Counters) *int64
}

// columns lists every counter in storage order.
var columns = []column{
	{"kills", func(c *Counters) *int64 { return &c.Kills }},
	{"assists", func(c *Counters) *int64 { return &c.Assists }},
	{"deaths", func(c *Counters) *int64 { return &c.Deaths }},
	{"headshots", func(c *Counters) *int64 { return &c.Headshots }},
	{"backstabs", func(c *Counters) *int64 { return &c.Backstabs }},
	{"no_scopes", func(c *Counters) *int64 { return &c.NoScopes }},
	{"first_bloods", func(c *Counters) *int64 { return &c.FirstBloods }},
	{"fire_kills", func(c *Counters) *int64 { return &c.FireKills }},
	{"bot_kills", func(c *Counters) *int64 { return &c.BotKills }},
	{"infected_kills", func(c *Counters) *int64 { return &c.InfectedKills }},
	{"infected_rounds_won", func(c *Counters) *int64 { return &c.InfectedRoundsWon }},
	{"infected_matches_won", func(c *Counters) *int64 { return &c.InfectedMatchesWon }},
	{"vehicle_kills", func(c *Counters) *int64 { return &c.VehicleKills }},
	{"highest_kill_streak", func(c *Counters) *int64 { return &c.HighestKillStreak }},
	{"highest_death_streak", func(c *Counters) *int64 { return &c.HighestDeathStreak }},
	{"exp", func(c *Counters) *int64 { return &c.Exp }},
	{"prestige", func(c *Counters) *int64 { return &c.Prestige }},
	{"rifle_xp", func(c *Counters) *int64 { return &c.RifleXP }},
	{"lt_rifle_xp", func(c *Counters) *int64 { return &c.LtRifleXP }},
	{"assault_xp", func(c *Counters) *int64 { return &c.AssaultXP }},
	{"support_xp", func(c *Counters) *int64 { return &c.SupportXP }},
	{"medic_xp", func(c *Counters) *int64 { return &c.MedicXP }},
	{"sniper_xp", func(c *Counters) *int64 { return &c.SniperXP }},
	{"gunner_xp", func(c *Counters) *int64 { return &c.GunnerXP }},
	{"anti_tank_xp", func(c *Counters) *int64 { return &c.AntiTankXP }},
	{"commander_xp", func(c *Counters) *int64 { return &c.CommanderXP }},
	{"match_karma", func(c *Counters) *int64 { return &c.MatchKarma }},
	{"total_games", func(c *Counters) *int64 { return &c.TotalGames }},
	{"match_wins", func(c *Counters) *int64 { return &c.MatchWins }},
	{"time_played", func(c *Counters) *int64 { return &c.TimePlayed }},
}

var knownColumns = func() map[string]column {
	out := make(map[string]column, len(columns))
	for _, col := range columns {
		out[col.name] = col
	}
	return out
}()

// ColumnNames returns the counter column names in storage order.
func ColumnNames() []string {
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		out = append(out, col.name)
	}
	return out
}

// Fields is the sparse normalizer output keyed by column name. Omitted
// counters are stored as zero.
type Fields map[string]int64

// Counters materializes f, ignoring keys that are not counter columns.
func (f Fields) Counters() Counters {
	var out Counters
	for name, value := range f {
		col, ok := knownColumns[name]
		if !ok {
			continue
		}
		*col.ref(&out) = value
	}
	return out
}

// Values returns the counters in ColumnNames order.
func (c Counters) Values() []any {
	out := make([]any, 0, len(columns))
	for _, col := range columns {
		out = append(out, *col.ref(&c))
	}
	return out
}

// KDR is kills per death, nil when deaths is zero.
func (c Counters) KDR() *float64 {
	return ratio(c.Kills, c.Deaths)
}

// HSKR is headshots per kill, nil when kills is zero.
func (c Counters) HSKR() *float64 {
	return ratio(c.Headshots, c.Kills)
}

func ratio(num, den int64) *float64 {
	if den == 0 {
		return nil
	}
	v := float64(num) / float64(den)
	return &v
}

// Snapshot is one stored statistics record for a player.
type Snapshot struct {
	ID       int64
	PlayerID int64
	Date     time.Time
	Counters
}

// ShouldCompact reports whether the most recent of recent must be removed
// before incoming is appended. recent is ordered newest first; only a run of
// two identical snapshots matching incoming triggers compaction.
func ShouldCompact(recent []Counters, incoming Counters) bool {
	if len(recent) < 2 {
		return false
	}
	return recent[0] == incoming && recent[1] == incoming
}

// InvalidPlayerError is returned when a snapshot is appended without a
// resolved internal player id.
type InvalidPlayerError struct {
	PlayerID int64
}

func (e *InvalidPlayerError) Error() string {
	return fmt.Sprintf("invalid player id: %d", e.PlayerID)
}

func ValidatePlayerID(playerID int64) error {
	if playerID <= 0 {
		return &InvalidPlayerError{PlayerID: playerID}
	}
	return nil
}
