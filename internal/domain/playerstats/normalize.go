package playerstats

import "github.com/blockfront-stats/tracker/internal/platform/rawjson"

var directFields = []string{
	"kills",
	"deaths",
	"assists",
	"infected_kills",
	"vehicle_kills",
	"bot_kills",
	"infected_rounds_won",
	"infected_matches_won",
	"highest_kill_streak",
	"highest_death_streak",
	"exp",
	"prestige",
	"total_games",
	"time_played",
	"no_scopes",
	"first_bloods",
	"fire_kills",
	"match_karma",
}

var renamedFields = map[string]string{
	"back_stabs": "backstabs",
	"head_shots": "headshots",
	"trophies":   "match_wins",
}

// classXPFields maps class_exp entry ids to their counter. Id 8 is unused upstream.
var classXPFields = map[int64]string{
	0: "rifle_xp",
	1: "lt_rifle_xp",
	2: "assault_xp",
	3: "support_xp",
	4: "medic_xp",
	5: "sniper_xp",
	6: "gunner_xp",
	7: "anti_tank_xp",
	9: "commander_xp",
}

// Normalize maps one bulk player record onto counter columns. Values of an
// unexpected type count as absent; a non-record input yields empty Fields.
func Normalize(raw rawjson.Value) Fields {
	out := Fields{}
	record, ok := raw.Record()
	if !ok {
		return out
	}

	for _, name := range directFields {
		if v, ok := record.Int(name); ok {
			out[name] = v
		}
	}
	for source, target := range renamedFields {
		if v, ok := record.Int(source); ok {
			out[target] = v
		}
	}

	entries, _ := record.List("class_exp")
	for _, entry := range entries {
		classRecord, ok := entry.Record()
		if !ok {
			continue
		}
		classID, ok := classRecord.Int("id")
		if !ok {
			continue
		}
		target, ok := classXPFields[classID]
		if !ok {
			continue
		}
		exp, _ := classRecord.Int("exp")
		out[target] = exp
	}

	return out
}
