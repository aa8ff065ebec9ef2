package cloudstats

import (
	"testing"

	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	"github.com/stretchr/testify/require"
)

func TestNormalize_ReadsModes(t *testing.T) {
	t.Parallel()

	got := Normalize(rawjson.Parse([]byte(`{"players_online": 812, "game_player_count": {"dom": 300, "tdm": 120, "inf": "44", "boot": null}}`)))

	require.Equal(t, int64(812), got.PlayersOnline.Int64)
	require.True(t, got.PlayersOnline.Valid)
	require.Equal(t, int64(300), got.PlayersIn(GameModeDomination).Int64)
	require.Equal(t, int64(44), got.PlayersIn(GameModeInfected).Int64)
	require.False(t, got.PlayersIn(GameModeGunGame).Valid)
	require.False(t, got.PlayersIn(GameModeBoot).Valid)
}

func TestNormalize_GameCountNotARecord(t *testing.T) {
	t.Parallel()

	got := Normalize(rawjson.Parse([]byte(`{"players_online": 5, "game_player_count": "unavailable"}`)))
	require.True(t, got.PlayersOnline.Valid)
	for _, mode := range AllGameModes {
		require.Falsef(t, got.PlayersIn(mode).Valid, "mode %s should be null", mode)
	}
}

func TestNormalize_NonRecordPayload(t *testing.T) {
	t.Parallel()

	got := Normalize(rawjson.Parse([]byte(`"maintenance"`)))
	require.False(t, got.PlayersOnline.Valid)
}
