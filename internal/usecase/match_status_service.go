package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
)

type MatchPlayer struct {
	Username string `json:"username"`
	Kills    int64  `json:"kills"`
	Deaths   int64  `json:"deaths"`
	Rank     string `json:"rank,omitempty"`
	Prestige int64  `json:"prestige"`
	Muted    bool   `json:"muted"`
}

// MatchStatus always carries a human-readable Message and Summary, also when
// the upstream could not be reached.
type MatchStatus struct {
	Name       string        `json:"name"`
	Online     bool          `json:"online"`
	InMatch    bool          `json:"in_match"`
	MaxPlayers int64         `json:"max_players,omitempty"`
	Players    []MatchPlayer `json:"players"`
	Message    string        `json:"message"`
	Summary    string        `json:"summary"`
}

type MatchStatusService struct {
	provider PlayerStatusProvider
	logger   *logging.Logger
}

func NewMatchStatusService(provider PlayerStatusProvider, logger *logging.Logger) *MatchStatusService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchStatusService{provider: provider, logger: logger.Named("match")}
}

// Lookup reports the live match of name. Only an empty name is an error.
func (s *MatchStatusService) Lookup(ctx context.Context, name string) (MatchStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchStatusService.Lookup")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return MatchStatus{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	status := MatchStatus{Name: name, Players: []MatchPlayer{}}

	payload, err := s.provider.FetchPlayerStatus(ctx, name)
	if err != nil {
		s.logger.WarnContext(ctx, "player status lookup failed", "name", name, "error", err)
		return failedMatchStatus(status), nil
	}
	record, ok := payload.Record()
	if !ok {
		return failedMatchStatus(status), nil
	}

	status.Online, _ = record.Bool("online")
	if !status.Online {
		status.Message = name + " is offline."
		status.Summary = "Player is offline."
		return status, nil
	}

	match, ok := record.Record("match")
	if !ok || len(match) == 0 {
		status.Message = "Name not found or player is not in a match."
		status.Summary = "No match data found for player."
		return status, nil
	}
	status.InMatch = true
	status.MaxPlayers, _ = match.Int("max_players")

	ids := matchPlayerIDs(match)
	if len(ids) > 0 {
		bulk, err := s.provider.FetchPlayersBulk(ctx, ids)
		if err != nil {
			s.logger.WarnContext(ctx, "match player fetch failed", "name", name, "players", len(ids), "error", err)
			return failedMatchStatus(status), nil
		}
		records, _ := bulk.Records()
		for _, item := range records {
			status.Players = append(status.Players, toMatchPlayer(item))
		}
	}

	status.Message = fmt.Sprintf("%s is in a match.", name)
	status.Summary = fmt.Sprintf("%d out of %d players in match.", len(status.Players), status.MaxPlayers)
	return status, nil
}

func failedMatchStatus(status MatchStatus) MatchStatus {
	status.Message = fmt.Sprintf("Something went wrong... Check if %s is a real player!", status.Name)
	status.Summary = "Failed to fetch match stats"
	return status
}

func matchPlayerIDs(match rawjson.Record) []string {
	entries, _ := match.List("players")
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		item, ok := entry.Record()
		if !ok {
			continue
		}
		if id, ok := item.String("uuid"); ok && strings.TrimSpace(id) != "" {
			out = append(out, strings.TrimSpace(id))
		}
	}
	return out
}

func toMatchPlayer(item rawjson.Record) MatchPlayer {
	out := MatchPlayer{}
	out.Username, _ = item.String("username")
	out.Kills, _ = item.Int("kills")
	out.Deaths, _ = item.Int("deaths")
	out.Rank, _ = item.String("rank")
	out.Prestige, _ = item.Int("prestige")

	if punishments, ok := item.Record("punishments"); ok {
		if active, ok := punishments.Record("active"); ok && len(active) > 0 {
			out.Muted = true
		}
	}
	return out
}
