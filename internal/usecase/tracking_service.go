package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/blockfront-stats/tracker/internal/domain/player"
	"github.com/blockfront-stats/tracker/internal/platform/logging"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)

type TrackingService struct {
	resolver   IdentityResolver
	playerRepo player.Repository
	logger     *logging.Logger
}

func NewTrackingService(resolver IdentityResolver, playerRepo player.Repository, logger *logging.Logger) *TrackingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrackingService{
		resolver:   resolver,
		playerRepo: playerRepo,
		logger:     logger.Named("tracking"),
	}
}

// TrackPlayer adds name to the polled roster.
func (s *TrackingService) TrackPlayer(ctx context.Context, name string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackingService.TrackPlayer")
	defer span.End()

	name = strings.TrimSpace(name)
	if !usernamePattern.MatchString(name) {
		return player.Player{}, fmt.Errorf("%w: name must be 3-16 letters, digits or underscores", ErrInvalidInput)
	}

	_, exists, err := s.playerRepo.GetByName(ctx, name)
	if err != nil {
		return player.Player{}, fmt.Errorf("lookup player %s: %w", name, err)
	}
	if exists {
		return player.Player{}, fmt.Errorf("%w: player %s is already tracked", ErrConflict, name)
	}

	identity, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return player.Player{}, fmt.Errorf("resolve player %s: %w", name, err)
	}

	p := player.Player{
		UUID: player.CanonicalExternalID(strings.TrimSpace(identity.ExternalID)),
		Name: strings.TrimSpace(identity.Name),
	}
	if p.Name == "" {
		p.Name = name
	}
	if err := p.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created, err := s.playerRepo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, player.ErrAlreadyExists) {
			return player.Player{}, fmt.Errorf("%w: player %s is already tracked", ErrConflict, p.Name)
		}
		return player.Player{}, fmt.Errorf("create player %s: %w", p.Name, err)
	}
	s.logger.InfoContext(ctx, "tracking player", "name", created.Name, "uuid", created.UUID, "id", created.ID)
	return created, nil
}
