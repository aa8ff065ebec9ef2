package player

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Player is a tracked BlockFront account.
type Player struct {
	ID   int64
	UUID string
	Name string
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.UUID) == "" {
		return fmt.Errorf("player uuid is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// CanonicalExternalID turns a bare 32-char hex id into the dashed
// 8-4-4-4-12 form. Anything else is returned unchanged.
func CanonicalExternalID(raw string) string {
	if len(raw) != 32 {
		return raw
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return raw
	}
	return parsed.String()
}

// CompactExternalID strips dashes from a canonical id.
func CompactExternalID(raw string) string {
	return strings.ReplaceAll(raw, "-", "")
}

// ErrAlreadyExists reports a uuid or case-insensitive name collision.
var ErrAlreadyExists = errors.New("player already exists")
