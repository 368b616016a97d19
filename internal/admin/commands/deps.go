// Package commands implements the multiplier operator commands.
package commands

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/model"
	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// PlayerDirectory provides online player lookup for commands.
// Interface to avoid depending on the host's directory implementation.
type PlayerDirectory interface {
	// FindByName finds an online player by name (case-insensitive).
	FindByName(name string) *model.Player
	// OnlineNames returns names of all online players.
	OnlineNames() []string
}

// Store is the multiplier state the commands mutate.
type Store interface {
	SetGlobal(factor float64, duration time.Duration) error
	SetPlayer(id uuid.UUID, factor float64, duration time.Duration) error
	ClearPlayer(id uuid.UUID) bool
	Global() multiplier.Multiplier
	Player(id uuid.UUID) (multiplier.Multiplier, bool)
	Now() time.Time
}

// ExpGranter adds experience through the experience service.
type ExpGranter interface {
	AddExp(p *model.Player, exp int, reason string)
}

// Messages renders catalog messages.
type Messages interface {
	Format(key string, kv ...string) string
}

// Deps bundles what the commands need.
type Deps struct {
	Store      Store
	Players    PlayerDirectory
	Exp        ExpGranter
	Messages   Messages
	Permission string
	// BonusExp is granted to a player when a personal multiplier is set (0 = off).
	BonusExp int
}

// ErrPlayerNotFound is the cause of a rejection naming an unknown or offline player.
var ErrPlayerNotFound = errors.New("player not found")
