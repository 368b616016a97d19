package plugin

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// persistTimeout bounds a single repository write.
const persistTimeout = 5 * time.Second

// Repository persists multiplier state across restarts.
type Repository interface {
	LoadSnapshot(ctx context.Context) (multiplier.Snapshot, error)
	SaveGlobal(ctx context.Context, m multiplier.Multiplier) error
	SavePlayer(ctx context.Context, id uuid.UUID, m multiplier.Multiplier) error
	DeletePlayer(ctx context.Context, id uuid.UUID) error
}

// storeEvents receives store mutations: it notifies players and marks
// changed state for the persister.
type storeEvents struct {
	p *Plugin
}

func (e *storeEvents) GlobalChanged(multiplier.Multiplier) {
	if w := e.p.persister; w != nil {
		w.markGlobal()
	}
}

func (e *storeEvents) PlayerSet(id uuid.UUID, _ multiplier.Multiplier) {
	e.markPlayer(id)
}

func (e *storeEvents) PlayerCleared(id uuid.UUID) {
	e.markPlayer(id)
}

func (e *storeEvents) PlayerExpired(id uuid.UUID) {
	e.markPlayer(id)

	if !e.p.players.SendTo(id, e.p.messages.Format("player_multiplier_ended")) {
		slog.Debug("multiplier end notice dropped, player offline", "player", id)
	}
}

func (e *storeEvents) markPlayer(id uuid.UUID) {
	if w := e.p.persister; w != nil {
		w.markPlayer(id)
	}
}
