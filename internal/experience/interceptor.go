package experience

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// ReasonMultiplier is the audit reason written with rescaled totals.
const ReasonMultiplier = "experience multiplier applied"

// MultiplierSource resolves the multiplier in effect for a player.
type MultiplierSource interface {
	EffectiveMultiplier(id uuid.UUID) float64
}

// Interceptor rewrites experience-change events by the effective multiplier.
type Interceptor struct {
	source    MultiplierSource
	service   Service
	skipUnity bool
}

// NewInterceptor creates an interceptor. With skipUnity set, events for
// players whose multiplier is exactly 1.0 pass through untouched.
func NewInterceptor(source MultiplierSource, service Service, skipUnity bool) *Interceptor {
	return &Interceptor{
		source:    source,
		service:   service,
		skipUnity: skipUnity,
	}
}

// OnExperienceChange rescales the player's experience total to
// floor(current * multiplier) and suppresses the event's own delta.
// Returns false when the event was left untouched.
func (i *Interceptor) OnExperienceChange(ev *ChangeEvent) bool {
	if ev == nil || ev.Player == nil {
		return false
	}

	factor := i.source.EffectiveMultiplier(ev.Player.ID())
	if i.skipUnity && factor == multiplier.Unity {
		return false
	}

	current := i.service.Exp(ev.Player)
	newExp := multiplier.Scale(current, factor)
	i.service.SetExp(ev.Player, newExp, ReasonMultiplier)
	ev.Amount = 0

	slog.Info("experience multiplier applied",
		"player", ev.Player.Name(),
		"multiplier", factor,
		"exp", current,
		"newExp", newExp)

	return true
}
