// Package experience applies multipliers to experience flowing through the
// host's experience service.
package experience

import "github.com/udisondev/expmultiplier/internal/model"

// Service is the external experience-tracking service.
type Service interface {
	// Exp returns the player's current experience total.
	Exp(p *model.Player) int
	// SetExp overwrites the player's experience total.
	SetExp(p *model.Player, exp int, reason string)
	// AddExp adds to the player's experience total.
	AddExp(p *model.Player, exp int, reason string)
}

// ChangeEvent is a pending experience change. Handlers may rewrite Amount
// before the host commits it; setting it to zero suppresses the change.
type ChangeEvent struct {
	Player *model.Player
	Amount int
}
