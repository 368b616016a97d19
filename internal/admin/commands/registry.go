package commands

import "github.com/udisondev/expmultiplier/internal/admin"

// RegisterAll registers all multiplier commands into the handler.
func RegisterAll(h *admin.Handler, deps Deps) {
	h.Register(NewSetMultiplier(deps))
	h.Register(NewClearMultiplier(deps))
	h.Register(NewMultiplierInfo(deps))
}
