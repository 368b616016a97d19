package commands

import (
	"fmt"
	"strings"

	"github.com/udisondev/expmultiplier/internal/admin"
	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// ClearMultiplier handles /clearMultiplier <player|all>.
// "all" resets the global multiplier to 1.0; a player name drops the override.
type ClearMultiplier struct {
	deps Deps
}

// NewClearMultiplier creates the clearMultiplier command handler.
func NewClearMultiplier(deps Deps) *ClearMultiplier {
	return &ClearMultiplier{deps: deps}
}

func (c *ClearMultiplier) Names() []string    { return []string{"clearMultiplier"} }
func (c *ClearMultiplier) Permission() string { return c.deps.Permission }
func (c *ClearMultiplier) Usage() string      { return "<player|all>" }

func (c *ClearMultiplier) Handle(sender admin.Sender, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("clearMultiplier needs a target: %w", admin.ErrUsage)
	}

	target := args[1]
	if strings.EqualFold(target, "all") {
		if err := c.deps.Store.SetGlobal(multiplier.Unity, 0); err != nil {
			return fmt.Errorf("resetting global multiplier: %w", err)
		}
		sender.SendMessage(c.deps.Messages.Format("global_multiplier_cleared"))
		return nil
	}

	player := c.deps.Players.FindByName(target)
	if player == nil {
		return admin.Reject(c.deps.Messages.Format("player_not_found", "player", target), ErrPlayerNotFound)
	}

	if !c.deps.Store.ClearPlayer(player.ID()) {
		sender.SendMessage(c.deps.Messages.Format("player_multiplier_none", "player", player.Name()))
		return nil
	}
	sender.SendMessage(c.deps.Messages.Format("player_multiplier_cleared", "player", player.Name()))
	return nil
}

func (c *ClearMultiplier) Complete(_ admin.Sender, args []string) []string {
	if len(args) != 2 {
		return nil
	}
	return append([]string{"all"}, c.deps.Players.OnlineNames()...)
}
