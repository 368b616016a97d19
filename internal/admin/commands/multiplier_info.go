package commands

import (
	"fmt"
	"time"

	"github.com/udisondev/expmultiplier/internal/admin"
	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// MultiplierInfo handles /multiplier [player]. Without a player it shows the
// global multiplier; with one it shows the multiplier that applies to them.
type MultiplierInfo struct {
	deps Deps
}

// NewMultiplierInfo creates the multiplier info command handler.
func NewMultiplierInfo(deps Deps) *MultiplierInfo {
	return &MultiplierInfo{deps: deps}
}

func (c *MultiplierInfo) Names() []string    { return []string{"multiplier", "xprate"} }
func (c *MultiplierInfo) Permission() string { return "" }
func (c *MultiplierInfo) Usage() string      { return "[player]" }

func (c *MultiplierInfo) Handle(sender admin.Sender, args []string) error {
	now := c.deps.Store.Now()
	global := c.deps.Store.Global()

	if len(args) < 2 {
		sender.SendMessage(c.deps.Messages.Format("multiplier_info_global",
			"multiplier", formatFactor(global.Factor),
			"remaining", formatRemaining(global, now)))
		return nil
	}

	player := c.deps.Players.FindByName(args[1])
	if player == nil {
		return admin.Reject(c.deps.Messages.Format("player_not_found", "player", args[1]), ErrPlayerNotFound)
	}

	m, source := global, "global"
	if o, ok := c.deps.Store.Player(player.ID()); ok {
		m, source = o, "personal"
	}

	sender.SendMessage(c.deps.Messages.Format("multiplier_info_player",
		"player", player.Name(),
		"multiplier", formatFactor(m.Factor),
		"source", source,
		"remaining", formatRemaining(m, now)))
	return nil
}

func (c *MultiplierInfo) Complete(_ admin.Sender, args []string) []string {
	if len(args) != 2 {
		return nil
	}
	return c.deps.Players.OnlineNames()
}

func formatRemaining(m multiplier.Multiplier, now time.Time) string {
	if !m.HasExpiry() {
		return "permanent"
	}
	left := m.Remaining(now).Round(time.Second)
	return fmt.Sprintf("%s left", left)
}
