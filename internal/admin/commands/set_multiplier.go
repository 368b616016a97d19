package commands

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/udisondev/expmultiplier/internal/admin"
)

// ReasonBonus is the audit reason for the bonus granted with a personal multiplier.
const ReasonBonus = "experience multiplier set"

// maxDurationSeconds keeps seconds*time.Second inside int64.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// SetMultiplier handles /setMultiplier <player|all> <multiplier> [duration in seconds].
type SetMultiplier struct {
	deps Deps
}

// NewSetMultiplier creates the setMultiplier command handler.
func NewSetMultiplier(deps Deps) *SetMultiplier {
	return &SetMultiplier{deps: deps}
}

func (c *SetMultiplier) Names() []string    { return []string{"setMultiplier"} }
func (c *SetMultiplier) Permission() string { return c.deps.Permission }
func (c *SetMultiplier) Usage() string {
	return "<player|all> <multiplier> [duration in seconds]"
}

func (c *SetMultiplier) Handle(sender admin.Sender, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("setMultiplier needs a target and a multiplier: %w", admin.ErrUsage)
	}

	target := args[1]
	factor, err := parseFactor(args[2])
	if err != nil {
		return admin.Reject(c.deps.Messages.Format("invalid_multiplier"), err)
	}

	var duration time.Duration
	if len(args) > 3 {
		duration, err = parseDuration(args[3])
		if err != nil {
			return admin.Reject(c.deps.Messages.Format("invalid_duration"), err)
		}
	}

	if strings.EqualFold(target, "all") {
		if err := c.deps.Store.SetGlobal(factor, duration); err != nil {
			return fmt.Errorf("setting global multiplier: %w", err)
		}
		sender.SendMessage(c.deps.Messages.Format("global_multiplier_set",
			"multiplier", formatFactor(factor),
			"duration", formatSeconds(duration)))
		return nil
	}

	player := c.deps.Players.FindByName(target)
	if player == nil {
		return admin.Reject(c.deps.Messages.Format("player_not_found", "player", target), ErrPlayerNotFound)
	}

	if err := c.deps.Store.SetPlayer(player.ID(), factor, duration); err != nil {
		return fmt.Errorf("setting multiplier for %s: %w", player.Name(), err)
	}

	if c.deps.BonusExp > 0 && c.deps.Exp != nil {
		c.deps.Exp.AddExp(player, c.deps.BonusExp, ReasonBonus)
		player.SendMessage(c.deps.Messages.Format("bonus_exp_granted",
			"amount", strconv.Itoa(c.deps.BonusExp)))
	}

	sender.SendMessage(c.deps.Messages.Format("player_multiplier_set",
		"player", player.Name(),
		"multiplier", formatFactor(factor),
		"duration", formatSeconds(duration)))
	return nil
}

// Complete offers "all" plus online player names for the target argument.
func (c *SetMultiplier) Complete(_ admin.Sender, args []string) []string {
	if len(args) != 2 {
		return nil
	}
	return append([]string{"all"}, c.deps.Players.OnlineNames()...)
}

func parseFactor(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid multiplier %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("multiplier %q is not finite", s)
	}
	return f, nil
}

func parseDuration(s string) (time.Duration, error) {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("duration %d must not be negative", secs)
	}
	if secs > maxDurationSeconds {
		return 0, fmt.Errorf("duration %d is too large", secs)
	}
	return time.Duration(secs) * time.Second, nil
}

func formatFactor(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}
