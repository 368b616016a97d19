package experience

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/udisondev/expmultiplier/internal/model"
	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// DefaultGrantCommand is the experience service's admin command root.
const DefaultGrantCommand = "/akarilevel"

// PlayerFinder resolves online players by name.
type PlayerFinder interface {
	FindByName(name string) *model.Player
}

// GrantRewriter scales the amount of "<root> exp add <player> <amount>"
// commands so manually granted experience honours the multiplier too.
type GrantRewriter struct {
	root    string
	source  MultiplierSource
	players PlayerFinder
}

// NewGrantRewriter creates a rewriter for commands starting with root.
func NewGrantRewriter(root string, source MultiplierSource, players PlayerFinder) *GrantRewriter {
	if root == "" {
		root = DefaultGrantCommand
	}
	return &GrantRewriter{root: root, source: source, players: players}
}

// Rewrite returns line with the amount token scaled, or line unchanged when
// it is not a grant, the target is offline, the multiplier is 1.0 or the
// amount is malformed.
func (r *GrantRewriter) Rewrite(line string) string {
	parts := strings.Split(line, " ")
	if len(parts) < 5 ||
		!strings.EqualFold(parts[0], r.root) ||
		!strings.EqualFold(parts[1], "exp") ||
		!strings.EqualFold(parts[2], "add") {
		return line
	}

	player := r.players.FindByName(parts[3])
	if player == nil {
		return line
	}

	factor := r.source.EffectiveMultiplier(player.ID())
	if factor == multiplier.Unity {
		return line
	}

	amount, err := strconv.Atoi(parts[4])
	if err != nil {
		return line
	}

	scaled := multiplier.Scale(amount, factor)
	parts[4] = strconv.Itoa(scaled)

	slog.Debug("experience grant rescaled",
		"player", player.Name(),
		"multiplier", factor,
		"amount", amount,
		"scaled", scaled)

	return strings.Join(parts, " ")
}
