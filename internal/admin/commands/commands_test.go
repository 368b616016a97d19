package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/expmultiplier/internal/admin"
	"github.com/udisondev/expmultiplier/internal/experience"
	"github.com/udisondev/expmultiplier/internal/message"
	"github.com/udisondev/expmultiplier/internal/multiplier"
	"github.com/udisondev/expmultiplier/internal/testutil"
	"github.com/udisondev/expmultiplier/internal/world"
)

const testPermission = "akarilevel.setmultiplier"

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	handler *admin.Handler
	store   *multiplier.Store
	clock   *testutil.FakeClock
	players *world.Directory
	ledger  *experience.Ledger
	msgs    *message.Catalog
}

func newFixture(t *testing.T, bonus int) *fixture {
	t.Helper()

	f := &fixture{
		clock:   testutil.NewFakeClock(epoch),
		players: testutil.NewTestWorld(t),
		ledger:  experience.NewLedger(16),
		msgs:    message.Default(),
	}
	f.store = multiplier.NewStore(multiplier.WithClock(f.clock))
	f.handler = admin.NewHandler(f.msgs)
	RegisterAll(f.handler, Deps{
		Store:      f.store,
		Players:    f.players,
		Exp:        f.ledger,
		Messages:   f.msgs,
		Permission: testPermission,
		BonusExp:   bonus,
	})
	return f
}

func (f *fixture) join(t *testing.T, name string) {
	t.Helper()
	_, err := f.players.Join(name)
	require.NoError(t, err)
}

func TestSetMultiplier_Global(t *testing.T) {
	f := newFixture(t, 0)
	sender := testutil.NewConsoleSender()

	require.True(t, f.handler.HandleCommand(sender, "/setMultiplier all 2 60"))

	g := f.store.Global()
	assert.Equal(t, 2.0, g.Factor)
	assert.Equal(t, epoch.Add(60*time.Second), g.ExpiresAt)
	assert.Equal(t, "Global experience multiplier set to 2.0 for 60 seconds.", sender.Last())
}

func TestSetMultiplier_GlobalCaseInsensitiveAndPermanent(t *testing.T) {
	f := newFixture(t, 0)
	sender := testutil.NewConsoleSender()

	f.handler.HandleCommand(sender, "setmultiplier ALL 1.5")

	g := f.store.Global()
	assert.Equal(t, 1.5, g.Factor)
	assert.False(t, g.HasExpiry(), "omitted duration means permanent")
}

func TestSetMultiplier_PlayerOverride(t *testing.T) {
	f := newFixture(t, 0)
	f.join(t, "Alice")
	sender := testutil.NewConsoleSender()

	f.handler.HandleCommand(sender, "setMultiplier alice 3 30")

	alice := testutil.MustFind(t, f.players, "Alice")
	require.NotNil(t, alice)
	m, ok := f.store.Player(alice.ID())
	require.True(t, ok)
	assert.Equal(t, 3.0, m.Factor)
	assert.Equal(t, "Experience multiplier for Alice set to 3.0 for 30 seconds.", sender.Last())

	f.clock.Advance(30 * time.Second)
	_, ok = f.store.Player(alice.ID())
	assert.False(t, ok, "override must lapse after its duration")
}

func TestSetMultiplier_ResetBeforeExpiry(t *testing.T) {
	f := newFixture(t, 0)
	f.join(t, "Alice")
	sender := testutil.NewConsoleSender()
	alice := testutil.MustFind(t, f.players, "Alice")

	f.handler.HandleCommand(sender, "setMultiplier Alice 3 10")
	f.clock.Advance(5 * time.Second)
	f.handler.HandleCommand(sender, "setMultiplier Alice 1.5 10")

	f.clock.Advance(6 * time.Second)
	assert.Equal(t, 1.5, f.store.EffectiveMultiplier(alice.ID()))

	f.clock.Advance(4 * time.Second)
	assert.Equal(t, 1.0, f.store.EffectiveMultiplier(alice.ID()))
}

func TestSetMultiplier_BonusExp(t *testing.T) {
	f := newFixture(t, 100)
	f.join(t, "Alice")
	alice := testutil.MustFind(t, f.players, "Alice")

	f.handler.HandleCommand(testutil.NewConsoleSender(), "setMultiplier Alice 2")

	assert.Equal(t, 100, f.ledger.Exp(alice))
	history := f.ledger.History(alice.ID())
	require.Len(t, history, 1)
	assert.Equal(t, ReasonBonus, history[0].Reason)
	testutil.AssertReceived(t, alice, "You received 100 experience points.")
}

func TestSetMultiplier_NoBonusForGlobal(t *testing.T) {
	f := newFixture(t, 100)
	f.join(t, "Alice")
	alice := testutil.MustFind(t, f.players, "Alice")

	f.handler.HandleCommand(testutil.NewConsoleSender(), "setMultiplier all 2")

	assert.Zero(t, f.ledger.Exp(alice))
	testutil.AssertInboxEmpty(t, alice)
}

func TestSetMultiplier_Rejections(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"malformed multiplier", "setMultiplier all abc", "The experience multiplier must be a valid number."},
		{"not finite", "setMultiplier all NaN", "The experience multiplier must be a valid number."},
		{"malformed duration", "setMultiplier all 2 soon", "The duration must be a non-negative whole number of seconds."},
		{"negative duration", "setMultiplier all 2 -5", "The duration must be a non-negative whole number of seconds."},
		{"fractional duration", "setMultiplier all 2 1.5", "The duration must be a non-negative whole number of seconds."},
		{"unknown player", "setMultiplier Ghost 2", "Player Ghost not found."},
		{"missing args", "setMultiplier all", "Usage: /setMultiplier <player|all> <multiplier> [duration in seconds]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 100)
			sender := testutil.NewConsoleSender()

			require.True(t, f.handler.HandleCommand(sender, tt.line))

			assert.Equal(t, tt.want, sender.Last())
			assert.Equal(t, 1.0, f.store.Global().Factor, "state must not change")
			assert.Zero(t, f.store.PlayerCount())
		})
	}
}

func TestSetMultiplier_OfflinePlayerNotFound(t *testing.T) {
	f := newFixture(t, 0)
	f.join(t, "Alice")
	f.players.Leave("Alice")
	sender := testutil.NewConsoleSender()

	f.handler.HandleCommand(sender, "setMultiplier Alice 2")

	assert.Equal(t, "Player Alice not found.", sender.Last())
	assert.Zero(t, f.store.PlayerCount())
}

func TestSetMultiplier_RequiresPermission(t *testing.T) {
	f := newFixture(t, 0)
	sender := testutil.NewSender("Bob")

	f.handler.HandleCommand(sender, "setMultiplier all 5")

	assert.Equal(t, f.msgs.Format("no_permission"), sender.Last())
	assert.Equal(t, 1.0, f.store.Global().Factor)

	privileged := testutil.NewSender("Op", testPermission)
	f.handler.HandleCommand(privileged, "setMultiplier all 5")
	assert.Equal(t, 5.0, f.store.Global().Factor)
}

func TestSetMultiplier_Complete(t *testing.T) {
	f := newFixture(t, 0)
	f.join(t, "Alice")
	f.join(t, "Bob")
	sender := testutil.NewConsoleSender()

	assert.Equal(t, []string{"all", "Alice", "Bob"}, f.handler.Complete(sender, "setMultiplier "))
	assert.Equal(t, []string{"Bob"}, f.handler.Complete(sender, "setMultiplier b"))
	assert.Empty(t, f.handler.Complete(sender, "setMultiplier Alice "))
}

func TestClearMultiplier(t *testing.T) {
	f := newFixture(t, 0)
	f.join(t, "Alice")
	alice := testutil.MustFind(t, f.players, "Alice")
	sender := testutil.NewConsoleSender()

	f.handler.HandleCommand(sender, "setMultiplier all 2 60")
	f.handler.HandleCommand(sender, "setMultiplier Alice 3")

	f.handler.HandleCommand(sender, "clearMultiplier Alice")
	assert.Equal(t, "Experience multiplier for Alice cleared.", sender.Last())
	assert.Equal(t, 2.0, f.store.EffectiveMultiplier(alice.ID()))

	f.handler.HandleCommand(sender, "clearMultiplier Alice")
	assert.Equal(t, "Alice has no personal experience multiplier.", sender.Last())

	f.handler.HandleCommand(sender, "clearMultiplier all")
	assert.Equal(t, "Global experience multiplier reset to 1.0.", sender.Last())
	g := f.store.Global()
	assert.Equal(t, 1.0, g.Factor)
	assert.False(t, g.HasExpiry())
}

func TestMultiplierInfo(t *testing.T) {
	f := newFixture(t, 0)
	f.join(t, "Alice")
	f.join(t, "Bob")
	console := testutil.NewConsoleSender()

	f.handler.HandleCommand(console, "setMultiplier all 2 90")
	f.handler.HandleCommand(console, "setMultiplier Alice 3")

	player := testutil.NewSender("Bob")
	f.handler.HandleCommand(player, "multiplier")
	assert.Equal(t, "Global experience multiplier: 2.0 (1m30s left).", player.Last())

	f.handler.HandleCommand(player, "xprate alice")
	assert.Equal(t, "Experience multiplier for Alice: 3.0 (personal, permanent).", player.Last())

	f.handler.HandleCommand(player, "multiplier Bob")
	assert.Equal(t, "Experience multiplier for Bob: 2.0 (global, 1m30s left).", player.Last())
}

func TestFormatFactor(t *testing.T) {
	tests := map[float64]string{
		2:     "2.0",
		1.5:   "1.5",
		0:     "0.0",
		-1:    "-1.0",
		0.125: "0.125",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatFactor(in), "formatFactor(%v)", in)
	}
}
