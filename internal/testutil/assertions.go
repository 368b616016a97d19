package testutil

import (
	"slices"
	"testing"

	"github.com/udisondev/expmultiplier/internal/model"
)

// AssertReceived checks that the player's inbox contains msg.
func AssertReceived(t testing.TB, p *model.Player, msg string) {
	t.Helper()

	if got := p.Messages(); !slices.Contains(got, msg) {
		t.Fatalf("%s did not receive %q; inbox: %q", p.Name(), msg, got)
	}
}

// AssertNotReceived checks that the player's inbox does not contain msg.
func AssertNotReceived(t testing.TB, p *model.Player, msg string) {
	t.Helper()

	if got := p.Messages(); slices.Contains(got, msg) {
		t.Fatalf("%s unexpectedly received %q", p.Name(), msg)
	}
}

// AssertInboxEmpty checks that no message was sent to the player.
func AssertInboxEmpty(t testing.TB, p *model.Player) {
	t.Helper()

	if got := p.Messages(); len(got) != 0 {
		t.Fatalf("%s inbox should be empty, got %q", p.Name(), got)
	}
}
