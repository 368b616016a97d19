package testutil

import (
	"testing"

	"github.com/udisondev/expmultiplier/internal/model"
	"github.com/udisondev/expmultiplier/internal/world"
)

// NewTestWorld creates a player directory with the named players online.
func NewTestWorld(t testing.TB, names ...string) *world.Directory {
	t.Helper()
	d := world.NewDirectory()
	for _, name := range names {
		if _, err := d.Join(name); err != nil {
			t.Fatalf("joining %q: %v", name, err)
		}
	}
	return d
}

// MustFind returns the online player with the given name or fails the test.
func MustFind(t testing.TB, d *world.Directory, name string) *model.Player {
	t.Helper()
	p := d.FindByName(name)
	if p == nil {
		t.Fatalf("player %q is not online", name)
	}
	return p
}
