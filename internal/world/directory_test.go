package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_JoinKeepsIdentity(t *testing.T) {
	d := NewDirectory()

	p1, err := d.Join("Alice")
	require.NoError(t, err)
	require.NotNil(t, d.Leave("alice"))
	assert.Nil(t, d.FindByName("Alice"), "offline players are not resolvable")

	p2, err := d.Join("ALICE")
	require.NoError(t, err)
	assert.Equal(t, p1.ID(), p2.ID())
	assert.True(t, p2.Online())
	assert.Equal(t, "Alice", p2.Name(), "the first-seen name is kept")
	assert.Same(t, p2, d.FindByName(p2.Name()))
}

func TestDirectory_JoinRejectsBadName(t *testing.T) {
	d := NewDirectory()
	_, err := d.Join("A")
	assert.Error(t, err)
}

func TestDirectory_FindAndGet(t *testing.T) {
	d := NewDirectory()
	alice, err := d.Join("Alice")
	require.NoError(t, err)

	assert.Same(t, alice, d.FindByName("aLiCe"))
	assert.Nil(t, d.FindByName("Bob"))

	got, ok := d.Get(alice.ID())
	require.True(t, ok)
	assert.Same(t, alice, got)

	d.Leave("Alice")
	got, ok = d.Get(alice.ID())
	require.True(t, ok, "Get resolves offline players")
	assert.False(t, got.Online())
}

func TestDirectory_OnlineNames(t *testing.T) {
	d := NewDirectory()
	for _, n := range []string{"Carol", "Alice", "Bob"} {
		_, err := d.Join(n)
		require.NoError(t, err)
	}
	d.Leave("Bob")

	assert.Equal(t, []string{"Alice", "Carol"}, d.OnlineNames())
	assert.Equal(t, 2, d.OnlineCount())
}

func TestDirectory_SendToAndBroadcast(t *testing.T) {
	d := NewDirectory()
	alice, _ := d.Join("Alice")
	bob, _ := d.Join("Bob")
	carol, _ := d.Join("Carol")
	d.Leave("Carol")

	assert.True(t, d.SendTo(alice.ID(), "hi"))
	assert.False(t, d.SendTo(carol.ID(), "hi"), "offline target is silently skipped")

	assert.Equal(t, 2, d.Broadcast("all"))

	assert.Equal(t, []string{"hi", "all"}, alice.DrainMessages())
	assert.Equal(t, []string{"all"}, bob.DrainMessages())
	assert.Empty(t, carol.DrainMessages())
}

func TestServices(t *testing.T) {
	s := NewServices()
	var seen []string
	s.OnEnable(func(name string) { seen = append(seen, name) })

	assert.False(t, s.Enabled("AkariLevel"))
	s.Enable("AkariLevel")
	assert.True(t, s.Enabled("akarilevel"))
	assert.Equal(t, []string{"AkariLevel"}, seen)

	s.Disable("AKARILEVEL")
	assert.False(t, s.Enabled("AkariLevel"))
}
