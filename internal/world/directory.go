// Package world tracks the players known to the host and routes chat to them.
package world

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/model"
)

// Directory is the host's player directory.
// A player keeps the same identity across reconnects under the same name.
//
// Thread-safe for concurrent access.
type Directory struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*model.Player
	byName map[string]uuid.UUID // key: lowercase name
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byID:   make(map[uuid.UUID]*model.Player, 64),
		byName: make(map[string]uuid.UUID, 64),
	}
}

// Join connects a player by name, creating its identity on first sight.
func (d *Directory) Join(name string) (*model.Player, error) {
	key := strings.ToLower(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.byName[key]; ok {
		p := d.byID[id]
		p.SetOnline(true)
		slog.Info("player joined", "player", p.Name(), "id", id)
		return p, nil
	}

	p, err := model.NewPlayer(uuid.New(), name)
	if err != nil {
		return nil, fmt.Errorf("creating player %q: %w", name, err)
	}
	p.SetOnline(true)
	d.byID[p.ID()] = p
	d.byName[key] = p.ID()

	slog.Info("player joined for the first time", "player", name, "id", p.ID())
	return p, nil
}

// Leave disconnects a player. Returns the player, or nil if not online.
func (d *Directory) Leave(name string) *model.Player {
	p := d.FindByName(name)
	if p == nil {
		return nil
	}
	p.SetOnline(false)
	slog.Info("player left", "player", p.Name(), "id", p.ID())
	return p
}

// FindByName returns an online player by name (case-insensitive), or nil.
func (d *Directory) FindByName(name string) *model.Player {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byName[strings.ToLower(name)]
	if !ok {
		return nil
	}
	p := d.byID[id]
	if !p.Online() {
		return nil
	}
	return p
}

// Get returns a player by identity regardless of connection state.
func (d *Directory) Get(id uuid.UUID) (*model.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[id]
	return p, ok
}

// ForEachOnline iterates over online players. If fn returns false, iteration stops.
func (d *Directory) ForEachOnline(fn func(*model.Player) bool) {
	d.mu.RLock()
	players := make([]*model.Player, 0, len(d.byID))
	for _, p := range d.byID {
		players = append(players, p)
	}
	d.mu.RUnlock()

	for _, p := range players {
		if !p.Online() {
			continue
		}
		if !fn(p) {
			return
		}
	}
}

// OnlineCount returns the number of online players.
func (d *Directory) OnlineCount() int {
	n := 0
	d.ForEachOnline(func(*model.Player) bool {
		n++
		return true
	})
	return n
}

// OnlineNames returns online player names, sorted.
func (d *Directory) OnlineNames() []string {
	var names []string
	d.ForEachOnline(func(p *model.Player) bool {
		names = append(names, p.Name())
		return true
	})
	slices.Sort(names)
	return names
}

// SendTo delivers msg to an online player. Returns false if the player is
// unknown or offline; that is not an error.
func (d *Directory) SendTo(id uuid.UUID, msg string) bool {
	p, ok := d.Get(id)
	if !ok || !p.Online() {
		slog.Debug("message dropped for offline player", "id", id)
		return false
	}
	p.SendMessage(msg)
	return true
}

// Broadcast delivers msg to every online player. Returns the recipient count.
func (d *Directory) Broadcast(msg string) int {
	n := 0
	d.ForEachOnline(func(p *model.Player) bool {
		p.SendMessage(msg)
		n++
		return true
	})
	return n
}
