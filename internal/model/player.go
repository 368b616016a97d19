package model

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Player is a player known to the host server.
// Identity is the UUID; the display name may change between sessions.
type Player struct {
	id uuid.UUID

	mu          sync.RWMutex
	name        string
	online      bool
	permissions map[string]struct{}
	inbox       []string
}

// NewPlayer creates an offline player with the given identity.
func NewPlayer(id uuid.UUID, name string) (*Player, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("player id must not be nil")
	}
	if len(name) < 2 {
		return nil, fmt.Errorf("name must be at least 2 characters, got %q", name)
	}

	return &Player{
		id:          id,
		name:        name,
		permissions: make(map[string]struct{}, 2),
	}, nil
}

// ID returns the stable player identity.
func (p *Player) ID() uuid.UUID {
	return p.id
}

// Name returns the display name fixed at creation.
func (p *Player) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// Online reports whether the player is currently connected.
func (p *Player) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.online
}

// SetOnline marks the player as connected or disconnected.
func (p *Player) SetOnline(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = online
}

// Grant gives the player a permission node.
func (p *Player) Grant(permission string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.permissions[permission] = struct{}{}
}

// Revoke removes a permission node.
func (p *Player) Revoke(permission string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.permissions, permission)
}

// HasPermission reports whether the player holds the permission node.
func (p *Player) HasPermission(permission string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.permissions[permission]
	return ok
}

// SendMessage delivers a chat message to the player.
// Messages are queued until the client drains them with DrainMessages.
func (p *Player) SendMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inbox = append(p.inbox, msg)
}

// Messages returns a copy of undelivered messages.
func (p *Player) Messages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, len(p.inbox))
	copy(out, p.inbox)
	return out
}

// DrainMessages returns undelivered messages and empties the inbox.
func (p *Player) DrainMessages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.inbox
	p.inbox = nil
	return out
}
