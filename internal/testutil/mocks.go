package testutil

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/multiplier"
)

// MockRepository is an in-memory multiplier repository for unit tests.
// Does not require a real PostgreSQL.
type MockRepository struct {
	mu      sync.RWMutex
	global  multiplier.Multiplier
	players map[uuid.UUID]multiplier.Multiplier
	err     error
	writes  int
}

// NewMockRepository creates an empty repository holding a permanent 1.0 global.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		global:  multiplier.Permanent(multiplier.Unity),
		players: make(map[uuid.UUID]multiplier.Multiplier),
	}
}

// FailWith makes every subsequent call return err (nil restores normal operation).
func (m *MockRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// LoadSnapshot returns the stored state.
func (m *MockRepository) LoadSnapshot(ctx context.Context) (multiplier.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return multiplier.Snapshot{}, m.err
	}
	return multiplier.Snapshot{
		Global:  m.global,
		Players: maps.Clone(m.players),
	}, nil
}

// SaveGlobal stores the global multiplier.
func (m *MockRepository) SaveGlobal(ctx context.Context, g multiplier.Multiplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.global = g
	m.writes++
	return nil
}

// SavePlayer upserts a player override.
func (m *MockRepository) SavePlayer(ctx context.Context, id uuid.UUID, o multiplier.Multiplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.players[id] = o
	m.writes++
	return nil
}

// DeletePlayer removes a player override. Deleting a missing one is not an error.
func (m *MockRepository) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	delete(m.players, id)
	m.writes++
	return nil
}

// Global returns the stored global multiplier.
func (m *MockRepository) Global() multiplier.Multiplier {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.global
}

// Player returns the stored override for id.
func (m *MockRepository) Player(id uuid.UUID) (multiplier.Multiplier, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.players[id]
	return o, ok
}

// PlayerCount returns the number of stored overrides.
func (m *MockRepository) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}

// Writes returns the number of successful writes.
func (m *MockRepository) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Reset clears all stored state.
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global = multiplier.Permanent(multiplier.Unity)
	m.players = make(map[uuid.UUID]multiplier.Multiplier)
	m.writes = 0
	m.err = nil
}
