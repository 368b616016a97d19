package multiplier

import (
	"log/slog"

	"github.com/google/uuid"
)

// Snapshot is a point-in-time copy of the store, used for persistence.
type Snapshot struct {
	Global  Multiplier
	Players map[uuid.UUID]Multiplier
}

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Global:  s.global,
		Players: make(map[uuid.UUID]Multiplier, len(s.players)),
	}
	for id, o := range s.players {
		snap.Players[id] = o.mult
	}
	return snap
}

// Restore replaces the store state with snap. Overrides whose expiry already
// passed are dropped; the rest are re-armed for their remaining lifetime.
// A lapsed global multiplier is kept so the next expiry tick announces it.
// Listeners are not notified.
func (s *Store) Restore(snap Snapshot) {
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.players {
		if o.timer != nil {
			o.timer.Stop()
		}
	}
	s.players = make(map[uuid.UUID]*override, len(snap.Players))

	s.global = snap.Global
	s.expiredNotified = false

	dropped := 0
	for id, m := range snap.Players {
		if m.Expired(now) {
			dropped++
			continue
		}
		ttl := m.Remaining(now)
		if m.HasExpiry() && ttl == 0 {
			// Expires exactly now; give the timer a tick so it still fires.
			ttl = 1
		}
		s.replaceLocked(id, m, ttl)
	}

	slog.Info("multiplier state restored",
		"globalFactor", s.global.Factor,
		"overrides", len(s.players),
		"dropped", dropped)
}
