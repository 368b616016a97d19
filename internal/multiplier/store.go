package multiplier

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Listener observes store mutations. Callbacks run after the store lock is
// released, so they may call back into the store.
type Listener interface {
	// GlobalChanged fires after SetGlobal and after an expiry reset.
	GlobalChanged(m Multiplier)
	// PlayerSet fires after an override is created or replaced.
	PlayerSet(id uuid.UUID, m Multiplier)
	// PlayerCleared fires after an explicit ClearPlayer.
	PlayerCleared(id uuid.UUID)
	// PlayerExpired fires after an override timer removed its entry.
	PlayerExpired(id uuid.UUID)
}

// NopListener ignores all events.
type NopListener struct{}

func (NopListener) GlobalChanged(Multiplier)        {}
func (NopListener) PlayerSet(uuid.UUID, Multiplier) {}
func (NopListener) PlayerCleared(uuid.UUID)         {}
func (NopListener) PlayerExpired(uuid.UUID)         {}

// override is a per-player entry. version identifies this particular
// assignment so a stale timer cannot remove a newer override.
type override struct {
	mult    Multiplier
	version uint64
	timer   Timer
}

// Store owns the global multiplier and the per-player overrides.
//
// Thread-safety: a single RWMutex guards global state and the override map.
// EffectiveMultiplier only takes the read lock.
type Store struct {
	mu              sync.RWMutex
	global          Multiplier
	expiredNotified bool
	players         map[uuid.UUID]*override
	version         uint64

	clock    Clock
	listener Listener
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces the wall clock.
func WithClock(c Clock) StoreOption {
	return func(s *Store) { s.clock = c }
}

// WithListener installs a mutation listener.
func WithListener(l Listener) StoreOption {
	return func(s *Store) { s.listener = l }
}

// NewStore creates a store with a permanent global factor of 1.0 and no overrides.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		global:   Permanent(Unity),
		players:  make(map[uuid.UUID]*override, 16),
		clock:    SystemClock,
		listener: NopListener{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetListener replaces the mutation listener.
func (s *Store) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// SetGlobal sets the global factor. A positive duration makes it lapse
// duration from now; zero makes it permanent. Any pending expiry is replaced.
func (s *Store) SetGlobal(factor float64, duration time.Duration) error {
	if err := validate(factor, duration); err != nil {
		return err
	}

	m := Expiring(factor, s.clock.Now(), duration)

	s.mu.Lock()
	s.global = m
	s.expiredNotified = false
	l := s.listener
	s.mu.Unlock()

	slog.Info("global multiplier set",
		"factor", factor,
		"duration", duration)

	l.GlobalChanged(m)
	return nil
}

// Global returns the current global multiplier.
func (s *Store) Global() Multiplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.global
}

// ClearGlobalIfExpired resets the global factor to 1.0 once its expiry has
// passed. Returns true exactly once per expiry; the caller announces it.
func (s *Store) ClearGlobalIfExpired(now time.Time) bool {
	s.mu.Lock()
	if s.expiredNotified || !s.global.Expired(now) {
		s.mu.Unlock()
		return false
	}

	prev := s.global
	s.global = Permanent(Unity)
	s.expiredNotified = true
	reset := s.global
	l := s.listener
	s.mu.Unlock()

	slog.Info("global multiplier expired",
		"factor", prev.Factor,
		"expiresAt", prev.ExpiresAt)

	l.GlobalChanged(reset)
	return true
}

// SetPlayer creates or replaces the override for a player. A positive
// duration schedules its removal; a previous pending removal is cancelled.
func (s *Store) SetPlayer(id uuid.UUID, factor float64, duration time.Duration) error {
	if err := validate(factor, duration); err != nil {
		return err
	}

	m := Expiring(factor, s.clock.Now(), duration)

	s.mu.Lock()
	s.replaceLocked(id, m, duration)
	l := s.listener
	s.mu.Unlock()

	slog.Info("player multiplier set",
		"player", id,
		"factor", factor,
		"duration", duration)

	l.PlayerSet(id, m)
	return nil
}

// replaceLocked installs m for id and arms its timer when ttl > 0.
// Caller must hold s.mu.
func (s *Store) replaceLocked(id uuid.UUID, m Multiplier, ttl time.Duration) {
	if prev, ok := s.players[id]; ok && prev.timer != nil {
		prev.timer.Stop()
	}

	s.version++
	o := &override{mult: m, version: s.version}
	if ttl > 0 {
		version := o.version
		o.timer = s.clock.AfterFunc(ttl, func() {
			s.expirePlayer(id, version)
		})
	}
	s.players[id] = o
}

// expirePlayer removes the override only if it is still the assignment the
// timer was armed for.
func (s *Store) expirePlayer(id uuid.UUID, version uint64) {
	s.mu.Lock()
	o, ok := s.players[id]
	if !ok || o.version != version {
		s.mu.Unlock()
		slog.Debug("stale player multiplier timer ignored",
			"player", id,
			"version", version)
		return
	}
	delete(s.players, id)
	l := s.listener
	s.mu.Unlock()

	slog.Info("player multiplier expired",
		"player", id,
		"factor", o.mult.Factor)

	l.PlayerExpired(id)
}

// ClearPlayer removes a player's override. Returns false if there was none.
func (s *Store) ClearPlayer(id uuid.UUID) bool {
	s.mu.Lock()
	o, ok := s.players[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if o.timer != nil {
		o.timer.Stop()
	}
	delete(s.players, id)
	l := s.listener
	s.mu.Unlock()

	slog.Info("player multiplier cleared", "player", id)

	l.PlayerCleared(id)
	return true
}

// Player returns the override for a player, if any.
func (s *Store) Player(id uuid.UUID) (Multiplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.players[id]
	if !ok {
		return Multiplier{}, false
	}
	return o.mult, true
}

// PlayerCount returns the number of active overrides.
func (s *Store) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// EffectiveMultiplier returns the player's override factor, or the global
// factor when the player has none. Pure read.
func (s *Store) EffectiveMultiplier(id uuid.UUID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if o, ok := s.players[id]; ok {
		return o.mult.Factor
	}
	return s.global.Factor
}

// Stop cancels every pending override timer. Overrides stay in place.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.players {
		if o.timer != nil {
			o.timer.Stop()
			o.timer = nil
		}
	}
}
