package world

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Services tracks which host services (plugins) are enabled and notifies
// subscribers when one becomes available.
type Services struct {
	mu        sync.RWMutex
	enabled   map[string]bool // key: lowercase name
	listeners []func(name string)
}

// NewServices creates an empty registry.
func NewServices() *Services {
	return &Services{enabled: make(map[string]bool, 4)}
}

// Enable marks a service as available and notifies subscribers.
func (s *Services) Enable(name string) {
	s.mu.Lock()
	s.enabled[strings.ToLower(name)] = true
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	slog.Info("service enabled", "service", name)
	for _, fn := range listeners {
		fn(name)
	}
}

// Disable marks a service as unavailable.
func (s *Services) Disable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.enabled, strings.ToLower(name))
	slog.Info("service disabled", "service", name)
}

// Enabled reports whether the named service is available.
func (s *Services) Enabled(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled[strings.ToLower(name)]
}

// OnEnable subscribes fn to service-enabled notifications.
func (s *Services) OnEnable(fn func(name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}
