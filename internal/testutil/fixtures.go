package testutil

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/udisondev/expmultiplier/internal/model"
)

// NewTestPlayer creates an online player with a random identity.
func NewTestPlayer(t testing.TB, name string) *model.Player {
	t.Helper()

	p, err := model.NewPlayer(uuid.New(), name)
	if err != nil {
		t.Fatalf("NewPlayer(%q): %v", name, err)
	}
	p.SetOnline(true)
	return p
}

// RecordingSender is a command sender that records replies.
type RecordingSender struct {
	mu          sync.Mutex
	name        string
	permissions map[string]bool
	all         bool
	messages    []string
}

// NewConsoleSender returns a sender holding every permission.
func NewConsoleSender() *RecordingSender {
	return &RecordingSender{name: "CONSOLE", all: true}
}

// NewSender returns a sender holding only the given permissions.
func NewSender(name string, permissions ...string) *RecordingSender {
	s := &RecordingSender{name: name, permissions: make(map[string]bool, len(permissions))}
	for _, p := range permissions {
		s.permissions[p] = true
	}
	return s
}

func (s *RecordingSender) Name() string { return s.name }

func (s *RecordingSender) HasPermission(permission string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.all || s.permissions[permission]
}

func (s *RecordingSender) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Messages returns a copy of all replies so far.
func (s *RecordingSender) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.messages))
	copy(out, s.messages)
	return out
}

// Last returns the most recent reply or "".
func (s *RecordingSender) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}
