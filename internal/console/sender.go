package console

import (
	"fmt"
	"io"
	"sync"
)

// Sender is the console's command sender. It holds every permission and
// prints replies to its output.
type Sender struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSender creates a console sender writing to out.
func NewSender(out io.Writer) *Sender {
	return &Sender{out: out}
}

// SetOutput redirects replies.
func (s *Sender) SetOutput(out io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = out
}

func (s *Sender) Name() string              { return "CONSOLE" }
func (s *Sender) HasPermission(string) bool { return true }

func (s *Sender) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, msg)
}
