// Package admin dispatches operator commands with permission checks,
// usage replies and tab completion.
package admin

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// ErrUsage signals malformed arguments; the handler replies with the command's usage.
var ErrUsage = errors.New("invalid command usage")

// Sender is whoever issued a command: a player or the server console.
type Sender interface {
	Name() string
	HasPermission(permission string) bool
	SendMessage(msg string)
}

// Command is an operator command.
type Command interface {
	// Handle executes the command. args includes command name at [0].
	Handle(sender Sender, args []string) error
	// Names returns all registered command names (without / prefix).
	Names() []string
	// Permission returns the node required to run the command ("" = everyone).
	Permission() string
	// Usage returns the argument synopsis shown on ErrUsage.
	Usage() string
}

// Completer is implemented by commands offering tab completion.
type Completer interface {
	// Complete returns candidates for the last element of args. args
	// includes command name at [0]; the last element may be empty.
	Complete(sender Sender, args []string) []string
}

// Messages renders catalog messages.
type Messages interface {
	Format(key string, kv ...string) string
}

// UserError is a command failure caused by the sender's input. Its message
// is shown to the sender verbatim and it is not logged as an error.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Err }

// Reject builds a UserError.
func Reject(msg string, cause error) error {
	return &UserError{Message: msg, Err: cause}
}

// Handler dispatches commands.
// Thread-safe: commands are registered once at startup, then read-only.
type Handler struct {
	mu       sync.RWMutex
	commands map[string]Command // name → Command (lowercase)
	messages Messages
}

// NewHandler creates a new command handler.
func NewHandler(messages Messages) *Handler {
	return &Handler{
		commands: make(map[string]Command, 8),
		messages: messages,
	}
}

// Register registers a command.
// All command names are lowercased for case-insensitive lookup.
func (h *Handler) Register(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range cmd.Names() {
		h.commands[strings.ToLower(name)] = cmd
	}
}

func (h *Handler) lookup(name string) (Command, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cmd, ok := h.commands[strings.ToLower(name)]
	return cmd, ok
}

// HandleCommand processes a command line, with or without the leading /.
// Returns true if the command is registered here, whether or not it succeeded.
func (h *Handler) HandleCommand(sender Sender, text string) bool {
	parts := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(parts) == 0 {
		return false
	}

	cmd, ok := h.lookup(parts[0])
	if !ok {
		return false
	}

	if perm := cmd.Permission(); perm != "" && !sender.HasPermission(perm) {
		sender.SendMessage(h.messages.Format("no_permission"))
		slog.Warn("command permission denied",
			"sender", sender.Name(),
			"command", parts[0],
			"permission", perm)
		return true
	}

	slog.Info("command",
		"sender", sender.Name(),
		"command", text)

	err := cmd.Handle(sender, parts)
	if err == nil {
		return true
	}

	var userErr *UserError
	switch {
	case errors.Is(err, ErrUsage):
		sender.SendMessage(h.messages.Format("usage", "usage", "/"+parts[0]+" "+cmd.Usage()))
	case errors.As(err, &userErr):
		sender.SendMessage(userErr.Message)
		slog.Debug("command rejected",
			"sender", sender.Name(),
			"command", text,
			"reason", err)
	default:
		sender.SendMessage("Command error: " + err.Error())
		slog.Error("command failed",
			"sender", sender.Name(),
			"command", text,
			"error", err)
	}
	return true
}

// Complete returns tab-completion candidates for a partial command line.
// Candidates are filtered by the prefix being typed (case-insensitive).
func (h *Handler) Complete(sender Sender, text string) []string {
	text = strings.TrimPrefix(text, "/")
	parts := strings.Fields(text)
	if len(parts) == 0 || strings.HasSuffix(text, " ") {
		parts = append(parts, "")
	}

	if len(parts) == 1 {
		return filterPrefix(h.commandNames(sender), parts[0])
	}

	cmd, ok := h.lookup(parts[0])
	if !ok {
		return nil
	}
	if perm := cmd.Permission(); perm != "" && !sender.HasPermission(perm) {
		return nil
	}
	c, ok := cmd.(Completer)
	if !ok {
		return nil
	}
	return filterPrefix(c.Complete(sender, parts), parts[len(parts)-1])
}

func (h *Handler) commandNames(sender Sender) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.commands))
	for name, cmd := range h.commands {
		if perm := cmd.Permission(); perm != "" && !sender.HasPermission(perm) {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func filterPrefix(candidates []string, prefix string) []string {
	if prefix == "" {
		return candidates
	}
	lower := strings.ToLower(prefix)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}
	return out
}

// CommandCount returns number of registered command names.
func (h *Handler) CommandCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.commands)
}
