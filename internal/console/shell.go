// Package console provides an interactive host console that drives the
// multiplier add-on: players join and leave, gain experience and run commands.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/udisondev/expmultiplier/internal/admin"
	"github.com/udisondev/expmultiplier/internal/experience"
	"github.com/udisondev/expmultiplier/internal/model"
	"github.com/udisondev/expmultiplier/internal/world"
)

// Host is the add-on as seen from the console.
type Host interface {
	OnCommand(sender admin.Sender, line string) bool
	OnCommandPreprocess(line string) string
	OnTabComplete(sender admin.Sender, line string) []string
	OnExperienceChange(ev *experience.ChangeEvent) bool
	OnPlayerQuit(p *model.Player)
}

// builtins are the console's own commands, offered by tab completion.
var builtins = []string{
	"help", "who", "join", "leave", "gain", "exp", "op", "deop",
	"as", "inbox", "service", "quit",
}

// Shell executes console lines. It does no terminal handling and writes all
// output to out.
type Shell struct {
	host     Host
	players  *world.Directory
	services *world.Services
	ledger   *experience.Ledger
	opts     Options
	out      io.Writer
	sender   *Sender
}

// Options configures a Shell.
type Options struct {
	// GrantRoot is the experience service's command root, e.g. "/akarilevel".
	GrantRoot string
	// OpPermission is the permission node granted by "op".
	OpPermission string
}

// NewShell creates a shell writing to out.
func NewShell(host Host, players *world.Directory, services *world.Services,
	ledger *experience.Ledger, opts Options, out io.Writer) *Shell {
	return &Shell{
		host:     host,
		players:  players,
		services: services,
		ledger:   ledger,
		opts:     opts,
		out:      out,
		sender:   NewSender(out),
	}
}

// SetOutput redirects shell and console sender output.
func (s *Shell) SetOutput(out io.Writer) {
	s.out = out
	s.sender.SetOutput(out)
}

// Exec runs one console line. Returns true when the console should exit.
func (s *Shell) Exec(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	if strings.HasPrefix(input, "/") {
		s.runCommand(s.sender, input)
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "who":
		s.cmdWho()
	case "join":
		s.cmdJoin(args)
	case "leave":
		s.cmdLeave(args)
	case "gain":
		s.cmdGain(args)
	case "exp":
		s.cmdExp(args)
	case "op":
		s.cmdOp(args, true)
	case "deop":
		s.cmdOp(args, false)
	case "as":
		s.cmdAs(args)
	case "inbox":
		s.cmdInbox(args)
	case "service":
		s.cmdService(args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

// runCommand mirrors the host's command pipeline: preprocess, offer the line
// to the add-on, then fall back to the experience service's grant command.
func (s *Shell) runCommand(sender admin.Sender, line string) {
	line = s.host.OnCommandPreprocess(line)
	if s.host.OnCommand(sender, line) {
		return
	}
	if s.runGrant(line) {
		return
	}
	fmt.Fprintf(s.out, "Unknown command: %s\n", strings.Fields(line)[0])
}

// runGrant executes "<root> exp add <player> <amount>" against the ledger.
func (s *Shell) runGrant(line string) bool {
	parts := strings.Fields(line)
	if len(parts) < 5 ||
		!strings.EqualFold(parts[0], s.opts.GrantRoot) ||
		!strings.EqualFold(parts[1], "exp") ||
		!strings.EqualFold(parts[2], "add") {
		return false
	}

	p := s.players.FindByName(parts[3])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", parts[3])
		return true
	}
	amount, err := strconv.Atoi(parts[4])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid amount: %s\n", parts[4])
		return true
	}

	s.ledger.AddExp(p, amount, "command grant")
	fmt.Fprintf(s.out, "Granted %d exp to %s (total %d)\n", amount, p.Name(), s.ledger.Exp(p))
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Console Commands:
  Players:
    who                    - List online players
    join <name>            - Bring a player online
    leave <name>           - Take a player offline
    op <name> / deop <name> - Grant or revoke the multiplier permission

  Experience:
    gain <name> <amount>   - Fire an experience change event
    exp <name>             - Show a player's experience and history
    inbox <name>           - Show and clear messages sent to a player

  Commands:
    /<command> [args]      - Run a command as the console
    as <name> /<command>   - Run a command as a player

  Services:
    service enable|disable <name> - Toggle a host service

  General:
    help                   - Show this help
    quit                   - Exit`)
}

func (s *Shell) cmdWho() {
	fmt.Fprintf(s.out, "%d online: %s\n", s.players.OnlineCount(), strings.Join(s.players.OnlineNames(), ", "))
}

func (s *Shell) cmdJoin(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: join <name>")
		return
	}
	p, err := s.players.Join(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "%s joined (%s)\n", p.Name(), p.ID())
}

func (s *Shell) cmdLeave(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: leave <name>")
		return
	}
	p := s.players.Leave(args[0])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", args[0])
		return
	}
	s.host.OnPlayerQuit(p)
	fmt.Fprintf(s.out, "%s left\n", p.Name())
}

func (s *Shell) cmdGain(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: gain <name> <amount>")
		return
	}
	p := s.players.FindByName(args[0])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", args[0])
		return
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid amount: %s\n", args[1])
		return
	}

	ev := &experience.ChangeEvent{Player: p, Amount: amount}
	if !s.host.OnExperienceChange(ev) {
		s.ledger.Commit(ev)
	}
	fmt.Fprintf(s.out, "%s now has %d exp\n", p.Name(), s.ledger.Exp(p))
}

func (s *Shell) cmdExp(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: exp <name>")
		return
	}
	p := s.players.FindByName(args[0])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", args[0])
		return
	}
	fmt.Fprintf(s.out, "%s: %d exp\n", p.Name(), s.ledger.Exp(p))
	for _, r := range s.ledger.History(p.ID()) {
		fmt.Fprintf(s.out, "  %s %d -> %d (%s)\n", r.At.Format("15:04:05"), r.Before, r.After, r.Reason)
	}
}

func (s *Shell) cmdOp(args []string, grant bool) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: op|deop <name>")
		return
	}
	p := s.players.FindByName(args[0])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", args[0])
		return
	}
	if grant {
		p.Grant(s.opts.OpPermission)
		fmt.Fprintf(s.out, "%s is now an operator\n", p.Name())
		return
	}
	p.Revoke(s.opts.OpPermission)
	fmt.Fprintf(s.out, "%s is no longer an operator\n", p.Name())
}

func (s *Shell) cmdAs(args []string) {
	if len(args) < 2 || !strings.HasPrefix(args[1], "/") {
		fmt.Fprintln(s.out, "Usage: as <name> /<command> [args]")
		return
	}
	p := s.players.FindByName(args[0])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", args[0])
		return
	}
	s.runCommand(p, strings.Join(args[1:], " "))
	s.printInbox(p)
}

func (s *Shell) cmdInbox(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: inbox <name>")
		return
	}
	p := s.players.FindByName(args[0])
	if p == nil {
		fmt.Fprintf(s.out, "Player %s is not online\n", args[0])
		return
	}
	if !s.printInbox(p) {
		fmt.Fprintf(s.out, "%s has no messages\n", p.Name())
	}
}

func (s *Shell) printInbox(p *model.Player) bool {
	msgs := p.DrainMessages()
	for _, m := range msgs {
		fmt.Fprintf(s.out, "[to %s] %s\n", p.Name(), m)
	}
	return len(msgs) > 0
}

func (s *Shell) cmdService(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: service enable|disable <name>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "enable":
		s.services.Enable(args[1])
	case "disable":
		s.services.Disable(args[1])
	default:
		fmt.Fprintln(s.out, "Usage: service enable|disable <name>")
		return
	}
	fmt.Fprintf(s.out, "service %s: %s\n", args[1], strings.ToLower(args[0]))
}
