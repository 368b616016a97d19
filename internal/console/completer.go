package console

import (
	"strings"

	"github.com/udisondev/expmultiplier/internal/admin"
)

// completer adapts Shell completion to readline.AutoCompleter.
type completer struct {
	shell *Shell
}

// Do returns candidate suffixes for the word under the cursor and the length
// of that word. Slash commands are completed by the add-on; anything else
// completes console builtins or online player names.
func (c completer) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])
	word := text[strings.LastIndex(text, " ")+1:]

	candidates := c.shell.Complete(text)
	if !strings.Contains(text, " ") {
		word = strings.TrimPrefix(word, "/")
	}

	typed := []rune(word)
	var out [][]rune
	for _, cand := range candidates {
		cr := []rune(cand)
		if len(cr) < len(typed) || !strings.EqualFold(string(cr[:len(typed)]), word) {
			continue
		}
		out = append(out, append(cr[len(typed):], ' '))
	}
	return out, len(typed)
}

// Complete returns completion candidates for a partially typed console line.
func (s *Shell) Complete(text string) []string {
	if strings.HasPrefix(text, "/") {
		return s.host.OnTabComplete(s.sender, text)
	}

	parts := strings.Split(text, " ")
	if len(parts) == 1 {
		return filterPrefix(builtins, parts[0])
	}

	switch strings.ToLower(parts[0]) {
	case "leave", "gain", "exp", "op", "deop", "inbox":
		if len(parts) == 2 {
			return filterPrefix(s.players.OnlineNames(), parts[1])
		}
	case "as":
		if len(parts) == 2 {
			return filterPrefix(s.players.OnlineNames(), parts[1])
		}
		if p := s.players.FindByName(parts[1]); p != nil {
			return s.host.OnTabComplete(admin.Sender(p), strings.Join(parts[2:], " "))
		}
	case "service":
		if len(parts) == 2 {
			return filterPrefix([]string{"enable", "disable"}, parts[1])
		}
	}
	return nil
}

func filterPrefix(candidates []string, prefix string) []string {
	lower := strings.ToLower(prefix)
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, c)
		}
	}
	return out
}
