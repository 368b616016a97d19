package console

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
)

// Console runs a Shell on an interactive terminal.
type Console struct {
	shell *Shell
	rl    *readline.Instance
}

// New creates a console. The shell's output is redirected through readline
// so log lines do not clobber the prompt.
func New(shell *Shell) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "expmult> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer{shell: shell},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	shell.SetOutput(rl.Stdout())
	return &Console{shell: shell, rl: rl}, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run reads and executes lines until quit, EOF or ctx cancellation.
func (c *Console) Run(ctx context.Context) error {
	defer c.rl.Close()

	// Readline blocks; closing it unblocks the loop on shutdown.
	stop := context.AfterFunc(ctx, func() { c.rl.Close() })
	defer stop()

	c.shell.printHelp()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return nil
		}

		if c.shell.Exec(line) {
			return nil
		}
	}
}
