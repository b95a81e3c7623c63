package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

// ShellCmd returns the shell command.
func ShellCmd(sess *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Interactive prompt over one open store",
		Long: `Start an interactive prompt that runs get, set, drop, sweep, where,
check-segment and print-config against one open store.

The store runs its background sweeper while the shell is open (see
--clean-every). On a terminal the prompt has line editing and history;
otherwise commands are read line by line from stdin.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execShell(ctx, o, sess)
		},
	}
}

// prompter reads one command line at a time.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

func execShell(ctx context.Context, o *IO, sess *session) error {
	store, err := sess.open(ctx)
	if err != nil {
		return err
	}

	p := newPrompter(o.in, sess.env)
	defer func() { _ = p.Close() }()

	o.Printf("diskcache shell (root=%s, clean_every=%s)\n", store.Root(), sess.cleanEvery)
	o.Println("Type 'help' for available commands.")

	for {
		err := ctx.Err()
		if err != nil {
			return err
		}

		line, err := p.Prompt("diskcache> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.AppendHistory(line)

		fields := strings.Fields(line)

		switch fields[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			printShellHelp(o)

			continue
		case "shell":
			o.ErrPrintln("error:", ErrShellNesting)

			continue
		}

		cmd := findCommand(allCommands(sess), fields[0])
		if cmd == nil {
			o.ErrPrintln("error: unknown command:", fields[0], "(type 'help' for commands)")

			continue
		}

		// Stdin belongs to the shell; "set ... -" has nothing to read.
		lineIO := NewIO(nil, o.out, o.errOut)
		if cmd.Run(ctx, lineIO, fields[1:]) == 0 {
			_ = lineIO.Finish()
		}
	}
}

func printShellHelp(o *IO) {
	o.Println("Commands:")

	for _, c := range allCommands(nil) {
		if c.Name() != "shell" {
			o.Println(c.HelpLine())
		}
	}

	o.Printf("  %-36s %s\n", "help", "Show this help")
	o.Printf("  %-36s %s\n", "exit / quit / q", "Leave the shell")
}

func shellCompleter(line string) []string {
	var completions []string

	for _, c := range allCommands(nil) {
		if name := c.Name(); name != "shell" && strings.HasPrefix(name, line) {
			completions = append(completions, name)
		}
	}

	for _, name := range []string{"help", "exit", "quit"} {
		if strings.HasPrefix(name, line) {
			completions = append(completions, name)
		}
	}

	return completions
}

// newPrompter uses liner on a terminal and a plain line reader otherwise.
func newPrompter(in io.Reader, env map[string]string) prompter {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) && liner.TerminalSupported() {
		return newLinerPrompter(historyFile(env))
	}

	if in == nil {
		in = strings.NewReader("")
	}

	return &scanPrompter{scanner: bufio.NewScanner(in)}
}

// historyFile returns $XDG_STATE_HOME/diskcache/history, falling back to
// ~/.diskcache_history. Empty if neither is known.
func historyFile(env map[string]string) string {
	if state := env["XDG_STATE_HOME"]; state != "" {
		return filepath.Join(state, "diskcache", "history")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".diskcache_history")
	}

	return ""
}

type linerPrompter struct {
	*liner.State
	history string
}

func newLinerPrompter(history string) *linerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(shellCompleter)

	if history != "" {
		if f, err := os.Open(history); err == nil {
			_, _ = state.ReadHistory(f)
			_ = f.Close()
		}
	}

	return &linerPrompter{State: state, history: history}
}

// Close saves history and restores the terminal.
func (p *linerPrompter) Close() error {
	if p.history != "" {
		_ = os.MkdirAll(filepath.Dir(p.history), 0o700)

		if f, err := os.Create(p.history); err == nil {
			_, _ = p.WriteHistory(f)
			_ = f.Close()
		}
	}

	return p.State.Close()
}

// scanPrompter reads lines without echoing a prompt, for pipes and tests.
type scanPrompter struct {
	scanner *bufio.Scanner
}

func (p *scanPrompter) Prompt(string) (string, error) {
	if p.scanner.Scan() {
		return p.scanner.Text(), nil
	}

	err := p.scanner.Err()
	if err != nil {
		return "", err
	}

	return "", io.EOF
}

func (*scanPrompter) AppendHistory(string) {}

func (*scanPrompter) Close() error { return nil }
