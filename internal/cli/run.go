package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/diskcache/internal/config"
)

// Run is the main entry point. Returns exit code.
//
// sigCh may be nil. A signal on it cancels the running command.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	globals := newGlobalFlags()

	err := globals.fs.Parse(args[min(1, len(args)):])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, globals)

			return 0
		}

		fprintln(errOut, "error:", err)
		printUsage(errOut, globals)

		return 1
	}

	rest := globals.fs.Args()
	if len(rest) == 0 {
		printUsage(out, globals)

		return 0
	}

	input := config.LoadInput{
		WorkDirOverride:   globals.workDir,
		ConfigPath:        globals.configPath,
		CachePathOverride: globals.cachePath,
		Env:               env,
	}

	if globals.fs.Changed("cache-path") && globals.cachePath == "" {
		fprintln(errOut, "error:", config.ErrCachePathEmpty)
		printUsage(errOut, globals)

		return 1
	}

	if globals.fs.Changed("clean-every") {
		input.CleanEveryOverride = &globals.cleanEvery
	}

	cfg, err := config.Load(input)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	sess := newSession(cfg, newLogger(errOut, globals.verbose), in, env)
	defer sess.close()

	name := rest[0]

	if name == "shell" {
		// The shell keeps the store open, so it runs the sweeper.
		sess.cleanEvery = cfg.CleanEvery
	}

	cmd := findCommand(allCommands(sess), name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(errOut, globals)

		return 1
	}

	o := NewIO(in, out, errOut)

	code := cmd.Run(ctx, o, rest[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

type globalFlags struct {
	fs         *flag.FlagSet
	workDir    string
	configPath string
	cachePath  string
	cleanEvery time.Duration
	verbose    bool
}

func newGlobalFlags() *globalFlags {
	g := &globalFlags{}

	fs := flag.NewFlagSet("diskcache", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)

	fs.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	fs.StringVarP(&g.configPath, "config", "c", "", "Use specified config `file`")
	fs.StringVar(&g.cachePath, "cache-path", "", "Cache root `dir` (overrides config)")
	fs.DurationVar(&g.cleanEvery, "clean-every", 0, "Sweep `interval` for the shell, 0 disables (overrides config)")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log store activity to stderr")

	g.fs = fs

	return g
}

// newLogger logs warnings and errors by default, everything with verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// allCommands returns the commands in help order, bound to sess.
func allCommands(sess *session) []*Command {
	return []*Command{
		GetCmd(sess),
		SetCmd(sess),
		DropCmd(sess),
		SweepCmd(sess),
		CheckSegmentCmd(),
		WhereCmd(sess),
		PrintConfigCmd(sess),
		ShellCmd(sess),
	}
}

func findCommand(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, globals *globalFlags) {
	fprintln(w, `diskcache - disk-backed TTL cache

Usage: diskcache [flags] <command> [args]

Global flags:`)
	fprintln(w, strings.TrimRight(globals.fs.FlagUsages(), "\n"))
	fprintln(w, "  -h, --help                    Show help")
	fprintln(w)
	fprintln(w, "Commands:")

	for _, c := range allCommands(nil) {
		fprintln(w, c.HelpLine())
	}
}
