package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bestbefore/internal/config"
	"bestbefore/internal/trace"
	"bestbefore/internal/version"
)

// exitError carries a process exit status through cobra without printing.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	lookupEnv func(string) (string, bool)
	clock     func() time.Time
	workDir   string

	cfg      *config.Config
	tracer   trace.Tracer
	cleanups []func()
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:    stdout,
		stderr:    stderr,
		lookupEnv: os.LookupEnv,
		clock:     time.Now,
		cfg:       &config.Config{},
		tracer:    trace.Nop,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "bestbefore",
		Short:         "Find Go code past its best-before date",
		Long:          "bestbefore checks //bestbefore: annotations in Go source and reports code past its review or expiry date.",
		Version:       version.Current().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			if err := a.setupProfiling(cmd); err != nil {
				return err
			}
			return a.setupTracing(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("config", "", "config file (default: bestbefore.toml or .bestbefore.yaml found upwards)")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to report (0 = unlimited)")
	root.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	root.PersistentFlags().String("cpu-profile", "", "write CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write heap profile to file on exit")
	root.PersistentFlags().String("runtime-trace", "", "write Go runtime trace to file")

	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newEvalCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newVersionCmd(a))
	return root
}

// run executes the CLI and returns the process exit status: 0 on success,
// 1 when the check failed, 2 for usage and runtime errors.
func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}

	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	}
	fmt.Fprintf(a.stderr, "bestbefore: %v\n", err)
	return 2
}

// onExit registers fn to run after the command finished, in reverse order.
func (a *app) onExit(fn func()) {
	a.cleanups = append(a.cleanups, fn)
}

func main() {
	os.Exit(run(context.Background(), newApp(os.Stdout, os.Stderr), os.Args[1:]))
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}
	dir := a.workDir
	if dir == "" {
		dir = "."
	}
	cfg, _, err := config.Discover(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// useColor resolves --color for w.
func (a *app) useColor(cmd *cobra.Command, w io.Writer) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		if _, ok := a.lookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		return isTerminal(w), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
}

// baseDir is the directory report paths are made relative to.
func (a *app) baseDir() string {
	dir := a.workDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	return abs
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
