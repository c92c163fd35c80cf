package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bestbefore/internal/trace"
)

// setupTracing reads the trace flags, creates the tracer and attaches it to
// the command context. The tracer is closed when the run ends.
func (a *app) setupTracing(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	output, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace alone means phase tracing.
	if level == trace.LevelOff && output != "" && !flags.Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	cfg := trace.Config{Level: level, Format: format, OutputPath: output}
	if output == "" || output == "-" {
		cfg.Output = a.stderr
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	a.tracer = tracer
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	a.onExit(func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(a.stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(a.stderr, "trace: close error: %v\n", err)
		}
	})
	return nil
}

// dumpTrace writes the buffered events of an error-level tracer after a
// failed run.
func (a *app) dumpTrace() {
	if a.tracer.Level() != trace.LevelError {
		return
	}
	if d, ok := a.tracer.(trace.Dumper); ok {
		fmt.Fprintln(a.stderr, "trace (last events):")
		if err := d.Dump(a.stderr, trace.FormatText); err != nil {
			fmt.Fprintf(a.stderr, "trace: dump error: %v\n", err)
		}
	}
}
