package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bestbefore/internal/prof"
)

// setupProfiling starts the profilers requested by the persistent flags.
func (a *app) setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !opts.Enabled() {
		return nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return err
	}
	a.onExit(func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(a.stderr, "profile: %v\n", err)
		}
	})
	return nil
}
