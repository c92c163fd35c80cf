package main

import (
	"fmt"

	"bestbefore/internal/calendar"
	"bestbefore/internal/diag"
	"bestbefore/internal/directive"
	"bestbefore/internal/policy"
)

// resolveNow picks the effective date: --now, then the environment, then the
// config file's [date].now, then the clock.
func (a *app) resolveNow(flagNow string) (calendar.CalendarDate, error) {
	src := policy.EnvSource(a.cfg.Date.Env, a.lookupEnv, a.clock)
	if a.cfg.Date.Now != "" {
		source := "[date].now"
		if a.cfg.Path != "" {
			source = a.cfg.Path + " " + source
		}
		src = src.Append(policy.Override{Source: source, Value: a.cfg.Date.Now})
	}
	if flagNow != "" {
		src = src.Prepend(policy.Override{Source: "--now", Value: flagNow})
	}
	return policy.ResolveNow(src)
}

// reportConfigError prints err the way a diagnostic without location is
// printed and returns the failing exit status.
func (a *app) reportConfigError(err error) error {
	code := directive.ConfigCode(err)
	if code == diag.UnknownCode {
		return err
	}
	fmt.Fprintf(a.stderr, "%s %s: %s\n", diag.SevError.Label(), code.ID(), policy.ConfigMessage(err))
	return &exitError{code: 1}
}
