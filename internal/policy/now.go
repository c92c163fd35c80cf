package policy

import (
	"errors"
	"fmt"
	"os"
	"time"

	"bestbefore/internal/calendar"
)

// EnvOverride is the default environment variable that pins the effective now.
const EnvOverride = "BESTBEFORE_DATE"

// ErrInvalidOverride matches any OverrideError.
var ErrInvalidOverride = errors.New("invalid date override")

// OverrideError reports a malformed override value. Source names where the
// value came from, e.g. "BESTBEFORE_DATE" or "--now".
type OverrideError struct {
	Source string
	Err    error
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("invalid %s override: %v", e.Source, e.Err)
}

func (e *OverrideError) Unwrap() error { return e.Err }

func (e *OverrideError) Is(target error) bool { return target == ErrInvalidOverride }

// Override is one candidate value for the effective now.
type Override struct {
	Source string
	Value  string
}

// NowSource describes where the effective now comes from. The first present
// override wins; Clock is used when none is present.
type NowSource struct {
	Overrides []Override
	Clock     func() time.Time
}

// EnvSource reads the override from the environment variable name (EnvOverride
// when empty) through lookup, falling back to clock.
func EnvSource(name string, lookup func(string) (string, bool), clock func() time.Time) NowSource {
	if name == "" {
		name = EnvOverride
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var src NowSource
	if v, ok := lookup(name); ok {
		src.Overrides = append(src.Overrides, Override{Source: name, Value: v})
	}
	src.Clock = clock
	return src
}

// Prepend returns a copy of s with o taking precedence over existing overrides.
func (s NowSource) Prepend(o Override) NowSource {
	out := NowSource{Clock: s.Clock}
	out.Overrides = append(out.Overrides, o)
	out.Overrides = append(out.Overrides, s.Overrides...)
	return out
}

// Append returns a copy of s with o used only when nothing else is present.
func (s NowSource) Append(o Override) NowSource {
	out := NowSource{Clock: s.Clock}
	out.Overrides = append(out.Overrides, s.Overrides...)
	out.Overrides = append(out.Overrides, o)
	return out
}

// ResolveNow determines the effective now for one run.
func ResolveNow(src NowSource) (calendar.CalendarDate, error) {
	if len(src.Overrides) > 0 {
		o := src.Overrides[0]
		d, err := calendar.Parse(o.Value)
		if err != nil {
			return calendar.CalendarDate{}, &OverrideError{Source: o.Source, Err: err}
		}
		return d, nil
	}
	clock := src.Clock
	if clock == nil {
		clock = time.Now
	}
	return calendar.FromTime(clock()), nil
}
