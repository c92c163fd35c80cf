package policy

import "bestbefore/internal/calendar"

// Action is the outcome kind of an evaluation.
type Action uint8

const (
	NoAction Action = iota
	Warn
	Fail
)

func (a Action) String() string {
	switch a {
	case NoAction:
		return "none"
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	}
	return "unknown"
}

// Decision is the result of comparing a Policy with an effective now.
// Threshold is the date that was crossed; it is zero for NoAction.
type Decision struct {
	Action    Action
	Threshold calendar.CalendarDate
	Now       calendar.CalendarDate
}

// Evaluate applies p at now. Only strictly-after triggers an action; the
// threshold month itself is still compliant.
func Evaluate(p Policy, now calendar.CalendarDate) Decision {
	if expiry, ok := p.Expiry(); ok && now.After(expiry) {
		return Decision{Action: Fail, Threshold: expiry, Now: now}
	}
	if now.After(p.review) {
		return Decision{Action: Warn, Threshold: p.review, Now: now}
	}
	return Decision{Action: NoAction, Now: now}
}
