package directive

import (
	"errors"

	"bestbefore/internal/calendar"
	"bestbefore/internal/diag"
	"bestbefore/internal/policy"
)

// Finding is the engine's verdict on one annotation.
type Finding struct {
	Code     diag.Code
	Severity diag.Severity
	Message  string
	// Decision is set when the annotation was well-formed.
	Decision policy.Decision
	Policy   policy.Policy
	// Err is set for configuration errors.
	Err error
}

// Fatal reports whether the finding must fail the check.
func (f Finding) Fatal() bool {
	return f.Severity >= diag.SevError
}

// Check parses, validates and evaluates a at now. The second result is false
// when nothing needs to be reported.
func Check(a Annotation, now calendar.CalendarDate) (Finding, bool) {
	p, err := Compile(a)
	if err != nil {
		return ConfigFinding(err), true
	}

	d := policy.Evaluate(p, now)
	r, ok := policy.Render(d, p, a.Subject)
	if !ok {
		return Finding{Decision: d, Policy: p}, false
	}

	f := Finding{
		Code:     diag.ExpPastReview,
		Severity: diag.SevWarning,
		Message:  r.Message,
		Decision: d,
		Policy:   p,
	}
	if r.Fatal {
		f.Code = diag.ExpExpired
		f.Severity = diag.SevError
	}
	return f, true
}

// Compile turns the annotation arguments into a validated Policy.
func Compile(a Annotation) (policy.Policy, error) {
	spec, err := ParseArgs(a.Raw)
	if err != nil {
		return policy.Policy{}, err
	}
	return policy.New(spec)
}

// ConfigFinding wraps a configuration error as an error-severity finding.
func ConfigFinding(err error) Finding {
	return Finding{
		Code:     ConfigCode(err),
		Severity: diag.SevError,
		Message:  policy.ConfigMessage(err),
		Err:      err,
	}
}

// ConfigCode maps a configuration error to its diagnostic code.
func ConfigCode(err error) diag.Code {
	var aerr *ArgError
	if errors.As(err, &aerr) {
		switch aerr.Kind {
		case ArgUnknown:
			return diag.CfgUnknownArgument
		case ArgDuplicate:
			return diag.CfgDuplicateArgument
		default:
			return diag.CfgBadArgumentSyntax
		}
	}
	switch {
	case errors.Is(err, policy.ErrInvalidOverride):
		return diag.CfgInvalidOverride
	case errors.Is(err, calendar.ErrMonthOutOfRange):
		return diag.CfgMonthOutOfRange
	case errors.Is(err, calendar.ErrMalformed):
		return diag.CfgMalformedDate
	case errors.Is(err, policy.ErrExpiryNotAfterReview):
		return diag.CfgExpiryNotAfter
	case errors.Is(err, policy.ErrMissingDate):
		return diag.CfgMissingDate
	}
	return diag.UnknownCode
}
