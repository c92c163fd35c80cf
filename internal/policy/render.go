package policy

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Rendered is a diagnostic ready for the host channel. Fatal diagnostics must
// make the enclosing check fail.
type Rendered struct {
	Action  Action
	Fatal   bool
	Message string
}

// Render formats d for the annotated unit named subject. It returns false for
// NoAction, where nothing is emitted.
func Render(d Decision, p Policy, subject string) (Rendered, bool) {
	var text string
	if msg, ok := p.Message(); ok {
		text = normalizeMessage(msg)
	}

	switch d.Action {
	case Warn:
		if text == "" {
			text = fmt.Sprintf("%s passed its review date (%s): consider updating or removing this code",
				quoteSubject(subject), d.Threshold)
		}
		return Rendered{Action: Warn, Message: text}, true
	case Fail:
		if text == "" {
			text = fmt.Sprintf("%s has expired (after %s): consider removing this code",
				quoteSubject(subject), d.Threshold)
		}
		return Rendered{Action: Fail, Fatal: true, Message: text}, true
	}
	return Rendered{}, false
}

// ConfigMessage renders a configuration error so it reads differently from an
// expiry failure.
func ConfigMessage(err error) string {
	var oerr *OverrideError
	if errors.As(err, &oerr) {
		return oerr.Error()
	}
	return "malformed bestbefore annotation: " + err.Error()
}

func quoteSubject(subject string) string {
	if subject == "" {
		subject = "code"
	}
	return "'" + subject + "'"
}

func normalizeMessage(msg string) string {
	msg = norm.NFC.String(msg)
	msg = strings.ReplaceAll(msg, "\r\n", " ")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
