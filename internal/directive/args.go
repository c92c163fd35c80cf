package directive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bestbefore/internal/policy"
)

// Named argument keys.
const (
	ArgExpires = "expires"
	ArgMessage = "message"
)

// ArgErrorKind classifies argument-list problems.
type ArgErrorKind uint8

const (
	ArgUnknown ArgErrorKind = iota + 1
	ArgDuplicate
	ArgSyntax
)

// ErrArguments matches any ArgError.
var ErrArguments = errors.New("invalid annotation arguments")

// ArgError reports a problem in the directive argument list.
type ArgError struct {
	Kind   ArgErrorKind
	Name   string
	Detail string
}

func (e *ArgError) Error() string {
	switch e.Kind {
	case ArgUnknown:
		return fmt.Sprintf("unknown parameter %q, expected 'expires' or 'message'", e.Name)
	case ArgDuplicate:
		return fmt.Sprintf("%s given more than once", e.Name)
	}
	return e.Detail
}

func (e *ArgError) Is(target error) bool { return target == ErrArguments }

// ParseArgs reads the text after "//bestbefore:" into a policy.Spec.
//
// Grammar: an optional leading review date, then name=value pairs.
// Separators are spaces or commas; values may be Go-quoted strings.
func ParseArgs(raw string) (policy.Spec, error) {
	var spec policy.Spec
	s := raw
	first := true

	for {
		s = skipSeparators(s)
		if s == "" {
			return spec, nil
		}

		if s[0] == '"' || s[0] == '`' {
			value, rest, err := readQuoted(s)
			if err != nil {
				return policy.Spec{}, err
			}
			if err := setReview(&spec, value, first); err != nil {
				return policy.Spec{}, err
			}
			s, first = rest, false
			continue
		}

		word, rest := readBare(s)
		name, value, isNamed := strings.Cut(word, "=")
		if !isNamed {
			if after, ok := strings.CutPrefix(strings.TrimLeft(rest, " \t"), "="); ok {
				name, value, isNamed, rest = word, "", true, strings.TrimLeft(after, " \t")
			}
		}
		if !isNamed {
			if err := setReview(&spec, word, first); err != nil {
				return policy.Spec{}, err
			}
			s, first = rest, false
			continue
		}

		if value == "" && rest != "" {
			v, after, err := readValue(rest)
			if err != nil {
				return policy.Spec{}, err
			}
			value, rest = v, after
		}
		if name == "" {
			return policy.Spec{}, &ArgError{Kind: ArgSyntax, Detail: fmt.Sprintf("missing parameter name before '=' in %q", word)}
		}
		if value == "" {
			return policy.Spec{}, &ArgError{Kind: ArgSyntax, Name: name, Detail: fmt.Sprintf("missing value for %s", name)}
		}

		switch name {
		case ArgExpires:
			if spec.HasExpires {
				return policy.Spec{}, &ArgError{Kind: ArgDuplicate, Name: name}
			}
			spec.Expires, spec.HasExpires = value, true
		case ArgMessage:
			if spec.HasMessage {
				return policy.Spec{}, &ArgError{Kind: ArgDuplicate, Name: name}
			}
			spec.Message, spec.HasMessage = value, true
		default:
			return policy.Spec{}, &ArgError{Kind: ArgUnknown, Name: name}
		}
		s, first = rest, false
	}
}

func setReview(spec *policy.Spec, value string, first bool) error {
	if spec.HasReview {
		return &ArgError{Kind: ArgDuplicate, Name: policy.FieldReview}
	}
	if !first {
		return &ArgError{Kind: ArgSyntax, Detail: fmt.Sprintf("review date %q must come before named parameters", value)}
	}
	spec.Review, spec.HasReview = value, true
	return nil
}

func skipSeparators(s string) string {
	return strings.TrimLeft(s, " \t,")
}

// readBare reads up to the next separator. A '=' directly followed by a quote
// stops the word so the quoted value can be read separately.
func readBare(s string) (word, rest string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', ',':
			return s[:i], s[i:]
		case '=':
			if i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '`') {
				return s[:i+1], s[i+1:]
			}
		}
	}
	return s, ""
}

// readValue reads a quoted or bare value at the start of s.
func readValue(s string) (value, rest string, err error) {
	if s[0] == '"' || s[0] == '`' {
		return readQuoted(s)
	}
	if s[0] == ',' {
		return "", s, nil
	}
	value, rest = readBare(s)
	return value, rest, nil
}

func readQuoted(s string) (value, rest string, err error) {
	lit, err := strconv.QuotedPrefix(s)
	if err != nil {
		return "", "", &ArgError{Kind: ArgSyntax, Detail: fmt.Sprintf("unterminated or invalid quoted value near %q", truncate(s, 24))}
	}
	value, err = strconv.Unquote(lit)
	if err != nil {
		return "", "", &ArgError{Kind: ArgSyntax, Detail: fmt.Sprintf("invalid quoted value %s", lit)}
	}
	rest = s[len(lit):]
	if rest != "" && !strings.ContainsRune(" \t,", rune(rest[0])) {
		return "", "", &ArgError{Kind: ArgSyntax, Detail: fmt.Sprintf("expected separator after %s", lit)}
	}
	return value, rest, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
