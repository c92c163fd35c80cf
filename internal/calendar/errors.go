package calendar

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes why a date string was rejected.
type ErrorKind uint8

const (
	// MalformedFormat covers wrong shape, non-numeric parts and bad years.
	MalformedFormat ErrorKind = iota + 1
	// MonthOutOfRange is a well-formed month outside 1-12.
	MonthOutOfRange
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedFormat:
		return "malformed format"
	case MonthOutOfRange:
		return "month out of range"
	}
	return "unknown"
}

var (
	// ErrMalformed matches any ParseError of kind MalformedFormat.
	ErrMalformed = errors.New("malformed date")
	// ErrMonthOutOfRange matches any ParseError of kind MonthOutOfRange.
	ErrMonthOutOfRange = errors.New("month out of range")
)

// ParseError reports a rejected MM.YYYY string.
type ParseError struct {
	Input  string
	Kind   ErrorKind
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// Is lets errors.Is match the kind sentinels.
func (e *ParseError) Is(target error) bool {
	switch target {
	case ErrMalformed:
		return e.Kind == MalformedFormat
	case ErrMonthOutOfRange:
		return e.Kind == MonthOutOfRange
	}
	return false
}
