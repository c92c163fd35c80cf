// Package calendar models the month-granular dates used by bestbefore
// annotations.
//
// A CalendarDate is always the first day of a month. The only accepted text
// form is "MM.YYYY": exactly two month digits, a dot, and one or more year
// digits.
package calendar

import (
	"fmt"
	"strconv"
	"time"
)

// CalendarDate is a first-of-month date ordered by year, then month.
type CalendarDate struct {
	Year  int
	Month time.Month
}

// FromTime truncates t to its year and month.
func FromTime(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month()}
}

// Compare returns -1, 0 or +1 when d is before, equal to or after other.
func (d CalendarDate) Compare(other CalendarDate) int {
	switch {
	case d.Year < other.Year:
		return -1
	case d.Year > other.Year:
		return 1
	case d.Month < other.Month:
		return -1
	case d.Month > other.Month:
		return 1
	}
	return 0
}

// After reports whether d is strictly later than other.
func (d CalendarDate) After(other CalendarDate) bool {
	return d.Compare(other) > 0
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Compare(other) < 0
}

// IsZero reports whether d was never set.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0
}

// Time returns midnight UTC on the first day of the month.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String renders the date back in MM.YYYY form.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%02d.%04d", int(d.Month), d.Year)
}

// MarshalText implements encoding.TextMarshaler.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with Parse semantics.
func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse reads a date in MM.YYYY form.
func Parse(text string) (CalendarDate, error) {
	if len(text) < 4 || text[2] != '.' {
		return CalendarDate{}, malformed(text, "expected format MM.YYYY")
	}
	monthText, yearText := text[:2], text[3:]
	if !allDigits(monthText) {
		return CalendarDate{}, malformed(text, fmt.Sprintf("month %q is not a two-digit number", monthText))
	}
	if !allDigits(yearText) {
		return CalendarDate{}, malformed(text, fmt.Sprintf("year %q is not a number", yearText))
	}

	month, err := strconv.Atoi(monthText)
	if err != nil {
		return CalendarDate{}, malformed(text, fmt.Sprintf("month %q is not a number", monthText))
	}
	if month < 1 || month > 12 {
		return CalendarDate{}, &ParseError{
			Input:  text,
			Kind:   MonthOutOfRange,
			Reason: fmt.Sprintf("month %d is outside 1-12", month),
		}
	}

	year, err := strconv.Atoi(yearText)
	if err != nil {
		return CalendarDate{}, malformed(text, fmt.Sprintf("year %q is out of range", yearText))
	}
	if year < 1 {
		return CalendarDate{}, malformed(text, "year must be a positive number")
	}

	return CalendarDate{Year: year, Month: time.Month(month)}, nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(text string) CalendarDate {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func malformed(text, reason string) *ParseError {
	return &ParseError{Input: text, Kind: MalformedFormat, Reason: reason}
}
