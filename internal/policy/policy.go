// Package policy holds the bestbefore decision engine.
//
// A Policy is built once per annotated unit from the raw annotation arguments
// and validated immediately, before any comparison with the current date.
// Evaluate compares a Policy with an effective "now" and Render turns the
// resulting Decision into the text handed to the host's diagnostic channel.
//
// Nothing in this package reads the environment or the clock except
// ResolveNow, which is the only seam between the engine and wall time.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"bestbefore/internal/calendar"
)

// Field names used in configuration errors.
const (
	FieldReview  = "review date"
	FieldExpires = "expires"
)

var (
	// ErrExpiryNotAfterReview is returned when expires <= review.
	ErrExpiryNotAfterReview = errors.New("expiration date must be after review date")
	// ErrMissingDate is returned when neither a review date nor an expiry is given.
	ErrMissingDate = errors.New("missing date: provide a review date or an expires argument")
)

// FieldError ties a date parse failure to the annotation argument it came from.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Spec is the raw, unparsed argument surface of one annotation.
type Spec struct {
	Review     string
	HasReview  bool
	Expires    string
	HasExpires bool
	Message    string
	HasMessage bool
}

// Policy is an immutable, validated expiration policy.
type Policy struct {
	review        calendar.CalendarDate
	reviewImplied bool
	expiry        calendar.CalendarDate
	hasExpiry     bool
	message       string
	hasMessage    bool
}

// New parses and validates spec.
//
// When only expires is given the review date is implied to be the expiry
// date; such a policy never warns and fails once the expiry has passed.
func New(spec Spec) (Policy, error) {
	var p Policy

	if spec.HasReview {
		review, err := calendar.Parse(spec.Review)
		if err != nil {
			return Policy{}, &FieldError{Field: FieldReview, Err: err}
		}
		p.review = review
	}

	if spec.HasExpires {
		expiry, err := calendar.Parse(spec.Expires)
		if err != nil {
			return Policy{}, &FieldError{Field: FieldExpires, Err: err}
		}
		p.expiry = expiry
		p.hasExpiry = true
	}

	switch {
	case spec.HasReview && p.hasExpiry:
		if err := Validate(p.review, p.expiry); err != nil {
			return Policy{}, err
		}
	case !spec.HasReview && p.hasExpiry:
		p.review = p.expiry
		p.reviewImplied = true
	case !spec.HasReview:
		return Policy{}, ErrMissingDate
	}

	if spec.HasMessage {
		p.message = strings.TrimSpace(spec.Message)
		p.hasMessage = p.message != ""
	}
	return p, nil
}

// Must is New for statically known specs; it panics on error.
func Must(spec Spec) Policy {
	p, err := New(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks that expiry is strictly after review.
func Validate(review, expiry calendar.CalendarDate) error {
	if !expiry.After(review) {
		return fmt.Errorf("%w: expires (%s) is not after review date (%s)", ErrExpiryNotAfterReview, expiry, review)
	}
	return nil
}

// Review returns the review threshold.
func (p Policy) Review() calendar.CalendarDate { return p.review }

// ReviewImplied reports whether the review date was derived from expires.
func (p Policy) ReviewImplied() bool { return p.reviewImplied }

// Expiry returns the hard-expiry threshold, if any.
func (p Policy) Expiry() (calendar.CalendarDate, bool) { return p.expiry, p.hasExpiry }

// Message returns the custom diagnostic text, if any.
func (p Policy) Message() (string, bool) { return p.message, p.hasMessage }
