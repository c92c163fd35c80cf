package policy

import (
	"errors"
	"strings"
	"testing"
)

func TestRender_NoAction(t *testing.T) {
	p := Must(Spec{Review: "03.2024", HasReview: true})
	if _, ok := Render(Evaluate(p, date("02.2024")), p, "function Legacy"); ok {
		t.Fatalf("NoAction must not render")
	}
}

func TestRender_DefaultWarn(t *testing.T) {
	p := Must(Spec{Review: "03.2024", HasReview: true})
	r, ok := Render(Evaluate(p, date("04.2024")), p, "function Legacy")
	if !ok {
		t.Fatalf("expected diagnostic")
	}
	if r.Fatal || r.Action != Warn {
		t.Errorf("warn must be non-fatal: %+v", r)
	}
	want := "'function Legacy' passed its review date (03.2024): consider updating or removing this code"
	if r.Message != want {
		t.Errorf("message = %q, want %q", r.Message, want)
	}
}

func TestRender_DefaultFail(t *testing.T) {
	p := Must(Spec{Review: "01.2023", HasReview: true, Expires: "12.2023", HasExpires: true})
	r, ok := Render(Evaluate(p, date("01.2024")), p, "type Old")
	if !ok || !r.Fatal || r.Action != Fail {
		t.Fatalf("expected fatal diagnostic, got %+v", r)
	}
	if !strings.Contains(r.Message, "12.2023") || !strings.Contains(r.Message, "expired") {
		t.Errorf("fail message should mention expiry date: %q", r.Message)
	}
}

func TestRender_CustomMessage(t *testing.T) {
	p := Must(Spec{Review: "02.2023", HasReview: true, Message: "Please use\nnew_api() instead", HasMessage: true})
	r, ok := Render(Evaluate(p, date("03.2023")), p, "function deprecated")
	if !ok {
		t.Fatalf("expected diagnostic")
	}
	if r.Message != "Please use new_api() instead" {
		t.Errorf("message = %q", r.Message)
	}
}

func TestRender_CustomMessageNormalized(t *testing.T) {
	// "e" + combining acute accent composes to U+00E9.
	p := Must(Spec{Review: "02.2023", HasReview: true, Message: "cafe\u0301", HasMessage: true})
	r, _ := Render(Evaluate(p, date("03.2023")), p, "x")
	if r.Message != "caf\u00e9" {
		t.Errorf("message not NFC-normalized: %q", r.Message)
	}
}

func TestConfigMessage_Distinct(t *testing.T) {
	_, err := New(Spec{Review: "05.2023", HasReview: true, Expires: "04.2023", HasExpires: true})
	msg := ConfigMessage(err)
	if !strings.HasPrefix(msg, "malformed bestbefore annotation") {
		t.Errorf("config message = %q", msg)
	}
	if strings.Contains(msg, "has expired") {
		t.Errorf("config error must not read like an expiry: %q", msg)
	}

	oerr := &OverrideError{Source: "--now", Err: errors.New("bad")}
	if got := ConfigMessage(oerr); !strings.HasPrefix(got, "invalid --now override") {
		t.Errorf("override message = %q", got)
	}
}
