package directive

import (
	"strings"
	"testing"

	"bestbefore/internal/calendar"
	"bestbefore/internal/diag"
	"bestbefore/internal/policy"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		now      string
		report   bool
		code     diag.Code
		severity diag.Severity
		contains string
	}{
		{"still valid", `03.2024`, "02.2024", false, 0, 0, ""},
		{"review boundary", `03.2024`, "03.2024", false, 0, 0, ""},
		{"past review", `03.2024`, "04.2024", true, diag.ExpPastReview, diag.SevWarning, "03.2024"},
		{"expired", `01.2023 expires=12.2023`, "01.2024", true, diag.ExpExpired, diag.SevError, "has expired"},
		{"custom message", `01.2023 expires=12.2023 message="use v2"`, "01.2024", true, diag.ExpExpired, diag.SevError, "use v2"},
		{"malformed", `2024-03`, "01.2024", true, diag.CfgMalformedDate, diag.SevError, "review date"},
		{"month range", `03.2024 expires=13.2024`, "01.2024", true, diag.CfgMonthOutOfRange, diag.SevError, "expires"},
		{"ordering", `05.2023 expires=04.2023`, "01.2000", true, diag.CfgExpiryNotAfter, diag.SevError, "must be after"},
		{"missing", `message=hi`, "01.2024", true, diag.CfgMissingDate, diag.SevError, "missing date"},
		{"unknown arg", `03.2024 until=04.2024`, "01.2024", true, diag.CfgUnknownArgument, diag.SevError, "until"},
		{"duplicate arg", `03.2024 03.2025`, "01.2024", true, diag.CfgDuplicateArgument, diag.SevError, "more than once"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Annotation{Subject: "function Legacy", Raw: tc.raw}
			f, ok := Check(a, calendar.MustParse(tc.now))
			if ok != tc.report {
				t.Fatalf("report = %v, want %v (%+v)", ok, tc.report, f)
			}
			if !ok {
				return
			}
			if f.Code != tc.code || f.Severity != tc.severity {
				t.Errorf("got %s/%v, want %s/%v", f.Code.ID(), f.Severity, tc.code.ID(), tc.severity)
			}
			if !strings.Contains(f.Message, tc.contains) {
				t.Errorf("message %q does not contain %q", f.Message, tc.contains)
			}
		})
	}
}

func TestCheck_ConfigErrorIndependentOfNow(t *testing.T) {
	a := Annotation{Subject: "type Old", Raw: `05.2023 expires=04.2023`}
	for _, now := range []string{"01.1999", "05.2023", "01.2999"} {
		f, ok := Check(a, calendar.MustParse(now))
		if !ok || f.Code != diag.CfgExpiryNotAfter || !f.Fatal() {
			t.Errorf("now %s: expected fatal ordering error, got %+v", now, f)
		}
		if strings.Contains(f.Message, "has expired") {
			t.Errorf("configuration error must read differently from expiry: %q", f.Message)
		}
	}
}

func TestCheck_ExpiresOnlyNeverWarns(t *testing.T) {
	a := Annotation{Subject: "function f", Raw: `expires=01.2028`}
	if f, ok := Check(a, calendar.MustParse("01.2028")); ok {
		t.Errorf("expiry month is still compliant, got %+v", f)
	}
	f, ok := Check(a, calendar.MustParse("02.2028"))
	if !ok || f.Decision.Action != policy.Fail {
		t.Errorf("expected fail after expiry, got %+v", f)
	}
}

func TestConfigCode_Override(t *testing.T) {
	err := &policy.OverrideError{Source: policy.EnvOverride, Err: &calendar.ParseError{Kind: calendar.MalformedFormat}}
	if got := ConfigCode(err); got != diag.CfgInvalidOverride {
		t.Errorf("override errors map to %s", got.ID())
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Add("b.go", []Annotation{{Pos: 10, Kind: UnitFunc}})
	r.Add("a.go", []Annotation{{Pos: 30, Kind: UnitType}, {Pos: 5, Kind: UnitFunc}})
	r.Add("c.go", nil)

	if r.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", r.Len())
	}
	all := r.All()
	if all[0].File != "a.go" || all[0].Annotation.Pos != 5 || all[2].File != "b.go" {
		t.Errorf("unexpected order: %+v", all)
	}
	if len(r.InFile("a.go")) != 2 || len(r.InFile("c.go")) != 0 {
		t.Errorf("InFile mismatch")
	}
	if r.CountByKind(UnitFunc) != 2 || r.CountByKind(UnitType) != 1 {
		t.Errorf("CountByKind mismatch")
	}
}
