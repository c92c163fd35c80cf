package fuzztests

import (
	"context"
	"go/parser"
	"go/token"
	"testing"
	"time"

	"bestbefore/internal/calendar"
	"bestbefore/internal/directive"
)

// scanTimeout bounds scanning one input; exceeding it indicates a hang.
const scanTimeout = 5 * time.Second

func FuzzCalendarParse(f *testing.F) {
	addStrings(f, dateSeeds)
	f.Fuzz(func(t *testing.T, input string) {
		d, err := calendar.Parse(clip(input))
		if err != nil {
			return
		}
		back, err := calendar.Parse(d.String())
		if err != nil {
			t.Fatalf("%q formats as %q which does not parse: %v", input, d, err)
		}
		if back.Compare(d) != 0 {
			t.Fatalf("round trip changed %q: %s != %s", input, back, d)
		}
	})
}

func FuzzParseArgs(f *testing.F) {
	addStrings(f, argSeeds)
	f.Fuzz(func(t *testing.T, input string) {
		spec, err := directive.ParseArgs(clip(input))
		if err != nil {
			return
		}
		if spec.HasReview && spec.Review == "" {
			t.Fatalf("%q: review flagged present but empty", input)
		}
		if spec.HasExpires && spec.Expires == "" {
			t.Fatalf("%q: expires flagged present but empty", input)
		}
	})
}

func FuzzScanAndCheck(f *testing.F) {
	addStrings(f, sourceSeeds)
	now := calendar.MustParse("06.2024")
	f.Fuzz(func(t *testing.T, input string) {
		src := []byte(clip(input))
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, "fuzz.go", src, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil || file == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		done := make(chan struct{})
		go func() {
			defer close(done)
			annotations, _ := directive.Scan(fset, file, src)
			for _, a := range annotations {
				if fd, ok := directive.Check(a, now); ok && fd.Message == "" {
					t.Errorf("empty message for %s", a.Subject)
				}
			}
		}()
		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("scan did not finish within %s", scanTimeout)
		}
	})
}
