package diagfmt

import (
	"fmt"
	"io"

	"bestbefore/internal/diag"
)

// Short writes one line per diagnostic:
// "<severity> <CODE> <path>:<line>:<col> <message>".
// Diagnostics cut by the bag limit are counted on a final line.
func Short(w io.Writer, bag *diag.Bag, base string, includeNotes bool) error {
	if out := diag.FormatShortDiagnostics(bag.Items(), base, includeNotes); out != "" {
		if _, err := io.WriteString(w, out+"\n"); err != nil {
			return err
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		if _, err := fmt.Fprintf(w, "%s not shown (max-diagnostics reached)\n", plural(dropped, "diagnostic")); err != nil {
			return err
		}
	}
	return nil
}
