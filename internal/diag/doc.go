// Package diag defines the diagnostic model shared by the checker, the vet
// analyzer and the CLI renderers.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string ID (codes.go). Code
//     families keep configuration problems (CFG) apart from expiry outcomes
//     (EXP) and I/O failures (IO).
//   - Message – human oriented text.
//   - Primary – the source Location of the annotation.
//   - Subject – the annotated unit, e.g. "function Legacy".
//   - Notes – optional secondary locations.
//
// # Emitting diagnostics
//
// Producers report through a Reporter. BagReporter stores into a Bag, which
// supports limits, sorting and deduplication; DedupReporter filters repeats
// before forwarding. ReportBuilder offers a chained API for notes.
//
// Package diag performs no IO and no colouring; rendering lives in
// internal/diagfmt.
package diag
