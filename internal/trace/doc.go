// Package trace records what a bestbefore run is doing.
//
// Events are grouped by scope: the driver (one per command), the passes of a
// check (discover, scan, evaluate, report) and individual files. The level
// picks how deep the trace goes:
//
//	off     nothing
//	error   kept in memory, dumped when the run fails
//	phase   driver and pass boundaries
//	detail  per-file events
//	debug   everything
//
// Tracers travel through the call graph in a context:
//
//	ctx = trace.WithTracer(ctx, tr)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "scan", 0)
//	defer span.End("")
package trace
