// Package trace records what the interpreter is doing while it runs.
//
// Tracing is off by default and costs a single interface call per would-be
// event when disabled. Enable it from the command line:
//
//	ren run --trace=- --trace-level=detail script.r
//
// # Tracers
//
//   - Nop: discards everything
//   - StreamTracer: writes each event immediately (file or stderr)
//   - RingTracer: keeps the last N events for a crash dump
//   - MultiTracer: fans out to several tracers
//
// # Scopes
//
// Events are grouped by how coarse they are:
//
//   - ScopeSession: one CLI command or embedding session
//   - ScopeEval: one trampoline run (API eval, script file)
//   - ScopeGC: garbage collection cycles
//   - ScopeLevel: level push/drop, throws and failures (debug only)
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeEval, "eval", parentID)
//	defer span.End("")
package trace
