// Package output carries command output from readers to a presentation sink.
//
// Every line read from a child process becomes an Event tagged with the
// command index and the stream it came from. Events and the final
// ExitOutcome of each command flow through a Multiplexer, which owns a
// bounded channel and a single draining goroutine. That goroutine is the only
// place a Sink is called, so sinks never see two lines interleaved and a
// fast producer stalls instead of growing memory without bound.
//
// # Labels
//
// Commands are indexed from zero internally and labeled from one:
//
//	[1] stdout line
//	[1][err] stderr line
//
// # Sinks
//
//   - PlainSink writes labeled lines to an stdout/stderr writer pair.
//   - JSONSink writes one JSON object per event (NDJSON).
//
// Interactive sinks live in the renderer packages and implement the same
// Sink interface.
package output
