// Package trace records what the analysis pipeline is doing.
//
// Snapshot loading, rule dispatch, fix rounds and renames open spans and
// emit point events through a Tracer carried in the context. Problems the
// pipeline recovers from, such as a faulting rule or a dropped overlapping
// edit, are emitted with Warn so they show up even at the error level.
//
//	vsdiag diagnose --trace=- --trace-level=detail program.vsd
//
// Levels select the finest scope recorded: phase keeps driver and pass
// spans, detail adds files, debug adds single nodes.
//
// A StreamTracer writes each event as it arrives. A RingTracer keeps the
// last events in memory and, in ring mode, writes them when closed. Tee
// combines tracers for the both mode.
package trace
