// Package producer supplies trace text to the analyzer.
//
// The engine never cares where a trace comes from. A Producer may read a file,
// hold a literal string, fetch a URL, or run a scheduler binary and pick up
// the execution table it writes:
//
//	<bin>/interrupts_<sched> <input>  ──►  <work>/execution_<sched>.txt
//
// Failures to obtain a trace wrap trace.ErrTraceUnavailable, or
// ErrSchedulerFailed when the scheduler binary itself failed.
package producer
