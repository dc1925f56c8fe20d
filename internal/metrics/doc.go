// Package metrics derives scheduling metrics from a trace.
//
// For every process with the required instants:
//
//	response   = first_run  - arrival
//	turnaround = completion - arrival
//	wait       = completion - first_run
//
// Each average only covers processes that have both of its instants; a
// process missing one is still counted in NumProcesses. Throughput is the
// number of distinct PIDs divided by the time of the last record. An average
// over nothing is 0.
//
// wait is intentionally completion - first_run and not turnaround - burst.
// Comparisons across runs rely on this definition.
package metrics
