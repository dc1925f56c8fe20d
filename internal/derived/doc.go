// Package derived evaluates user-defined metrics over an analysis result.
//
// A definition is NAME=EXPR where EXPR is an expr-lang expression over:
//
//	avg_response_time, avg_turnaround_time, avg_wait_time  float64
//	throughput                                             float64
//	num_processes                                          int
//	transitions, last_time                                 int
//
// Example: slowdown=avg_turnaround_time / max(avg_response_time, 1)
package derived
