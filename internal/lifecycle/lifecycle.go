package lifecycle

import "github.com/mrzor/sched-analyzer/internal/trace"

// Lifecycle holds the timing facts of one process.
// Unset instants are nil.
type Lifecycle struct {
	PID        int
	Arrival    *int64
	FirstRun   *int64
	Completion *int64

	// StateTime is the number of ticks spent in each canonical state,
	// measured between consecutive transitions of this process.
	StateTime map[trace.State]int64

	lastState trace.State
	lastTime  int64
	seen      bool
}

func newLifecycle(pid int) *Lifecycle {
	return &Lifecycle{
		PID:       pid,
		StateTime: make(map[trace.State]int64),
	}
}

// ResponseTime is FirstRun - Arrival.
func (l *Lifecycle) ResponseTime() (int64, bool) {
	return span(l.Arrival, l.FirstRun)
}

// TurnaroundTime is Completion - Arrival.
func (l *Lifecycle) TurnaroundTime() (int64, bool) {
	return span(l.Arrival, l.Completion)
}

// WaitTime is Completion - FirstRun.
// This approximates wait time; it is not turnaround minus burst.
func (l *Lifecycle) WaitTime() (int64, bool) {
	return span(l.FirstRun, l.Completion)
}

func span(from, to *int64) (int64, bool) {
	if from == nil || to == nil {
		return 0, false
	}
	return *to - *from, true
}

func ptr(v int64) *int64 {
	return &v
}
