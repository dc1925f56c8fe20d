package lifecycle

import "github.com/mrzor/sched-analyzer/internal/trace"

// Tracker builds lifecycles from a stream of transitions.
type Tracker struct {
	lifecycles map[int]*Lifecycle // PID -> lifecycle
	order      []int              // PIDs in first-seen order
	lastTime   int64
	count      int
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		lifecycles: make(map[int]*Lifecycle),
	}
}

// GetOrCreate returns the lifecycle for pid, creating it if needed.
func (t *Tracker) GetOrCreate(pid int) *Lifecycle {
	l, ok := t.lifecycles[pid]
	if !ok {
		l = newLifecycle(pid)
		t.lifecycles[pid] = l
		t.order = append(t.order, pid)
	}
	return l
}

// Apply folds one transition into the tracked state.
func (t *Tracker) Apply(tr trace.Transition) {
	l := t.GetOrCreate(tr.PID)

	if tr.Is(trace.StateNew, trace.StateReady) && l.Arrival == nil {
		l.Arrival = ptr(tr.Time)
	}
	if tr.Is(trace.StateReady, trace.StateRunning) && l.FirstRun == nil {
		l.FirstRun = ptr(tr.Time)
	}
	if tr.NewState == trace.StateTerminated {
		l.Completion = ptr(tr.Time)
	}

	t.accumulate(l, tr)

	t.lastTime = tr.Time
	t.count++
}

// ApplyAll folds every transition in order.
func (t *Tracker) ApplyAll(records []trace.Transition) {
	for _, tr := range records {
		t.Apply(tr)
	}
}

// accumulate charges the time since the previous transition of this PID to
// the state it was in.
func (t *Tracker) accumulate(l *Lifecycle, tr trace.Transition) {
	if l.seen {
		if elapsed := tr.Time - l.lastTime; elapsed > 0 {
			l.StateTime[l.lastState] += elapsed
		}
	}
	l.seen = true
	l.lastState = tr.NewState.Canonical()
	l.lastTime = tr.Time
}

// Lifecycles returns every lifecycle in first-seen PID order.
func (t *Tracker) Lifecycles() []*Lifecycle {
	out := make([]*Lifecycle, 0, len(t.order))
	for _, pid := range t.order {
		out = append(out, t.lifecycles[pid])
	}
	return out
}

// Len is the number of distinct PIDs seen.
func (t *Tracker) Len() int {
	return len(t.order)
}

// LastTime is the time of the most recently applied transition.
func (t *Tracker) LastTime() int64 {
	return t.lastTime
}

// Transitions is the number of transitions applied.
func (t *Tracker) Transitions() int {
	return t.count
}
