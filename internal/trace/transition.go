package trace

import "fmt"

// State is a process state label as it appears in a trace.
// Labels are kept verbatim; unknown labels are carried through unchanged.
type State string

// Known process states.
const (
	StateNew        State = "NEW"
	StateReady      State = "READY"
	StateRunning    State = "RUNNING"
	StateBlocked    State = "BLOCKED"
	StateTerminated State = "TERMINATED"

	// StateWaiting is the label some schedulers print for BLOCKED.
	StateWaiting State = "WAITING"
)

// Canonical folds aliases onto the five lifecycle states.
func (s State) Canonical() State {
	if s == StateWaiting {
		return StateBlocked
	}
	return s
}

// Transition is a single state change of one process.
type Transition struct {
	Time     int64 `json:"time"`
	PID      int   `json:"pid"`
	OldState State `json:"old_state"`
	NewState State `json:"new_state"`
}

// Is reports whether t moves from one state to another.
func (t Transition) Is(from, to State) bool {
	return t.OldState == from && t.NewState == to
}

func (t Transition) String() string {
	return fmt.Sprintf("t=%d pid=%d %s->%s", t.Time, t.PID, t.OldState, t.NewState)
}
