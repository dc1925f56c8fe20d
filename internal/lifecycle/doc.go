// Package lifecycle reconstructs per-process timing from state transitions.
//
// Tracker keeps one Lifecycle per PID, created on first sighting:
//
//	NEW ──► READY ──► RUNNING ──► TERMINATED
//	          ▲          │
//	          │          ▼
//	          └─────  BLOCKED
//
// Three instants are captured per process:
//   - Arrival: first NEW->READY
//   - FirstRun: first READY->RUNNING (re-dispatches are ignored)
//   - Completion: any transition into TERMINATED (last one wins)
//
// Time spent in READY, RUNNING and BLOCKED is also accumulated from consecutive
// transitions of the same PID.
//
// A Tracker is owned by a single analysis and is not safe for concurrent use.
package lifecycle
