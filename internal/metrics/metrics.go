package metrics

import (
	"errors"

	"github.com/mrzor/sched-analyzer/internal/lifecycle"
	"github.com/mrzor/sched-analyzer/internal/trace"
)

// ErrEmptyTrace is returned when there are no records to analyze.
var ErrEmptyTrace = errors.New("empty trace")

// Aggregate holds the metrics of one trace.
type Aggregate struct {
	AvgResponseTime   float64 `json:"avg_response_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgWaitTime       float64 `json:"avg_wait_time"`
	Throughput        float64 `json:"throughput"`
	NumProcesses      int     `json:"num_processes"`
}

// ProcessReport is the per-process breakdown behind an Aggregate.
type ProcessReport struct {
	PID        int    `json:"pid"`
	Arrival    *int64 `json:"arrival,omitempty"`
	FirstRun   *int64 `json:"first_run,omitempty"`
	Completion *int64 `json:"completion,omitempty"`

	ResponseTime   *int64 `json:"response_time,omitempty"`
	TurnaroundTime *int64 `json:"turnaround_time,omitempty"`
	WaitTime       *int64 `json:"wait_time,omitempty"`

	ReadyTime   int64 `json:"ready_time"`
	RunningTime int64 `json:"running_time"`
	BlockedTime int64 `json:"blocked_time"`
}

// Report is an Aggregate together with its per-process rows.
type Report struct {
	Aggregate   Aggregate       `json:"metrics"`
	Processes   []ProcessReport `json:"processes"`
	Transitions int             `json:"transitions"`
	LastTime    int64           `json:"last_time"`
}

// Compute derives the aggregate metrics of records.
// It returns ErrEmptyTrace when records is empty.
func Compute(records []trace.Transition) (*Aggregate, error) {
	report, err := ComputeReport(records)
	if err != nil {
		return nil, err
	}
	return &report.Aggregate, nil
}

// ComputeReport is Compute plus the per-process breakdown, in first-seen PID order.
func ComputeReport(records []trace.Transition) (*Report, error) {
	if len(records) == 0 {
		return nil, ErrEmptyTrace
	}

	tracker := lifecycle.NewTracker()
	tracker.ApplyAll(records)

	var response, turnaround, wait mean
	lifecycles := tracker.Lifecycles()
	processes := make([]ProcessReport, 0, len(lifecycles))

	for _, l := range lifecycles {
		row := ProcessReport{
			PID:         l.PID,
			Arrival:     l.Arrival,
			FirstRun:    l.FirstRun,
			Completion:  l.Completion,
			ReadyTime:   l.StateTime[trace.StateReady],
			RunningTime: l.StateTime[trace.StateRunning],
			BlockedTime: l.StateTime[trace.StateBlocked],
		}
		if v, ok := l.ResponseTime(); ok {
			response.add(v)
			row.ResponseTime = &v
		}
		if v, ok := l.TurnaroundTime(); ok {
			turnaround.add(v)
			row.TurnaroundTime = &v
		}
		if v, ok := l.WaitTime(); ok {
			wait.add(v)
			row.WaitTime = &v
		}
		processes = append(processes, row)
	}

	return &Report{
		Aggregate: Aggregate{
			AvgResponseTime:   response.value(),
			AvgTurnaroundTime: turnaround.value(),
			AvgWaitTime:       wait.value(),
			Throughput:        throughput(tracker.Len(), tracker.LastTime()),
			NumProcesses:      tracker.Len(),
		},
		Processes:   processes,
		Transitions: tracker.Transitions(),
		LastTime:    tracker.LastTime(),
	}, nil
}

// throughput is processes per tick up to the last record.
// A trace ending at tick 0 or earlier has no elapsed time, so it reports 0.
func throughput(processes int, lastTime int64) float64 {
	if lastTime <= 0 {
		return 0
	}
	return float64(processes) / float64(lastTime)
}

// mean sums integers exactly so the result does not depend on map order.
type mean struct {
	sum   int64
	count int
}

func (m *mean) add(v int64) {
	m.sum += v
	m.count++
}

func (m mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return float64(m.sum) / float64(m.count)
}
