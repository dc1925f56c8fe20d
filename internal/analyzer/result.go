package analyzer

import (
	"time"

	"github.com/mrzor/sched-analyzer/internal/metrics"
	"github.com/mrzor/sched-analyzer/internal/trace"
)

// Status is the outcome of one analysis.
type Status string

// Result statuses.
const (
	StatusOK       Status = "ok"
	StatusNoResult Status = "no_result"
	StatusFailed   Status = "failed"
)

// Result is the outcome of analyzing one job.
type Result struct {
	RunID     string             `json:"run_id"`
	Scheduler string             `json:"scheduler"`
	Input     string             `json:"input"`
	Source    string             `json:"source"`
	Status    Status             `json:"status"`
	Report    *metrics.Report    `json:"report,omitempty"`
	Derived   map[string]float64 `json:"derived,omitempty"`
	Stats     trace.Stats        `json:"parse_stats"`
	Duration  time.Duration      `json:"duration_ns"`
	Err       error              `json:"-"`
	Error     string             `json:"error,omitempty"`
}

// Metrics returns the aggregate metrics, or nil when the run produced none.
func (r *Result) Metrics() *metrics.Aggregate {
	if r == nil || r.Report == nil {
		return nil
	}
	return &r.Report.Aggregate
}

// SchedulerSummary averages per-run metrics over every run of one scheduler
// that produced metrics.
type SchedulerSummary struct {
	Scheduler         string  `json:"scheduler"`
	Runs              int     `json:"runs"`
	Analyzed          int     `json:"analyzed"`
	Failed            int     `json:"failed"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgWaitTime       float64 `json:"avg_wait_time"`
	AvgThroughput     float64 `json:"avg_throughput"`
}

// Summarize groups results by scheduler, in order of first appearance.
func Summarize(results []*Result) []SchedulerSummary {
	index := make(map[string]int)
	var summaries []SchedulerSummary

	for _, r := range results {
		if r == nil {
			continue
		}
		i, ok := index[r.Scheduler]
		if !ok {
			i = len(summaries)
			index[r.Scheduler] = i
			summaries = append(summaries, SchedulerSummary{Scheduler: r.Scheduler})
		}
		s := &summaries[i]
		s.Runs++

		if r.Status == StatusFailed {
			s.Failed++
		}
		m := r.Metrics()
		if m == nil {
			continue
		}
		s.Analyzed++
		s.AvgResponseTime += m.AvgResponseTime
		s.AvgTurnaroundTime += m.AvgTurnaroundTime
		s.AvgWaitTime += m.AvgWaitTime
		s.AvgThroughput += m.Throughput
	}

	for i := range summaries {
		s := &summaries[i]
		if s.Analyzed == 0 {
			continue
		}
		n := float64(s.Analyzed)
		s.AvgResponseTime /= n
		s.AvgTurnaroundTime /= n
		s.AvgWaitTime /= n
		s.AvgThroughput /= n
	}

	return summaries
}
