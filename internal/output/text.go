package output

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/mrzor/sched-analyzer/internal/analyzer"
)

// TextFormatter writes a human-readable report.
type TextFormatter struct {
	w    io.Writer
	unit string
}

// NewTextFormatter creates a TextFormatter. unit labels time values ("ms").
func NewTextFormatter(w io.Writer, unit string) *TextFormatter {
	return &TextFormatter{w: w, unit: unit}
}

// HandleResult prints one line for the run.
func (f *TextFormatter) HandleResult(_ context.Context, r *analyzer.Result) error {
	m := r.Metrics()
	if m == nil {
		_, err := fmt.Fprintf(f.w, "✗ %-8s %-28s %s: %s\n", r.Scheduler, r.Input, r.Status, r.Error)
		return err
	}

	_, err := fmt.Fprintf(f.w, "✓ %-8s %-28s response=%.2f turnaround=%.2f wait=%.2f throughput=%.4f processes=%d%s\n",
		r.Scheduler, r.Input,
		m.AvgResponseTime, m.AvgTurnaroundTime, m.AvgWaitTime, m.Throughput, m.NumProcesses,
		formatDerived(r.Derived))
	return err
}

// HandleSummary prints the per-scheduler averages.
func (f *TextFormatter) HandleSummary(_ context.Context, summaries []analyzer.SchedulerSummary) error {
	if _, err := fmt.Fprintf(f.w, "\nRESULTS SUMMARY\n"); err != nil {
		return err
	}

	for _, s := range summaries {
		_, err := fmt.Fprintf(f.w, "\n%s Scheduler: %d/%d runs analyzed\n", s.Scheduler, s.Analyzed, s.Runs)
		if err != nil {
			return err
		}
		if s.Analyzed == 0 {
			continue
		}
		_, err = fmt.Fprintf(f.w,
			"  Average Response Time: %.2f %s\n  Average Turnaround Time: %.2f %s\n  Average Wait Time: %.2f %s\n  Average Throughput: %.4f\n",
			s.AvgResponseTime, f.unit, s.AvgTurnaroundTime, f.unit, s.AvgWaitTime, f.unit, s.AvgThroughput)
		if err != nil {
			return err
		}
	}

	return nil
}

func formatDerived(values map[string]float64) string {
	if len(values) == 0 {
		return ""
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		out += fmt.Sprintf(" %s=%.4g", name, values[name])
	}
	return out
}
