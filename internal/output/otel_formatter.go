package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrzor/sched-analyzer/internal/analyzer"
	"github.com/mrzor/sched-analyzer/internal/metrics"
	"github.com/mrzor/sched-analyzer/internal/otel"
	"github.com/mrzor/sched-analyzer/internal/timesync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTELFormatter exports results as OpenTelemetry spans.
type OTELFormatter struct {
	tracer    trace.Tracer
	converter *timesync.Converter
}

// NewOTELFormatter creates a new OTELFormatter.
func NewOTELFormatter(tracer trace.Tracer, converter *timesync.Converter) (*OTELFormatter, error) {
	if tracer == nil {
		return nil, fmt.Errorf("tracer is required")
	}
	if converter == nil {
		return nil, fmt.Errorf("time converter is required")
	}
	return &OTELFormatter{
		tracer:    tracer,
		converter: converter,
	}, nil
}

// HandleResult emits a "sched.analysis" span covering the trace, with one
// "sched.process" child per process. Outside an existing trace, the trace ID
// is derived from the run ID.
func (f *OTELFormatter) HandleResult(ctx context.Context, r *analyzer.Result) error {
	start := f.converter.Epoch()
	end := start
	if r.Report != nil {
		end = f.converter.TickToWallClock(r.Report.LastTime)
	}

	if !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = otel.ContextWithTraceID(ctx, otel.TraceIDFromRunID(r.RunID))
	}
	ctx, span := f.tracer.Start(ctx, "sched.analysis",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(start),
	)

	span.SetAttributes(
		attribute.String("sched.run_id", r.RunID),
		attribute.String("sched.scheduler", r.Scheduler),
		attribute.String("sched.input", r.Input),
		attribute.String("sched.source", r.Source),
		attribute.String("sched.status", string(r.Status)),
		attribute.Int("sched.parse.lines", r.Stats.Lines),
		attribute.Int("sched.parse.skipped", r.Stats.Skipped),
	)

	switch r.Status {
	case analyzer.StatusOK:
		span.SetAttributes(aggregateAttributes(&r.Report.Aggregate)...)
		span.SetAttributes(attribute.Int("sched.transitions", r.Report.Transitions))
		span.SetAttributes(derivedAttributes(r.Derived)...)
		for i := range r.Report.Processes {
			f.emitProcess(ctx, &r.Report.Processes[i], r.Report.LastTime)
		}
		span.SetStatus(codes.Ok, "")
	case analyzer.StatusFailed:
		span.SetStatus(codes.Error, r.Error)
	default:
		if r.Error != "" {
			span.SetAttributes(attribute.String("sched.reason", r.Error))
		}
	}

	span.End(trace.WithTimestamp(end))
	return nil
}

// emitProcess spans a process from its first known instant to its completion,
// or to the end of the trace if it never terminated.
func (f *OTELFormatter) emitProcess(ctx context.Context, p *metrics.ProcessReport, lastTime int64) {
	first := firstSet(p.Arrival, p.FirstRun, p.Completion)
	if first == nil {
		return
	}
	endTick := lastTime
	if p.Completion != nil {
		endTick = *p.Completion
	}

	_, span := f.tracer.Start(ctx, "sched.process",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(f.converter.TickToWallClock(*first)),
	)

	attrs := []attribute.KeyValue{
		attribute.Int("process.pid", p.PID),
		attribute.Bool("process.completed", p.Completion != nil),
		attribute.Int64("process.ready_ticks", p.ReadyTime),
		attribute.Int64("process.running_ticks", p.RunningTime),
		attribute.Int64("process.blocked_ticks", p.BlockedTime),
	}
	attrs = appendTick(attrs, "process.arrival", p.Arrival)
	attrs = appendTick(attrs, "process.first_run", p.FirstRun)
	attrs = appendTick(attrs, "process.completion", p.Completion)
	attrs = appendTick(attrs, "process.response_time", p.ResponseTime)
	attrs = appendTick(attrs, "process.turnaround_time", p.TurnaroundTime)
	attrs = appendTick(attrs, "process.wait_time", p.WaitTime)
	span.SetAttributes(attrs...)

	span.End(trace.WithTimestamp(f.converter.TickToWallClock(endTick)))
}

// HandleSummary emits one "sched.summary" span per scheduler.
func (f *OTELFormatter) HandleSummary(ctx context.Context, summaries []analyzer.SchedulerSummary) error {
	for _, s := range summaries {
		_, span := f.tracer.Start(ctx, "sched.summary", trace.WithSpanKind(trace.SpanKindInternal))
		span.SetAttributes(
			attribute.String("sched.scheduler", s.Scheduler),
			attribute.Int("sched.runs", s.Runs),
			attribute.Int("sched.runs.analyzed", s.Analyzed),
			attribute.Int("sched.runs.failed", s.Failed),
			attribute.Float64("sched.avg_response_time", s.AvgResponseTime),
			attribute.Float64("sched.avg_turnaround_time", s.AvgTurnaroundTime),
			attribute.Float64("sched.avg_wait_time", s.AvgWaitTime),
			attribute.Float64("sched.avg_throughput", s.AvgThroughput),
		)
		span.End()
	}
	return nil
}

func aggregateAttributes(m *metrics.Aggregate) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Float64("sched.avg_response_time", m.AvgResponseTime),
		attribute.Float64("sched.avg_turnaround_time", m.AvgTurnaroundTime),
		attribute.Float64("sched.avg_wait_time", m.AvgWaitTime),
		attribute.Float64("sched.throughput", m.Throughput),
		attribute.Int("sched.num_processes", m.NumProcesses),
	}
}

func derivedAttributes(values map[string]float64) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(values))
	for name, v := range values {
		attrs = append(attrs, attribute.Float64("sched.derived."+sanitizeAttributeName(name), v))
	}
	return attrs
}

func appendTick(attrs []attribute.KeyValue, key string, v *int64) []attribute.KeyValue {
	if v == nil {
		return attrs
	}
	return append(attrs, attribute.Int64(key, *v))
}

func firstSet(values ...*int64) *int64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// sanitizeAttributeName replaces non-alphanumeric characters with underscores.
func sanitizeAttributeName(name string) string {
	return strings.Map(func(c rune) rune {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			return c
		}
		return '_'
	}, name)
}
