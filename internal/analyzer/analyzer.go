package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mrzor/sched-analyzer/internal/derived"
	"github.com/mrzor/sched-analyzer/internal/metrics"
	"github.com/mrzor/sched-analyzer/internal/producer"
	"github.com/mrzor/sched-analyzer/internal/trace"
)

// ResultHandler consumes analysis results.
type ResultHandler interface {
	HandleResult(ctx context.Context, result *Result) error
	HandleSummary(ctx context.Context, summaries []SchedulerSummary) error
}

// Job is one trace to analyze.
type Job struct {
	Scheduler string
	Input     string
	Producer  producer.Producer
	// Group serializes jobs: jobs with the same non-empty Group never run
	// concurrently. Scheduler binaries sharing an output file need this.
	Group string
}

// Config tunes an Analyzer.
type Config struct {
	// Parallelism bounds concurrent jobs. Values below 1 mean 1.
	Parallelism int
	// Parser defaults to trace.DefaultParser when its Separator is empty.
	Parser    trace.Parser
	Evaluator *derived.Evaluator
	Handlers  []ResultHandler
}

// Analyzer runs jobs and dispatches their results.
type Analyzer struct {
	parallelism int
	parser      trace.Parser
	evaluator   *derived.Evaluator
	handlers    []ResultHandler
}

// New creates an Analyzer.
func New(cfg Config) *Analyzer {
	parser := cfg.Parser
	if parser.Separator == "" {
		parser = trace.DefaultParser
	}
	parallelism := cfg.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	return &Analyzer{
		parallelism: parallelism,
		parser:      parser,
		evaluator:   cfg.Evaluator,
		handlers:    cfg.Handlers,
	}
}

// Analyze runs a single job. It never returns nil.
func (a *Analyzer) Analyze(ctx context.Context, job Job) *Result {
	start := time.Now()
	result := &Result{
		RunID:     uuid.NewString(),
		Scheduler: job.Scheduler,
		Input:     job.Input,
	}
	if job.Producer != nil {
		result.Source = job.Producer.Name()
	}
	defer func() {
		result.Duration = time.Since(start)
		if result.Err != nil {
			result.Error = result.Err.Error()
		}
	}()

	if err := ctx.Err(); err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	if job.Producer == nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("job %s/%s has no producer", job.Scheduler, job.Input)
		return result
	}

	records, stats, err := producer.Records(ctx, job.Producer, a.parser)
	result.Stats = stats
	if trace.IsSoftFailure(records, err) {
		result.Status = StatusNoResult
		result.Err = err
		if result.Err == nil {
			result.Err = metrics.ErrEmptyTrace
		}
		return result
	}
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	report, err := metrics.ComputeReport(records)
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusOK
	result.Report = report
	result.Derived = a.evaluator.Evaluate(report)
	return result
}

// Run analyzes every job and returns results in job order.
// Handlers see each result in job order and then the per-scheduler summary.
// The returned error only reports handler failures.
func (a *Analyzer) Run(ctx context.Context, jobs []Job) ([]*Result, error) {
	results := a.execute(ctx, jobs)

	for _, r := range results {
		switch r.Status {
		case StatusNoResult:
			log.Printf("%s %s: no result (%v)", r.Scheduler, r.Input, r.Err)
		case StatusFailed:
			log.Printf("%s %s: failed: %v", r.Scheduler, r.Input, r.Err)
		}
	}

	return results, a.dispatch(ctx, results)
}

// execute runs jobs on the worker pool.
func (a *Analyzer) execute(ctx context.Context, jobs []Job) []*Result {
	results := make([]*Result, len(jobs))

	var wg sync.WaitGroup
	sem := make(chan struct{}, a.parallelism)

	for _, unit := range units(jobs) {
		wg.Add(1)
		go func(indices []int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			for _, i := range indices {
				results[i] = a.Analyze(ctx, jobs[i])
			}
		}(unit)
	}

	wg.Wait()
	return results
}

// units splits job indices into sequential units: one per non-empty Group,
// one per ungrouped job.
func units(jobs []Job) [][]int {
	groupIndex := make(map[string]int)
	var out [][]int

	for i, job := range jobs {
		if job.Group == "" {
			out = append(out, []int{i})
			continue
		}
		g, ok := groupIndex[job.Group]
		if !ok {
			g = len(out)
			groupIndex[job.Group] = g
			out = append(out, nil)
		}
		out[g] = append(out[g], i)
	}

	return out
}

func (a *Analyzer) dispatch(ctx context.Context, results []*Result) error {
	if len(a.handlers) == 0 {
		return nil
	}

	var errs []error
	for _, r := range results {
		for _, h := range a.handlers {
			if err := h.HandleResult(ctx, r); err != nil {
				errs = append(errs, fmt.Errorf("handling result %s: %w", r.RunID, err))
			}
		}
	}

	summaries := Summarize(results)
	for _, h := range a.handlers {
		if err := h.HandleSummary(ctx, summaries); err != nil {
			errs = append(errs, fmt.Errorf("handling summary: %w", err))
		}
	}

	return errors.Join(errs...)
}
