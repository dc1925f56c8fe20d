package derived

import (
	"fmt"
	"log"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mrzor/sched-analyzer/internal/metrics"
)

// Evaluator holds pre-compiled derived-metric expressions.
type Evaluator struct {
	defs     []Definition
	programs []*vm.Program
}

// NewEvaluator compiles every definition. It fails on the first expression
// that does not compile or does not produce a number.
func NewEvaluator(defs []Definition) (*Evaluator, error) {
	programs := make([]*vm.Program, len(defs))
	for i, def := range defs {
		program, err := expr.Compile(def.Expression, expr.Env(environment(nil)), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression for metric %q: %w", def.Name, err)
		}
		programs[i] = program
	}

	return &Evaluator{
		defs:     defs,
		programs: programs,
	}, nil
}

// Evaluate runs every expression against report.
// Expressions that fail at runtime are logged and left out of the result.
func (e *Evaluator) Evaluate(report *metrics.Report) map[string]float64 {
	if e == nil || len(e.defs) == 0 || report == nil {
		return nil
	}

	env := environment(report)
	out := make(map[string]float64, len(e.defs))
	for i, def := range e.defs {
		value, err := expr.Run(e.programs[i], env)
		if err != nil {
			log.Printf("Warning: failed to evaluate metric %q: %v", def.Name, err)
			continue
		}
		f, ok := value.(float64)
		if !ok {
			log.Printf("Warning: metric %q produced %T, not a number", def.Name, value)
			continue
		}
		out[def.Name] = f
	}
	return out
}

// environment exposes report fields to expressions. A nil report yields the
// zero-valued environment used for type checking.
func environment(report *metrics.Report) map[string]interface{} {
	var r metrics.Report
	if report != nil {
		r = *report
	}
	return map[string]interface{}{
		"avg_response_time":   r.Aggregate.AvgResponseTime,
		"avg_turnaround_time": r.Aggregate.AvgTurnaroundTime,
		"avg_wait_time":       r.Aggregate.AvgWaitTime,
		"throughput":          r.Aggregate.Throughput,
		"num_processes":       r.Aggregate.NumProcesses,
		"transitions":         r.Transitions,
		"last_time":           int(r.LastTime),
	}
}
