// Package analyzer runs trace analyses and routes results to handlers.
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│   Jobs (scheduler × input → Producer)   │
//	└─────────────────┬───────────────────────┘
//	                  │
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   analyzer.Analyzer                     │  ← bounded worker pool
//	│   - jobs sharing a Group run in order   │
//	│   - other jobs run concurrently         │
//	└─────────┬───────────────────────────────┘
//	          │ per job
//	          ├──→ producer.Producer ──→ trace text
//	          ├──→ trace.Parser ───────→ []Transition
//	          ├──→ metrics.ComputeReport → Report
//	          └──→ derived.Evaluator ──→ extra metrics
//	                  │
//	                  ▼
//	┌─────────────────────────────────────────┐
//	│   ResultHandler(s)                      │  ← text, JSON, OTEL spans
//	│   - HandleResult per job, in job order  │
//	│   - HandleSummary per scheduler         │
//	└─────────────────────────────────────────┘
//
// A trace that cannot be read or holds no records is a soft failure: the
// result carries StatusNoResult and is skipped by the summary.
package analyzer
