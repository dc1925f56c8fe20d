// Package output renders analysis results.
//
// Every formatter implements analyzer.ResultHandler:
//   - TextFormatter: one line per run, then per-scheduler averages
//   - JSONFormatter: one JSON object per line
//   - OTELFormatter: one span per run with a child span per process,
//     placed on the wall clock through timesync.Converter
//
// Formatters are driven sequentially by the analyzer and are not safe for
// concurrent use.
package output
