package output

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mrzor/sched-analyzer/internal/analyzer"
)

// JSONFormatter writes newline-delimited JSON records.
type JSONFormatter struct {
	enc *json.Encoder
}

type jsonRecord struct {
	Type      string                      `json:"type"`
	Result    *analyzer.Result            `json:"result,omitempty"`
	Summaries []analyzer.SchedulerSummary `json:"summaries,omitempty"`
}

// NewJSONFormatter creates a JSONFormatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

// HandleResult writes a {"type":"result"} record.
func (f *JSONFormatter) HandleResult(_ context.Context, r *analyzer.Result) error {
	return f.enc.Encode(jsonRecord{Type: "result", Result: r})
}

// HandleSummary writes a {"type":"summary"} record.
func (f *JSONFormatter) HandleSummary(_ context.Context, summaries []analyzer.SchedulerSummary) error {
	return f.enc.Encode(jsonRecord{Type: "summary", Summaries: summaries})
}
