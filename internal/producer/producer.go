package producer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrzor/sched-analyzer/internal/trace"
)

// Producer yields the text of one trace.
type Producer interface {
	// Produce returns a reader over the trace. The caller closes it.
	Produce(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the trace in logs and reports.
	Name() string
}

// FileProducer reads a trace from disk.
type FileProducer struct {
	Path string
}

// Produce opens the trace file.
func (p *FileProducer) Produce(_ context.Context) (io.ReadCloser, error) {
	file, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trace.ErrTraceUnavailable, err)
	}
	return file, nil
}

// Name returns the file path.
func (p *FileProducer) Name() string {
	return p.Path
}

// StaticProducer serves a trace held in memory.
type StaticProducer struct {
	Label string
	Text  string
}

// Produce returns a reader over Text.
func (p *StaticProducer) Produce(_ context.Context) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(p.Text)), nil
}

// Name returns Label.
func (p *StaticProducer) Name() string {
	return p.Label
}

// Records runs p and parses its output with parser.
func Records(ctx context.Context, p Producer, parser trace.Parser) ([]trace.Transition, trace.Stats, error) {
	rc, err := p.Produce(ctx)
	if err != nil {
		return nil, trace.Stats{}, err
	}
	defer func() {
		_ = rc.Close() //nolint:errcheck // Read-only stream
	}()

	return parser.ParseWithStats(rc)
}
