package producer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/mrzor/sched-analyzer/internal/trace"
)

// HTTPProducer fetches a trace with a GET request.
type HTTPProducer struct {
	URL string
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

// Name returns the URL.
func (p *HTTPProducer) Name() string {
	return p.URL
}

// Produce performs the request and returns the response body.
func (p *HTTPProducer) Produce(ctx context.Context) (io.ReadCloser, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", p.URL, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trace.ErrTraceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close() //nolint:errcheck // Body is discarded
		return nil, fmt.Errorf("%w: GET %s: status %d", trace.ErrTraceUnavailable, p.URL, resp.StatusCode)
	}

	return resp.Body, nil
}
