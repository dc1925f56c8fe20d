package producer

import (
	"context"
	"errors"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/mrzor/sched-analyzer/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProducer(t *testing.T) {
	httpmock.Activate(t)
	defer httpmock.DeactivateAndReset()

	const url = "http://traces.local/runs/42/execution_EP.txt"

	tests := []struct {
		name        string
		responder   httpmock.Responder
		wantRecords int
		wantErr     error
	}{
		{
			name:        "trace served",
			responder:   httpmock.NewStringResponder(200, table),
			wantRecords: 3,
		},
		{
			name:      "not found",
			responder: httpmock.NewStringResponder(404, "no such run"),
			wantErr:   trace.ErrTraceUnavailable,
		},
		{
			name:      "transport error",
			responder: httpmock.NewErrorResponder(errors.New("connection refused")),
			wantErr:   trace.ErrTraceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.RegisterResponder("GET", url, tt.responder)

			p := &HTTPProducer{URL: url}
			assert.Equal(t, url, p.Name())

			records, _, err := Records(context.Background(), p, trace.DefaultParser)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.wantRecords)
		})
	}
}
