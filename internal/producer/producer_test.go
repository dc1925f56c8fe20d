package producer

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrzor/sched-analyzer/internal/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `+--------------------------+
|Time of Transition |PID | Old State | New State |
|  0 | 1 | NEW | READY |
|  0 | 1 | READY | RUNNING |
| 10 | 1 | RUNNING | TERMINATED |
+--------------------------+
`

func TestStaticProducer(t *testing.T) {
	p := &StaticProducer{Label: "inline", Text: table}
	assert.Equal(t, "inline", p.Name())

	records, stats, err := Records(context.Background(), p, trace.DefaultParser)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, 3, stats.Skipped)
}

func TestFileProducer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execution_RR.txt")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o600))

	p := &FileProducer{Path: path}
	assert.Equal(t, path, p.Name())

	rc, err := p.Produce(context.Background())
	require.NoError(t, err)
	defer rc.Close()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, table, string(body))
}

func TestFileProducer_Missing(t *testing.T) {
	p := &FileProducer{Path: filepath.Join(t.TempDir(), "missing.txt")}

	records, _, err := Records(context.Background(), p, trace.DefaultParser)
	require.ErrorIs(t, err, trace.ErrTraceUnavailable)
	assert.Nil(t, records)
}
