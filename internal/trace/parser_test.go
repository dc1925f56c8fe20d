package trace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTrace = `+------------------------------------------------+
|Time of Transition |PID | Old State | New State |
+------------------------------------------------+
|                 0 |  1 |       NEW |     READY |
|                 0 |  1 |     READY |   RUNNING |
|                10 |  1 |   RUNNING |TERMINATED |
+------------------------------------------------+
`

func TestParse_SchedulerTable(t *testing.T) {
	records, err := Parse(strings.NewReader(sampleTrace))
	require.NoError(t, err)

	want := []Transition{
		{Time: 0, PID: 1, OldState: StateNew, NewState: StateReady},
		{Time: 0, PID: 1, OldState: StateReady, NewState: StateRunning},
		{Time: 10, PID: 1, OldState: StateRunning, NewState: StateTerminated},
	}
	assert.Equal(t, want, records)
}

func TestParse_HeaderAndBorderInterleaved(t *testing.T) {
	input := strings.Join([]string{
		"| 5 | 2 | NEW | READY |",
		"| Time | PID | Old | New |",
		"+-----+-----+",
		"| 7 | 2 | READY | RUNNING |",
		"+=====+",
		"| 9 | 2 | RUNNING | TERMINATED |",
	}, "\n")

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(5), records[0].Time)
	assert.Equal(t, int64(7), records[1].Time)
	assert.Equal(t, int64(9), records[2].Time)
	for _, r := range records {
		assert.Equal(t, 2, r.PID)
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Transition
		ok   bool
	}{
		{
			name: "padded cells",
			line: "|   12 |   3 |   RUNNING |   BLOCKED |",
			want: Transition{Time: 12, PID: 3, OldState: StateRunning, NewState: StateBlocked},
			ok:   true,
		},
		{
			name: "no outer bars",
			line: "4|1|READY|RUNNING",
			want: Transition{Time: 4, PID: 1, OldState: StateReady, NewState: StateRunning},
			ok:   true,
		},
		{
			name: "unknown labels kept verbatim",
			line: "| 1 | 1 | WAITING | READY |",
			want: Transition{Time: 1, PID: 1, OldState: StateWaiting, NewState: StateReady},
			ok:   true,
		},
		{name: "no separator", line: "0 1 NEW READY"},
		{name: "header", line: "|Time of Transition |PID | Old State | New State |"},
		{name: "border", line: "+------------------------------------------------+"},
		{name: "three cells", line: "| 0 | 1 | NEW |"},
		{name: "five cells", line: "| 0 | 1 | NEW | READY | extra |"},
		{name: "empty cells dropped leaves three", line: "| 0 | | NEW | READY |"},
		{name: "non-integer time", line: "| zero | 1 | NEW | READY |"},
		{name: "non-integer pid", line: "| 0 | p1 | NEW | READY |"},
		{name: "fractional time", line: "| 0.5 | 1 | NEW | READY |"},
		{name: "blank", line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DefaultParser.ParseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParse_MalformedLineDoesNotDisturbNeighbours(t *testing.T) {
	clean, err := Parse(strings.NewReader(sampleTrace))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(sampleTrace), "\n")
	junk := []string{"garbage", "| x | y | z | w |", "|1|2|3|", "||||"}

	for i := 0; i <= len(lines); i++ {
		for _, j := range junk {
			mutated := make([]string, 0, len(lines)+1)
			mutated = append(mutated, lines[:i]...)
			mutated = append(mutated, j)
			mutated = append(mutated, lines[i:]...)

			got, err := Parse(strings.NewReader(strings.Join(mutated, "\n")))
			require.NoError(t, err)
			assert.Equal(t, clean, got, "junk %q inserted at line %d", j, i)
		}
	}
}

func TestParse_OverlongLineIsSkipped(t *testing.T) {
	clean, err := Parse(strings.NewReader(sampleTrace))
	require.NoError(t, err)

	long := strings.Repeat("x", 2*maxLineSize)
	tests := []struct {
		name  string
		input string
	}{
		{"before trace", long + "\n" + sampleTrace},
		{"between rows", strings.Replace(sampleTrace, "|                10 |", long+"\n|                10 |", 1)},
		{"last line without newline", sampleTrace + long},
		{"long data row", sampleTrace + "| 11 | 2 | NEW | " + long + " |\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats, err := DefaultParser.ParseWithStats(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, clean, got)
			assert.Equal(t, 8, stats.Lines)
			assert.Equal(t, 5, stats.Skipped)
		})
	}
}

func TestParse_LineAtSizeLimitIsKept(t *testing.T) {
	row := "| 4 | 3 | NEW | READY |"
	padded := row + strings.Repeat(" ", maxLineSize-len(row))
	require.Len(t, padded, maxLineSize)

	records, err := Parse(strings.NewReader(padded + "\n"))
	require.NoError(t, err)
	assert.Equal(t, []Transition{{Time: 4, PID: 3, OldState: StateNew, NewState: StateReady}}, records)
}

func TestParseWithStats(t *testing.T) {
	records, stats, err := DefaultParser.ParseWithStats(strings.NewReader(sampleTrace))
	require.NoError(t, err)

	assert.Len(t, records, 3)
	assert.Equal(t, Stats{Lines: 7, Records: 3, Skipped: 4}, stats)
}

func TestParse_CustomSeparator(t *testing.T) {
	p := Parser{Separator: ",", HeaderMarker: "time"}
	records, err := p.Parse(strings.NewReader("time,pid,old,new\n3,9,NEW,READY\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Transition{Time: 3, PID: 9, OldState: StateNew, NewState: StateReady}, records[0])
}

func TestParse_Empty(t *testing.T) {
	records, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.True(t, IsSoftFailure(records, err))
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "execution_EP.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleTrace), 0o600))

	records, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.False(t, IsSoftFailure(records, err))
}

func TestParseFile_Missing(t *testing.T) {
	records, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Nil(t, records)
	assert.True(t, errors.Is(err, ErrTraceUnavailable))
	assert.True(t, IsSoftFailure(records, err))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParse_ReadError(t *testing.T) {
	records, err := Parse(failingReader{})
	require.ErrorIs(t, err, ErrTraceUnavailable)
	assert.Nil(t, records)
}

func TestState(t *testing.T) {
	assert.Equal(t, StateBlocked, StateWaiting.Canonical())
	assert.Equal(t, StateReady, StateReady.Canonical())
}

func TestTransition_Is(t *testing.T) {
	tr := Transition{Time: 1, PID: 1, OldState: StateNew, NewState: StateReady}
	assert.True(t, tr.Is(StateNew, StateReady))
	assert.False(t, tr.Is(StateReady, StateRunning))
	assert.Equal(t, "t=1 pid=1 NEW->READY", tr.String())
}
