package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrTraceUnavailable is returned when a trace cannot be opened or read.
var ErrTraceUnavailable = errors.New("trace unavailable")

// Default table decoration used by the scheduler output format.
const (
	DefaultSeparator    = "|"
	DefaultHeaderMarker = "Time"
	DefaultBorderMarker = "+"
)

const maxLineSize = 1024 * 1024

// Parser turns trace text into transitions.
type Parser struct {
	// Separator splits a row into cells.
	Separator string
	// HeaderMarker identifies table header rows.
	HeaderMarker string
	// BorderMarker identifies ASCII-art border rows.
	BorderMarker string
}

// Stats counts what a parse did with its input.
type Stats struct {
	Lines   int
	Records int
	Skipped int
}

// DefaultParser understands the table format printed by the schedulers.
var DefaultParser = Parser{
	Separator:    DefaultSeparator,
	HeaderMarker: DefaultHeaderMarker,
	BorderMarker: DefaultBorderMarker,
}

// Parse reads transitions from r using DefaultParser.
func Parse(r io.Reader) ([]Transition, error) {
	return DefaultParser.Parse(r)
}

// ParseFile reads transitions from the file at path using DefaultParser.
func ParseFile(path string) ([]Transition, error) {
	return DefaultParser.ParseFile(path)
}

// IsSoftFailure reports whether a parse outcome means "nothing to analyze":
// the trace could not be read, or it held no usable records.
func IsSoftFailure(records []Transition, err error) bool {
	return errors.Is(err, ErrTraceUnavailable) || (err == nil && len(records) == 0)
}

// ParseFile opens path and parses it.
// Any open or read failure wraps ErrTraceUnavailable and returns no records.
func (p Parser) ParseFile(path string) ([]Transition, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTraceUnavailable, err)
	}
	defer func() {
		_ = file.Close() //nolint:errcheck // Read-only file
	}()

	return p.Parse(file)
}

// Parse reads every line of r and returns the transitions in input order.
func (p Parser) Parse(r io.Reader) ([]Transition, error) {
	records, _, err := p.ParseWithStats(r)
	return records, err
}

// ParseWithStats is Parse that also reports how many lines were skipped.
// Lines longer than maxLineSize are skipped like any other malformed line.
func (p Parser) ParseWithStats(r io.Reader) ([]Transition, Stats, error) {
	var (
		records []Transition
		stats   Stats
	)

	reader := bufio.NewReader(r)
	for {
		line, overlong, err := readLine(reader)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: %v", ErrTraceUnavailable, err)
		}

		stats.Lines++
		if overlong {
			stats.Skipped++
			continue
		}
		t, ok := p.ParseLine(line)
		if !ok {
			stats.Skipped++
			continue
		}
		records = append(records, t)
	}
	stats.Records = len(records)

	return records, stats, nil
}

// readLine returns the next line without its terminator. A line over
// maxLineSize is consumed in full and reported as overlong with no content.
// io.EOF is only returned once no line is left.
func readLine(r *bufio.Reader) (string, bool, error) {
	var (
		buf      []byte
		overlong bool
		started  bool
	)
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && started {
				return string(buf), overlong, nil
			}
			return "", false, err
		}
		started = true

		if !overlong {
			if len(buf)+len(chunk) > maxLineSize {
				overlong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), overlong, nil
		}
	}
}

// ParseLine parses one table row. It returns false for anything that is not a
// data row with exactly four cells and integer time and pid.
func (p Parser) ParseLine(line string) (Transition, bool) {
	if !p.isDataLine(line) {
		return Transition{}, false
	}

	cells := splitCells(line, p.Separator)
	if len(cells) != 4 {
		return Transition{}, false
	}

	time, err := strconv.ParseInt(cells[0], 10, 64)
	if err != nil {
		return Transition{}, false
	}
	pid, err := strconv.Atoi(cells[1])
	if err != nil {
		return Transition{}, false
	}

	return Transition{
		Time:     time,
		PID:      pid,
		OldState: State(cells[2]),
		NewState: State(cells[3]),
	}, true
}

func (p Parser) isDataLine(line string) bool {
	if p.Separator == "" || !strings.Contains(line, p.Separator) {
		return false
	}
	if p.HeaderMarker != "" && strings.Contains(line, p.HeaderMarker) {
		return false
	}
	if p.BorderMarker != "" && strings.Contains(line, p.BorderMarker) {
		return false
	}
	return true
}

// splitCells splits on sep, trims each cell and drops empty ones.
func splitCells(line, sep string) []string {
	parts := strings.Split(line, sep)
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		if cell := strings.TrimSpace(part); cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}
