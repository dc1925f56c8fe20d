package producer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mrzor/sched-analyzer/internal/trace"
)

// ErrSchedulerFailed is returned when a scheduler binary exits unsuccessfully or times out.
var ErrSchedulerFailed = errors.New("scheduler failed")

// Defaults for CommandProducer.
const (
	DefaultBinaryPattern = "interrupts_%s"
	DefaultOutputPattern = "execution_%s.txt"
	DefaultTimeout       = 30 * time.Second
)

// CommandProducer runs a scheduler binary on an input file and reads the
// execution table it leaves in WorkDir.
//
// Two producers for the same scheduler and WorkDir overwrite each other's
// output and must not run at the same time.
type CommandProducer struct {
	Scheduler string
	Input     string
	BinDir    string
	WorkDir   string
	Timeout   time.Duration

	// BinaryPattern and OutputPattern take the scheduler name via %s.
	BinaryPattern string
	OutputPattern string
}

// Name returns "<scheduler>:<input>".
func (p *CommandProducer) Name() string {
	return p.Scheduler + ":" + filepath.Base(p.Input)
}

// BinaryPath is the scheduler executable.
func (p *CommandProducer) BinaryPath() string {
	return filepath.Join(p.BinDir, fmt.Sprintf(orDefault(p.BinaryPattern, DefaultBinaryPattern), p.Scheduler))
}

// OutputPath is the execution table written by the scheduler.
func (p *CommandProducer) OutputPath() string {
	return filepath.Join(p.WorkDir, fmt.Sprintf(orDefault(p.OutputPattern, DefaultOutputPattern), p.Scheduler))
}

// Produce runs the scheduler and opens its output.
func (p *CommandProducer) Produce(ctx context.Context) (io.ReadCloser, error) {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	binary, err := filepath.Abs(p.BinaryPath())
	if err != nil {
		return nil, fmt.Errorf("resolving scheduler binary: %w", err)
	}
	input, err := filepath.Abs(p.Input)
	if err != nil {
		return nil, fmt.Errorf("resolving input file: %w", err)
	}

	//nolint:gosec // Running scheduler binaries is the purpose of this producer
	cmd := exec.CommandContext(runCtx, binary, input)
	cmd.Dir = p.WorkDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s", ErrSchedulerFailed, p.Name(), timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s: %v: %s", ErrSchedulerFailed, p.Name(), err, msg)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrSchedulerFailed, p.Name(), err)
	}

	file, err := os.Open(p.OutputPath())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", trace.ErrTraceUnavailable, err)
	}
	return file, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
