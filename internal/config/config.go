package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrzor/sched-analyzer/internal/derived"
)

// Command selects what the binary does.
type Command string

// Supported commands.
const (
	CommandAnalyze Command = "analyze"
	CommandRun     Command = "run"
	CommandServe   Command = "serve"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrHelp is returned when usage was requested.
var ErrHelp = errors.New("help requested")

// Config holds the parsed command-line configuration
type Config struct {
	Command Command
	// Paths are trace files for analyze, input files for run.
	Paths []string
	// SuitePath is an optional YAML suite for run.
	SuitePath string
	// Schedulers restricts run to these schedulers.
	Schedulers []string
	// Metrics are derived metrics, env definitions first.
	Metrics []derived.Definition
	// Format is "text" or "json".
	Format string
	// Addr is the listen address for serve.
	Addr string
	// Env is the environment configuration the flags were merged over.
	Env *EnvConfig
}

// Usage returns the help text.
func Usage(programName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s analyze [-m NAME=EXPR]... [-f text|json] <trace>...
  %[1]s run [-s suite.yaml] [--scheduler NAME]... [-m NAME=EXPR]... [-f text|json] [input...]
  %[1]s serve [--addr :9095]

Examples:
  %[1]s analyze execution_EP.txt execution_RR.txt
  %[1]s run --scheduler EP --scheduler RR input_files/test01_basic.txt
  %[1]s analyze -m 'slowdown=avg_turnaround_time/max(avg_response_time,1)' execution_EP.txt
`, programName)
}

// ParseArgs parses command-line arguments over the environment configuration.
func ParseArgs(args []string) (*Config, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no arguments provided")
	}
	programName := args[0]

	envCfg, err := ParseEnvConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Format: FormatText,
		Addr:   envCfg.ListenAddr,
		Env:    envCfg,
	}

	// Environment metrics come first, flags append
	if envCfg.Metrics != "" {
		defs, err := derived.ParseDefinitions(envCfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("SCHED_METRICS: %w", err)
		}
		cfg.Metrics = append(cfg.Metrics, defs...)
	}

	var positional []string
	flagsDone := false
	for i := 1; i < len(args); i++ {
		arg := args[i]

		if flagsDone || !strings.HasPrefix(arg, "-") || arg == "-" {
			positional = append(positional, arg)
			continue
		}

		// value returns the argument following a flag
		value := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		switch arg {
		case "--":
			flagsDone = true
		case "-h", "--help":
			return nil, fmt.Errorf("%w\n%s", ErrHelp, Usage(programName))
		case "-s", "--suite":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.SuitePath = v
		case "--scheduler":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Schedulers = append(cfg.Schedulers, splitList(v)...)
		case "-m", "--metric":
			v, err := value()
			if err != nil {
				return nil, err
			}
			def, err := derived.ParseDefinition(v)
			if err != nil {
				return nil, err
			}
			cfg.Metrics = append(cfg.Metrics, def)
		case "-f", "--format":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Format = v
		case "--addr":
			v, err := value()
			if err != nil {
				return nil, err
			}
			cfg.Addr = v
		default:
			return nil, fmt.Errorf("unknown flag %q\n%s", arg, Usage(programName))
		}
	}

	if len(positional) == 0 {
		return nil, fmt.Errorf("no command specified\n%s", Usage(programName))
	}
	cfg.Command = Command(positional[0])
	cfg.Paths = positional[1:]

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w\n%s", err, Usage(programName))
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Command {
	case CommandAnalyze:
		if len(c.Paths) == 0 {
			return fmt.Errorf("analyze requires at least one trace file")
		}
	case CommandRun:
	case CommandServe:
		if c.Addr == "" {
			return fmt.Errorf("serve requires a listen address")
		}
	default:
		return fmt.Errorf("unknown command %q", c.Command)
	}

	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("unknown format %q: expected %s or %s", c.Format, FormatText, FormatJSON)
	}
	return nil
}

// SchedulerList returns the schedulers selected on the command line, or the
// environment default.
func (c *Config) SchedulerList() []string {
	if len(c.Schedulers) > 0 {
		return c.Schedulers
	}
	return c.Env.Schedulers
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
