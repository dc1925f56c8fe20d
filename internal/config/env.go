package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds settings read from the environment.
type EnvConfig struct {
	BinDir      string        `env:"SCHED_BIN_DIR" envDefault:"./bin"`
	InputDir    string        `env:"SCHED_INPUT_DIR" envDefault:"./input_files"`
	WorkDir     string        `env:"SCHED_WORK_DIR" envDefault:"."`
	Schedulers  []string      `env:"SCHED_SCHEDULERS" envDefault:"EP,RR,EP_RR" envSeparator:","`
	Timeout     time.Duration `env:"SCHED_TIMEOUT" envDefault:"30s"`
	Parallelism int           `env:"SCHED_PARALLELISM" envDefault:"4"`
	Tick        time.Duration `env:"SCHED_TICK" envDefault:"1ms"`
	TimeUnit    string        `env:"SCHED_TIME_UNIT" envDefault:"ms"`
	ListenAddr  string        `env:"SCHED_LISTEN_ADDR" envDefault:":9095"`
	// Metrics is a semicolon-separated list of NAME=EXPR definitions.
	Metrics string `env:"SCHED_METRICS" envDefault:""`
}

// ParseEnvConfig parses configuration from environment variables
func ParseEnvConfig() (*EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	if cfg.Parallelism < 1 {
		return nil, fmt.Errorf("SCHED_PARALLELISM must be at least 1, got %d", cfg.Parallelism)
	}
	if cfg.Tick <= 0 {
		return nil, fmt.Errorf("SCHED_TICK must be positive, got %s", cfg.Tick)
	}
	return &cfg, nil
}
