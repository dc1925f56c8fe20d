package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Suite describes a batch of scheduler runs.
//
// Example suite.yaml:
//
//	schedulers: [EP, RR, EP_RR]
//	inputs:
//	  - input_files/*.txt
//	bin_dir: ./bin
//	work_dir: .
//	timeout: 30s
//	binary_pattern: interrupts_%s
//	output_pattern: execution_%s.txt
type Suite struct {
	Schedulers    []string
	Inputs        []string
	BinDir        string
	WorkDir       string
	Timeout       time.Duration
	BinaryPattern string
	OutputPattern string
}

// LoadSuite reads a suite file. Unset keys fall back to defaults.
// Relative paths written in the suite are resolved against the suite file's
// directory and input entries are expanded as globs.
func LoadSuite(path string, defaults *EnvConfig) (*Suite, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("schedulers", defaults.Schedulers)
	v.SetDefault("bin_dir", defaults.BinDir)
	v.SetDefault("work_dir", defaults.WorkDir)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("binary_pattern", "")
	v.SetDefault("output_pattern", "")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read suite %s: %w", path, err)
	}

	base := filepath.Dir(path)
	// Only paths written in the suite are relative to it; environment
	// defaults stay relative to the working directory.
	dir := func(key string) string {
		if v.InConfig(key) {
			return resolve(base, v.GetString(key))
		}
		return v.GetString(key)
	}

	suite := &Suite{
		Schedulers:    v.GetStringSlice("schedulers"),
		BinDir:        dir("bin_dir"),
		WorkDir:       dir("work_dir"),
		Timeout:       v.GetDuration("timeout"),
		BinaryPattern: v.GetString("binary_pattern"),
		OutputPattern: v.GetString("output_pattern"),
	}

	if len(suite.Schedulers) == 0 {
		return nil, fmt.Errorf("suite %s: no schedulers listed", path)
	}
	if suite.Timeout <= 0 {
		return nil, fmt.Errorf("suite %s: timeout must be positive", path)
	}

	for _, pattern := range v.GetStringSlice("inputs") {
		matches, err := filepath.Glob(resolve(base, pattern))
		if err != nil {
			return nil, fmt.Errorf("suite %s: bad input pattern %q: %w", path, pattern, err)
		}
		suite.Inputs = append(suite.Inputs, matches...)
	}
	if len(suite.Inputs) == 0 {
		return nil, fmt.Errorf("suite %s: no input files matched", path)
	}

	return suite, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
