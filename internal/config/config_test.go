package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs_Analyze(t *testing.T) {
	args := []string{"sched-analyzer", "analyze", "execution_EP.txt", "execution_RR.txt"}

	cfg, err := ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, CommandAnalyze, cfg.Command)
	assert.Equal(t, []string{"execution_EP.txt", "execution_RR.txt"}, cfg.Paths)
	assert.Equal(t, FormatText, cfg.Format)
	assert.Empty(t, cfg.Metrics)
}

func TestParseArgs_AnalyzeRequiresPath(t *testing.T) {
	_, err := ParseArgs([]string{"sched-analyzer", "analyze"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one trace file")
}

func TestParseArgs_FlagsBeforeAndAfterCommand(t *testing.T) {
	args := []string{"sched-analyzer", "-f", "json", "analyze", "--metric", "x=throughput", "trace.txt"}

	cfg, err := ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, []string{"trace.txt"}, cfg.Paths)
	require.Len(t, cfg.Metrics, 1)
	assert.Equal(t, "x", cfg.Metrics[0].Name)
	assert.Equal(t, "throughput", cfg.Metrics[0].Expression)
}

func TestParseArgs_DoubleDashEndsFlags(t *testing.T) {
	args := []string{"sched-analyzer", "analyze", "--", "-weird-name.txt"}

	cfg, err := ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, []string{"-weird-name.txt"}, cfg.Paths)
}

func TestParseArgs_Run(t *testing.T) {
	args := []string{
		"sched-analyzer", "run",
		"--scheduler", "EP",
		"--scheduler", "RR,EP_RR",
		"-s", "suite.yaml",
		"input_files/test01.txt",
	}

	cfg, err := ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, CommandRun, cfg.Command)
	assert.Equal(t, []string{"EP", "RR", "EP_RR"}, cfg.Schedulers)
	assert.Equal(t, []string{"EP", "RR", "EP_RR"}, cfg.SchedulerList())
	assert.Equal(t, "suite.yaml", cfg.SuitePath)
	assert.Equal(t, []string{"input_files/test01.txt"}, cfg.Paths)
}

func TestParseArgs_RunDefaultsSchedulersFromEnv(t *testing.T) {
	t.Setenv("SCHED_SCHEDULERS", "FCFS,SJF")

	cfg, err := ParseArgs([]string{"sched-analyzer", "run"})
	require.NoError(t, err)
	assert.Empty(t, cfg.Schedulers)
	assert.Equal(t, []string{"FCFS", "SJF"}, cfg.SchedulerList())
}

func TestParseArgs_Serve(t *testing.T) {
	cfg, err := ParseArgs([]string{"sched-analyzer", "serve", "--addr", "127.0.0.1:8080"})
	require.NoError(t, err)
	assert.Equal(t, CommandServe, cfg.Command)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
}

func TestParseArgs_ServeAddrFromEnv(t *testing.T) {
	t.Setenv("SCHED_LISTEN_ADDR", ":7000")

	cfg, err := ParseArgs([]string{"sched-analyzer", "serve"})
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no arguments", []string{}, "no arguments provided"},
		{"no command", []string{"sched-analyzer"}, "no command specified"},
		{"unknown command", []string{"sched-analyzer", "explode"}, "unknown command"},
		{"unknown flag", []string{"sched-analyzer", "--frobnicate", "analyze", "x"}, "unknown flag"},
		{"missing flag value", []string{"sched-analyzer", "analyze", "x", "-m"}, "requires a value"},
		{"bad format", []string{"sched-analyzer", "-f", "xml", "analyze", "x"}, "unknown format"},
		{"metric without equals", []string{"sched-analyzer", "-m", "nope", "analyze", "x"}, "NAME=EXPR"},
		{"metric empty name", []string{"sched-analyzer", "-m", "=1", "analyze", "x"}, "name cannot be empty"},
		{"metric empty expression", []string{"sched-analyzer", "-m", "a=", "analyze", "x"}, "expression cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseArgs_Help(t *testing.T) {
	_, err := ParseArgs([]string{"sched-analyzer", "--help"})
	require.ErrorIs(t, err, ErrHelp)
	assert.Contains(t, err.Error(), "Usage:")
}

func TestParseArgs_MetricsMergedEnvFirst(t *testing.T) {
	t.Setenv("SCHED_METRICS", "from_env=avg_wait_time; other=num_processes")

	args := []string{"sched-analyzer", "-m", "from_cli=throughput*1000", "analyze", "trace.txt"}
	cfg, err := ParseArgs(args)
	require.NoError(t, err)

	require.Len(t, cfg.Metrics, 3)
	assert.Equal(t, "from_env", cfg.Metrics[0].Name)
	assert.Equal(t, "other", cfg.Metrics[1].Name)
	assert.Equal(t, "from_cli", cfg.Metrics[2].Name)
}

func TestParseArgs_BadEnvMetrics(t *testing.T) {
	t.Setenv("SCHED_METRICS", "broken")

	_, err := ParseArgs([]string{"sched-analyzer", "analyze", "trace.txt"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHED_METRICS")
}

func TestParseEnvConfig_Defaults(t *testing.T) {
	cfg, err := ParseEnvConfig()
	require.NoError(t, err)
	assert.Equal(t, "./bin", cfg.BinDir)
	assert.Equal(t, "./input_files", cfg.InputDir)
	assert.Equal(t, ".", cfg.WorkDir)
	assert.Equal(t, []string{"EP", "RR", "EP_RR"}, cfg.Schedulers)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, time.Millisecond, cfg.Tick)
	assert.Equal(t, "ms", cfg.TimeUnit)
	assert.Equal(t, ":9095", cfg.ListenAddr)
}

func TestParseEnvConfig_Overrides(t *testing.T) {
	t.Setenv("SCHED_BIN_DIR", "/opt/sched/bin")
	t.Setenv("SCHED_TIMEOUT", "5s")
	t.Setenv("SCHED_PARALLELISM", "1")
	t.Setenv("SCHED_TICK", "10us")

	cfg, err := ParseEnvConfig()
	require.NoError(t, err)
	assert.Equal(t, "/opt/sched/bin", cfg.BinDir)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 1, cfg.Parallelism)
	assert.Equal(t, 10*time.Microsecond, cfg.Tick)
}

func TestParseEnvConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero parallelism", "SCHED_PARALLELISM", "0"},
		{"negative tick", "SCHED_TICK", "-1ms"},
		{"unparseable timeout", "SCHED_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := ParseEnvConfig()
			require.Error(t, err)
		})
	}
}

func TestOTELConfig(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	cfg, err := ParseOTELConfig()
	require.NoError(t, err)
	assert.Equal(t, "sched-analyzer", cfg.ServiceName)
	assert.False(t, cfg.Enabled())
	assert.Empty(t, cfg.GetEndpoint())

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	cfg, err = ParseOTELConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "collector:4318", cfg.GetEndpoint())

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "traces:4318")
	cfg, err = ParseOTELConfig()
	require.NoError(t, err)
	assert.Equal(t, "traces:4318", cfg.GetEndpoint())

	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	cfg, err = ParseOTELConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled(), "a traces-only endpoint enables export")
}

func TestOTELConfig_ParseResourceAttributes(t *testing.T) {
	cfg := &OTELConfig{ResourceAttributes: "env=ci, team = os ,broken,=nokey"}

	attrs := cfg.ParseResourceAttributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "env", string(attrs[0].Key))
	assert.Equal(t, "ci", attrs[0].Value.AsString())
	assert.Equal(t, "team", string(attrs[1].Key))
	assert.Equal(t, "os", attrs[1].Value.AsString())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "inputs", "a.txt"), "")
	writeFile(t, filepath.Join(dir, "inputs", "b.txt"), "")
	writeFile(t, filepath.Join(dir, "inputs", "notes.md"), "")
	suitePath := filepath.Join(dir, "suite.yaml")
	writeFile(t, suitePath, `
schedulers: [EP, RR]
inputs:
  - inputs/*.txt
bin_dir: build
timeout: 2s
output_pattern: out_%s.log
`)

	defaults, err := ParseEnvConfig()
	require.NoError(t, err)

	suite, err := LoadSuite(suitePath, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"EP", "RR"}, suite.Schedulers)
	assert.Equal(t, []string{
		filepath.Join(dir, "inputs", "a.txt"),
		filepath.Join(dir, "inputs", "b.txt"),
	}, suite.Inputs)
	assert.Equal(t, filepath.Join(dir, "build"), suite.BinDir)
	assert.Equal(t, ".", suite.WorkDir, "work_dir not in the suite keeps the environment value")
	assert.Equal(t, 2*time.Second, suite.Timeout)
	assert.Equal(t, "", suite.BinaryPattern)
	assert.Equal(t, "out_%s.log", suite.OutputPattern)
}

func TestLoadSuite_DefaultSchedulers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "in.txt"), "")
	suitePath := filepath.Join(dir, "suite.yaml")
	writeFile(t, suitePath, "inputs: [in.txt]\nbin_dir: /abs/bin\n")

	defaults, err := ParseEnvConfig()
	require.NoError(t, err)

	suite, err := LoadSuite(suitePath, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"EP", "RR", "EP_RR"}, suite.Schedulers)
	assert.Equal(t, "/abs/bin", suite.BinDir)
	assert.Equal(t, 30*time.Second, suite.Timeout)
}

func TestLoadSuite_EnvironmentDirsStayRelativeToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "suites", "inputs", "t1.txt"), "")
	suitePath := filepath.Join(dir, "suites", "s.yaml")
	writeFile(t, suitePath, "schedulers: [EP]\ninputs: [inputs/*.txt]\n")

	t.Setenv("SCHED_BIN_DIR", "./build/bin")
	t.Setenv("SCHED_WORK_DIR", "./out")
	defaults, err := ParseEnvConfig()
	require.NoError(t, err)

	suite, err := LoadSuite(suitePath, defaults)
	require.NoError(t, err)
	assert.Equal(t, "./build/bin", suite.BinDir)
	assert.Equal(t, "./out", suite.WorkDir)
	assert.Equal(t, []string{filepath.Join(dir, "suites", "inputs", "t1.txt")}, suite.Inputs)

	writeFile(t, suitePath, "schedulers: [EP]\ninputs: [inputs/*.txt]\nbin_dir: ./build/bin\nwork_dir: out\n")
	suite, err = LoadSuite(suitePath, defaults)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "suites", "build", "bin"), suite.BinDir)
	assert.Equal(t, filepath.Join(dir, "suites", "out"), suite.WorkDir)
}

func TestLoadSuite_Errors(t *testing.T) {
	dir := t.TempDir()
	defaults, err := ParseEnvConfig()
	require.NoError(t, err)

	_, err = LoadSuite(filepath.Join(dir, "missing.yaml"), defaults)
	require.Error(t, err)

	noMatch := filepath.Join(dir, "nomatch.yaml")
	writeFile(t, noMatch, "inputs: [nothing/*.txt]\n")
	_, err = LoadSuite(noMatch, defaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files matched")
}
