// sched-analyzer computes scheduling metrics from scheduler transition traces.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/mrzor/sched-analyzer/internal/analyzer"
	"github.com/mrzor/sched-analyzer/internal/api"
	"github.com/mrzor/sched-analyzer/internal/config"
	"github.com/mrzor/sched-analyzer/internal/derived"
	"github.com/mrzor/sched-analyzer/internal/otel"
	"github.com/mrzor/sched-analyzer/internal/output"
	"github.com/mrzor/sched-analyzer/internal/producer"
	"github.com/mrzor/sched-analyzer/internal/timesync"
	"go.opentelemetry.io/otel/trace"
)

// Version information injected at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// setupOTEL returns the tracer analysis spans go to and its cleanup function.
func setupOTEL(versionInfo string) (trace.Tracer, func(), error) {
	otelCfg, err := config.ParseOTELConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse OTEL config: %w", err)
	}

	tracer, shutdown, err := otel.Setup(otelCfg, versionInfo)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OTEL provider: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down OTEL provider: %v", err)
		}
	}

	return tracer, cleanup, nil
}

// setupHandlers builds the result handlers for cfg. The OTEL formatter is
// always present; it is a no-op unless an endpoint is configured.
func setupHandlers(cfg *config.Config, tracer trace.Tracer, console bool) ([]analyzer.ResultHandler, error) {
	converter, err := timesync.NewConverter(time.Now(), cfg.Env.Tick)
	if err != nil {
		return nil, fmt.Errorf("failed to create tick converter: %w", err)
	}

	otelFormatter, err := output.NewOTELFormatter(tracer, converter)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTEL formatter: %w", err)
	}
	handlers := []analyzer.ResultHandler{otelFormatter}

	if !console {
		return handlers, nil
	}

	switch cfg.Format {
	case config.FormatJSON:
		handlers = append(handlers, output.NewJSONFormatter(os.Stdout))
	default:
		handlers = append(handlers, output.NewTextFormatter(os.Stdout, cfg.Env.TimeUnit))
	}
	return handlers, nil
}

// analyzeJobs turns trace files or URLs into jobs labelled by scheduler name.
func analyzeJobs(paths []string) []analyzer.Job {
	jobs := make([]analyzer.Job, 0, len(paths))
	for _, path := range paths {
		var p producer.Producer = &producer.FileProducer{Path: path}
		if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
			p = &producer.HTTPProducer{URL: path}
		}
		jobs = append(jobs, analyzer.Job{
			Scheduler: schedulerFromTrace(path),
			Input:     path,
			Producer:  p,
		})
	}
	return jobs
}

// schedulerFromTrace recovers the scheduler name from an execution_<sched>.txt
// file name, falling back to the bare file name.
func schedulerFromTrace(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name, ok := strings.CutPrefix(base, "execution_"); ok && name != "" {
		return name
	}
	return base
}

// runJobs builds a scheduler x input matrix of command jobs, from a suite
// file when one was given.
func runJobs(cfg *config.Config) ([]analyzer.Job, error) {
	env := cfg.Env
	schedulers := cfg.SchedulerList()
	inputs := cfg.Paths
	binDir, workDir, timeout := env.BinDir, env.WorkDir, env.Timeout
	var binaryPattern, outputPattern string

	if cfg.SuitePath != "" {
		suite, err := config.LoadSuite(cfg.SuitePath, env)
		if err != nil {
			return nil, err
		}
		if len(cfg.Schedulers) == 0 {
			schedulers = suite.Schedulers
		}
		if len(inputs) == 0 {
			inputs = suite.Inputs
		}
		binDir, workDir, timeout = suite.BinDir, suite.WorkDir, suite.Timeout
		binaryPattern, outputPattern = suite.BinaryPattern, suite.OutputPattern
	}

	if len(inputs) == 0 {
		matches, err := filepath.Glob(filepath.Join(env.InputDir, "*.txt"))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", env.InputDir, err)
		}
		inputs = matches
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no input files given and none found in %s", env.InputDir)
	}

	var jobs []analyzer.Job
	for _, input := range inputs {
		for _, scheduler := range schedulers {
			jobs = append(jobs, analyzer.Job{
				Scheduler: scheduler,
				Input:     filepath.Base(input),
				Producer: &producer.CommandProducer{
					Scheduler:     scheduler,
					Input:         input,
					BinDir:        binDir,
					WorkDir:       workDir,
					Timeout:       timeout,
					BinaryPattern: binaryPattern,
					OutputPattern: outputPattern,
				},
				// Every run of a scheduler rewrites the same output file.
				Group: scheduler + "@" + workDir,
			})
		}
	}
	return jobs, nil
}

func batch(ctx context.Context, cfg *config.Config, a *analyzer.Analyzer) error {
	var jobs []analyzer.Job
	switch cfg.Command {
	case config.CommandAnalyze:
		jobs = analyzeJobs(cfg.Paths)
	case config.CommandRun:
		var err error
		if jobs, err = runJobs(cfg); err != nil {
			return err
		}
	}

	log.Printf("Analyzing %d trace(s) with parallelism %d", len(jobs), cfg.Env.Parallelism)
	results, err := a.Run(ctx, jobs)
	if err != nil {
		return err
	}

	// Empty traces are soft failures; only exit non-zero when nothing ran.
	for _, r := range results {
		if r.Status != analyzer.StatusFailed {
			return nil
		}
	}
	if len(results) > 0 {
		return errors.New("every analysis failed")
	}
	return nil
}

func serve(ctx context.Context, addr string, a *analyzer.Analyzer) error {
	app := api.NewApp(api.NewHandler(a))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("Received signal, shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	}
}

func run() error {
	cfg, err := config.ParseArgs(os.Args)
	if errors.Is(err, config.ErrHelp) {
		fmt.Println(strings.TrimPrefix(err.Error(), config.ErrHelp.Error()+"\n"))
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("Starting sched-analyzer %s (commit: %s)", version, commit)

	tracer, cleanupOTEL, err := setupOTEL(fmt.Sprintf("%s (%s)", version, commit))
	if err != nil {
		return err
	}
	defer cleanupOTEL()

	evaluator, err := derived.NewEvaluator(cfg.Metrics)
	if err != nil {
		return err
	}

	handlers, err := setupHandlers(cfg, tracer, cfg.Command != config.CommandServe)
	if err != nil {
		return err
	}

	a := analyzer.New(analyzer.Config{
		Parallelism: cfg.Env.Parallelism,
		Evaluator:   evaluator,
		Handlers:    handlers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Command == config.CommandServe {
		return serve(ctx, cfg.Addr, a)
	}
	return batch(ctx, cfg, a)
}
