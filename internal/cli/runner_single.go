package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/johnqtcg/shipmetrics/internal/collect"
	"github.com/johnqtcg/shipmetrics/internal/config"
	gh "github.com/johnqtcg/shipmetrics/internal/github"
	"github.com/johnqtcg/shipmetrics/internal/metrics"
	"github.com/johnqtcg/shipmetrics/internal/parser"
	"github.com/johnqtcg/shipmetrics/internal/report"
)

// Runner executes the CLI application flow.
type Runner interface {
	Run(ctx context.Context, args []string) int
}

// MetricsCollector computes the requested metric families for one target.
type MetricsCollector interface {
	Run(ctx context.Context, ref gh.ResourceRef, opts collect.Options) (metrics.Report, error)
}

// CollectorFactory creates collectors from runtime config.
type CollectorFactory interface {
	New(cfg config.Config, logger *slog.Logger) (MetricsCollector, error)
}

// RendererFactory creates report renderer instances from runtime config.
type RendererFactory interface {
	New(cfg config.Config) report.Renderer
}

// AppDeps defines dependencies for CLI app construction.
type AppDeps struct {
	Loader           config.Loader
	Parser           parser.RefParser
	CollectorFactory CollectorFactory
	RendererFactory  RendererFactory
	Writer           OutputWriter
	InputReader      InputReader
	Stdout           io.Writer
	Stderr           io.Writer
}

// App orchestrates CLI single and batch workflows.
type App struct {
	loader           config.Loader
	parser           parser.RefParser
	collectorFactory CollectorFactory
	rendererFactory  RendererFactory
	writer           OutputWriter
	inputReader      InputReader
	stdout           io.Writer
	stderr           io.Writer
}

// NewApp creates a CLI runner with injected dependencies.
func NewApp(deps AppDeps) Runner {
	app := &App{
		loader:           deps.Loader,
		parser:           deps.Parser,
		collectorFactory: deps.CollectorFactory,
		rendererFactory:  deps.RendererFactory,
		writer:           deps.Writer,
		inputReader:      deps.InputReader,
		stdout:           deps.Stdout,
		stderr:           deps.Stderr,
	}
	app.setDefaults()
	return app
}

func (a *App) setDefaults() {
	if a.loader == nil {
		a.loader = config.NewLoader()
	}
	if a.parser == nil {
		a.parser = parser.New()
	}
	if a.collectorFactory == nil {
		a.collectorFactory = defaultCollectorFactory{}
	}
	if a.rendererFactory == nil {
		a.rendererFactory = defaultRendererFactory{}
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}
	if a.writer == nil {
		a.writer = NewOutputWriter(a.stdout)
	}
	if a.inputReader == nil {
		a.inputReader = NewFileInputReader()
	}
}

// Run executes the CLI workflow and returns an exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	cfg, err := a.loader.Load(args)
	if err != nil {
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}

	validated, err := ValidateArgs(cfg)
	if err != nil {
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}

	logger, err := cfg.Logger.Configure(a.stderr)
	if err != nil {
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}
	logger.Debug("configuration loaded", slog.Any("config", cfg))

	collector, err := a.collectorFactory.New(cfg, logger)
	if err != nil {
		runErr := fmt.Errorf("build collector: %w", err)
		writeErrorLine(a.stderr, runErr)
		return ResolveExitCode(runErr, false, 0)
	}

	renderer := a.rendererFactory.New(cfg)
	singleStatusOutput := a.stdout
	if validated.Mode == ModeSingle && cfg.Stdout {
		// Keep stdout pure report output when --stdout is used in single mode.
		singleStatusOutput = a.stderr
	}

	switch validated.Mode {
	case ModeSingle:
		item, runErr := a.runSingle(ctx, cfg, validated, collector, renderer)
		if runErr != nil {
			item.Status = StatusFailed
			item.Reason = runErr.Error()
			writeStatusLine(singleStatusOutput, item)
			return ResolveExitCode(runErr, false, 0)
		}
		writeStatusLine(singleStatusOutput, item)
		return ExitOK
	case ModeBatch:
		summary, runErr := a.runBatch(ctx, cfg, collector, renderer)
		if runErr != nil {
			writeErrorLine(a.stderr, runErr)
		}
		if _, writeErr := fmt.Fprintln(a.stdout, FormatSummary(summary)); writeErr != nil {
			writeErrorLine(a.stderr, fmt.Errorf("write summary output: %w", writeErr))
		}
		return ResolveExitCode(runErr, true, summary.Failed)
	default:
		err = fmt.Errorf("unsupported mode %q", validated.Mode)
		writeErrorLine(a.stderr, err)
		return ResolveExitCode(err, false, 0)
	}
}

func (a *App) runSingle(ctx context.Context, cfg config.Config, args Args, collector MetricsCollector, renderer report.Renderer) (ItemResult, error) {
	item, err := a.processOne(ctx, cfg, ModeSingle, args.Target, collector, renderer)
	if err != nil {
		return item, fmt.Errorf("run single target %q: %w", args.Target, err)
	}
	return item, nil
}

func (a *App) processOne(ctx context.Context, cfg config.Config, mode Mode, raw string, collector MetricsCollector, renderer report.Renderer) (ItemResult, error) {
	item := ItemResult{
		Target: raw,
		Status: StatusFailed,
	}

	ref, err := a.parser.Parse(raw)
	if err != nil {
		return item, fmt.Errorf("parse target: %w", err)
	}
	item.ResourceType = ref.Type

	// A collect error still carries a report whose families are marked
	// unavailable; it is written unless the run was canceled.
	rep, collectErr := collector.Run(ctx, ref, cfg.CollectOptions())
	if collectErr != nil {
		collectErr = fmt.Errorf("collect metrics: %w", collectErr)
		if ctx.Err() != nil || errors.Is(collectErr, context.Canceled) {
			return item, collectErr
		}
	}
	item.Unavailable = rep.Unavailable()

	content, err := renderer.Render(ctx, rep, cfg.RenderOptions())
	if err != nil {
		return item, errors.Join(collectErr, fmt.Errorf("render report: %w", err))
	}

	outputPath, err := a.writer.Write(cfg, mode, ref, content)
	if err != nil {
		return item, errors.Join(collectErr, fmt.Errorf("write output: %w", err))
	}
	item.OutputPath = outputPath

	if collectErr != nil {
		return item, collectErr
	}
	item.Status = StatusOK
	return item, nil
}

type defaultCollectorFactory struct{}

func (f defaultCollectorFactory) New(cfg config.Config, logger *slog.Logger) (MetricsCollector, error) {
	_ = f
	client, err := gh.NewClient(gh.Config{
		Token: cfg.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("create GitHub client: %w", err)
	}
	return collect.New(client, cfg.Metrics,
		collect.WithLogger(logger),
		collect.WithConcurrency(cfg.Concurrency),
	), nil
}

type defaultRendererFactory struct{}

func (f defaultRendererFactory) New(cfg config.Config) report.Renderer {
	_ = f
	_ = cfg
	return report.NewRenderer()
}

func writeStatusLine(w io.Writer, item ItemResult) {
	if _, err := fmt.Fprintln(w, formatStatusLine(item)); err != nil {
		return
	}
}

func writeErrorLine(w io.Writer, err error) {
	if _, writeErr := fmt.Fprintf(w, "error: %v\n", err); writeErr != nil {
		return
	}
}
