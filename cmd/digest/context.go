package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/config"
	"github.com/nguyentantai21042004/caption-digest/internal/gate"
	"github.com/nguyentantai21042004/caption-digest/internal/llm"
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/internal/performance"
	"github.com/nguyentantai21042004/caption-digest/internal/pipeline"
	"github.com/nguyentantai21042004/caption-digest/internal/progress"
	"github.com/nguyentantai21042004/caption-digest/internal/render"
	"github.com/nguyentantai21042004/caption-digest/internal/retry"
	"github.com/nguyentantai21042004/caption-digest/pkg/executor"
)

// runContext holds everything one invocation shares: a single gate, retry
// policy and tracker for all videos it processes.
type runContext struct {
	cfg      *config.Config
	log      logger.Logger
	perf     performance.Config
	tracker  *performance.Tracker
	invoker  *llm.Invoker
	renderer render.Renderer
	progress progress.Reporter
	verbose  bool
}

func loadConfig(flags *globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.provider != "" {
		cfg.LLM.Provider = flags.provider
	}
	if flags.model != "" {
		cfg.LLM.Model = flags.model
	}
	if flags.output != "" {
		cfg.Paths.Output = flags.output
	}
	if flags.format != "" {
		cfg.Render.Format = flags.format
	}
	if flags.maxConcurrent > 0 {
		cfg.Performance.MaxConcurrentLLM = flags.maxConcurrent
	}
	if flags.sequential {
		parallel := false
		cfg.Performance.EnableParallelProcessing = &parallel
	}
	if flags.transcript {
		cfg.Render.Transcript = true
	}
	if len(flags.sponsorblock) > 0 {
		cfg.Sponsor.Categories = flags.sponsorblock
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newRunContext(ctx context.Context, flags *globalFlags) (context.Context, *runContext, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return ctx, nil, err
	}

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	ctx, runID := logger.NewRunID(ctx)

	hw := performance.SampleHardware()
	perf := cfg.Performance.ApplyTo(performance.NewConfig(hw))
	log.Debug(ctx, "Run %s: %d CPUs, %.0fMB available, %d concurrent LLM calls", runID, hw.CPUCount, hw.MemoryAvailableMB, perf.MaxConcurrentLLM)

	provider, err := llm.New(cfg.ProviderConfig(perf.LocalInferenceThreads), log)
	if err != nil {
		return ctx, nil, fmt.Errorf("llm provider: %w", err)
	}

	renderer, err := render.New(cfg.Render.Format)
	if err != nil {
		return ctx, nil, err
	}

	tracker := performance.NewTracker(log)
	permits := perf.MaxConcurrentLLM
	if provider.Name() == llm.ProviderLocal {
		permits = min(permits, perf.MaxConcurrentLocalInference)
	}
	policy := retry.New(perf.RetryMaxAttempts, perf.RetryBaseDelay,
		retry.WithOnRetry(func(attempt int, delay time.Duration, err error) {
			tracker.TrackRetry()
			kind := "permanent"
			if llm.Transient(err) {
				kind = "transient"
			}
			log.Warn(ctx, "Attempt %d failed (%s), retrying in %s: %v", attempt, kind, delay, err)
		}),
		retry.WithMinDelay(llm.RetryAfter),
	)
	invoker := llm.NewInvoker(provider, gate.New(permits), policy, llm.InvokerOptions{
		RequestTimeout: perf.RequestTimeout,
		Workers:        perf.MaxConcurrentLocalInference,
		QueueSize:      permits,
	}, log)

	log.Info(ctx, "Using %s with %d concurrent calls (parallel: %v)", provider.Name(), permits, perf.EnableParallelProcessing)

	return ctx, &runContext{
		cfg:      cfg,
		log:      log,
		perf:     perf,
		tracker:  tracker,
		invoker:  invoker,
		renderer: renderer,
		progress: progress.Auto(os.Stderr, log, pipeline.PhaseCount),
		verbose:  flags.verbose,
	}, nil
}

// source reads caption files, and transcribes media when whisper is set up.
func (r *runContext) source() pipeline.Source {
	src := pipeline.RoutedSource{Captions: pipeline.FileSource{
		Sponsor: r.cfg.Sponsor.Client(),
		Log:     r.log,
	}}
	if t := r.cfg.Transcribe; t.Enabled() {
		src.Media = pipeline.NewMediaSource(executor.New(), pipeline.WhisperConfig{
			BinaryPath: t.BinaryPath,
			ModelPath:  t.ModelPath,
			Language:   t.Language,
			Prompt:     t.Prompt,
			Threads:    t.Threads,
		}, r.cfg.Paths.Temp, r.log)
	}
	return src
}

// accepts reports whether path is an input this run can process.
func (r *runContext) accepts(path string) bool {
	return caption.IsCaptionFile(path) || (r.cfg.Transcribe.Enabled() && pipeline.IsMediaFile(path))
}

func (r *runContext) processor() pipeline.Processor {
	return pipeline.New(pipeline.Options{
		Source:     r.source(),
		Caller:     r.invoker,
		Renderer:   r.renderer,
		Perf:       r.perf,
		Tracker:    r.tracker,
		Transcript: r.cfg.Render.Transcript,
	}, r.log)
}

// close flushes provider statistics and prints the run report.
func (r *runContext) close(ctx context.Context, out func(string)) {
	r.progress.Close()
	r.invoker.FlushStats(context.WithoutCancel(ctx))
	r.invoker.Close()
	r.tracker.SampleMemory()

	stats := r.tracker.Stats()
	r.log.Info(ctx, "Run finished in %s: %d errors, %d retries", stats.TotalTime.Round(time.Millisecond), stats.ErrorsEncountered, stats.RetriesPerformed)
	if r.verbose {
		if report := r.tracker.Report(true); report != "" {
			out(report)
		}
	}
}

func writeArtifact(dir string, res pipeline.Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, res.VideoID+res.ArtifactExt)
	if err := os.WriteFile(path, res.Artifact, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
