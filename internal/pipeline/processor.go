package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/progress"
	"github.com/nguyentantai21042004/caption-digest/internal/render"
	"github.com/nguyentantai21042004/caption-digest/internal/sectionizer"
	"github.com/nguyentantai21042004/caption-digest/internal/summarizer"
)

// Phases reported by Process.
const (
	PhaseCount = 3

	phaseFetch     = "Loading captions"
	phaseSummarize = "Summarizing"
	phaseRender    = "Rendering"
)

// Process loads captions for ref, summarizes them hour by hour and renders
// the result. Only setup failures are returned; failed LLM calls degrade to
// empty summaries.
func (p *implProcessor) Process(ctx context.Context, ref string, rep progress.Reporter) (Result, error) {
	if rep == nil {
		rep = progress.Nop{}
	}
	startTime := time.Now()

	p.logger.Info(ctx, "Starting caption digest: %s", ref)

	rep.Phase(1, phaseFetch, 1, false)
	var video Video
	err := p.tracker.Phase("caption_fetch", func() error {
		var err error
		video, err = p.source.Fetch(ctx, ref)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("fetch captions: %w", err)
	}
	rep.SubphaseStep()
	p.logger.Info(ctx, "Loaded %d captions for %q (%s)", len(video.Segments), video.Title, render.FormatTimestamp(video.Duration))

	hours := sectionizer.Sectionize(video.Segments, video.Duration)
	rep.Phase(2, phaseSummarize, summarizer.LLMRuns(hours), false)

	s := summarizer.New(p.caller, summarizer.Options{
		Parallel: p.perf.EnableParallelProcessing,
		Tracker:  p.tracker,
		Progress: rep,
	}, p.logger)

	var summaries []summarizer.HourSummary
	_ = p.tracker.Phase("summarization", func() error {
		summaries = s.SummarizeHours(ctx, hours)
		return nil
	})
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("summarize: %w", err)
	}

	rep.Phase(3, phaseRender, 1, false)
	doc := render.Document{
		Title:       video.Title,
		URL:         video.URL,
		Extractor:   video.Extractor,
		Hours:       summaries,
		GeneratedAt: time.Now(),
	}
	if p.transcript {
		doc.Transcript = video.Segments
	}

	var artifact []byte
	err = p.tracker.Phase("render", func() error {
		var err error
		artifact, err = p.renderer.Render(doc)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}
	rep.SubphaseStep()

	p.logger.Info(ctx, "Digest of %s completed in %s (%d hours)", video.ID, time.Since(startTime).Round(time.Millisecond), len(summaries))

	return Result{
		VideoID:     video.ID,
		Title:       video.Title,
		Hours:       summaries,
		Segments:    video.Segments,
		Artifact:    artifact,
		ArtifactExt: p.renderer.Ext(),
	}, nil
}
