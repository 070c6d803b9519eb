package pipeline

import (
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/internal/performance"
	"github.com/nguyentantai21042004/caption-digest/internal/render"
	"github.com/nguyentantai21042004/caption-digest/internal/summarizer"
)

// Options wires a Processor to the run's shared collaborators.
type Options struct {
	Source   Source
	Caller   summarizer.Caller
	Renderer render.Renderer
	Perf     performance.Config
	Tracker  *performance.Tracker
	// Transcript appends the deduplicated caption text to the artifact.
	Transcript bool
}

type implProcessor struct {
	source     Source
	caller     summarizer.Caller
	renderer   render.Renderer
	perf       performance.Config
	tracker    *performance.Tracker
	transcript bool
	logger     logger.Logger
}

// New creates a new Processor instance
func New(opts Options, log logger.Logger) Processor {
	if log == nil {
		log = logger.Discard()
	}
	if opts.Source == nil {
		opts.Source = FileSource{}
	}
	if opts.Renderer == nil {
		opts.Renderer = render.Markdown{}
	}
	return &implProcessor{
		source:     opts.Source,
		caller:     opts.Caller,
		renderer:   opts.Renderer,
		perf:       opts.Perf,
		tracker:    opts.Tracker,
		transcript: opts.Transcript,
		logger:     log,
	}
}
