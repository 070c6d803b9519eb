package summarizer

import (
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/internal/performance"
	"github.com/nguyentantai21042004/caption-digest/internal/progress"
)

// Options controls how buckets are dispatched and where results are reported.
type Options struct {
	// Parallel dispatches every bucket of an hour at once; the caller's gate
	// bounds how many run.
	Parallel bool
	Tracker  *performance.Tracker
	Progress progress.Reporter
}

type implSummarizer struct {
	caller   Caller
	parallel bool
	tracker  *performance.Tracker
	progress progress.Reporter
	logger   logger.Logger
}

// New creates a Summarizer issuing prompts through caller.
func New(caller Caller, opts Options, log logger.Logger) Summarizer {
	if log == nil {
		log = logger.Discard()
	}
	if opts.Progress == nil {
		opts.Progress = progress.Nop{}
	}
	return &implSummarizer{
		caller:   caller,
		parallel: opts.Parallel,
		tracker:  opts.Tracker,
		progress: opts.Progress,
		logger:   log,
	}
}
