package playlist

import (
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/internal/pipeline"
	"github.com/nguyentantai21042004/caption-digest/internal/progress"
)

type implOrchestrator struct {
	processor pipeline.Processor
	baseDir   string
	progress  progress.Reporter
	logger    logger.Logger
}

// New creates an Orchestrator writing playlist folders under baseDir.
func New(proc pipeline.Processor, baseDir string, rep progress.Reporter, log logger.Logger) Orchestrator {
	if rep == nil {
		rep = progress.Nop{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &implOrchestrator{
		processor: proc,
		baseDir:   baseDir,
		progress:  rep,
		logger:    log,
	}
}
