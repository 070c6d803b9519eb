package pipeline

import (
	"context"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/progress"
	"github.com/nguyentantai21042004/caption-digest/internal/summarizer"
)

// Video is what a caption source returns for one reference.
type Video struct {
	ID        string
	Title     string
	URL       string
	Extractor string
	// Duration in seconds. Zero means unknown; the last caption end is used.
	Duration int
	Segments []caption.Segment
}

// Source resolves a reference (a path, an id) into captions and metadata.
type Source interface {
	Fetch(ctx context.Context, ref string) (Video, error)
}

// Result is the outcome of summarizing one video.
type Result struct {
	VideoID  string
	Title    string
	Hours    []summarizer.HourSummary
	Segments []caption.Segment
	Artifact []byte
	// ArtifactExt is the extension the artifact should be saved with.
	ArtifactExt string
}

// Processor runs the single-video pipeline.
type Processor interface {
	Process(ctx context.Context, ref string, rep progress.Reporter) (Result, error)
}
