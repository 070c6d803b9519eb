package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/caption-digest/internal/sectionizer"
)

// HourSummary is the consolidated summary of one hour together with the
// per-bucket summaries it was built from.
type HourSummary struct {
	Overall string   `json:"overall"`
	Parts   []string `json:"parts"`
}

// Caller issues one prompt. llm.Invoker is the production implementation.
type Caller interface {
	Call(ctx context.Context, prompt string) (string, error)
}

// Summarizer turns sectionized captions into hour summaries.
type Summarizer interface {
	// SummarizeBuckets returns one summary per bucket, in bucket order. Empty
	// buckets and failed calls yield "".
	SummarizeBuckets(ctx context.Context, hour sectionizer.Hour) []string
	// Consolidate distills the bucket summaries of one hour.
	Consolidate(ctx context.Context, parts []string) HourSummary
	// SummarizeHours processes hours strictly one after another.
	SummarizeHours(ctx context.Context, hours []sectionizer.Hour) []HourSummary
}
