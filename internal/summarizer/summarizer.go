package summarizer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/sectionizer"
)

// Error categories reported to the tracker.
const (
	ErrCategorySegment       = "segment_processing"
	ErrCategoryLLM           = "llm_processing"
	ErrCategoryConsolidation = "consolidated_summary"
)

const (
	segmentPrompt       = "The following is a transcript of a section of a video.\n%s\n Based on the previous transcript, describe what is happening in this section"
	consolidationPrompt = "The following is a set of summaries of sections of a video.\n%s\nTake those summaries of individual sections and distill it into a consolidated summary of the entire video."
)

// SegmentPrompt builds the prompt for one bucket of captions.
func SegmentPrompt(texts []string) string {
	return fmt.Sprintf(segmentPrompt, strings.Join(texts, " "))
}

// ConsolidationPrompt builds the prompt that merges bucket summaries.
func ConsolidationPrompt(summaries []string) string {
	return fmt.Sprintf(consolidationPrompt, strings.Join(summaries, "\n"))
}

// LLMRuns is the number of progress steps SummarizeHours reports for hours:
// one per bucket plus one consolidation step per hour.
func LLMRuns(hours []sectionizer.Hour) int {
	n := len(hours)
	for _, h := range hours {
		n += len(h)
	}
	return n
}

func (s *implSummarizer) SummarizeHours(ctx context.Context, hours []sectionizer.Hour) []HourSummary {
	out := make([]HourSummary, 0, len(hours))
	for h, hour := range hours {
		if ctx.Err() != nil {
			s.logger.Warn(ctx, "Stopping before hour %d: %v", h, ctx.Err())
			break
		}
		s.logger.Info(ctx, "Summarizing hour %d (%d sections)", h, len(hour))

		var summary HourSummary
		_ = s.tracker.Phase(fmt.Sprintf("hour_%d", h), func() error {
			parts := s.SummarizeBuckets(ctx, hour)
			summary = s.Consolidate(ctx, parts)
			return nil
		})
		out = append(out, summary)
		s.tracker.SampleMemory()
	}
	return out
}

func (s *implSummarizer) SummarizeBuckets(ctx context.Context, hour sectionizer.Hour) []string {
	results := make([]string, len(hour))
	durations := make([]time.Duration, len(hour))
	start := time.Now()

	if s.parallel {
		var wg sync.WaitGroup
		for i, bucket := range hour {
			if len(bucket) == 0 {
				s.progress.SubphaseStep()
				continue
			}
			wg.Add(1)
			go func(i int, bucket sectionizer.Bucket) {
				defer wg.Done()
				defer s.progress.SubphaseStep()
				results[i], durations[i] = s.summarizeBucket(ctx, i, bucket)
			}(i, bucket)
		}
		wg.Wait()
	} else {
		for i, bucket := range hour {
			if len(bucket) > 0 {
				results[i], durations[i] = s.summarizeBucket(ctx, i, bucket)
			}
			s.progress.SubphaseStep()
		}
	}

	var sequential time.Duration
	tasks := 0
	for i, d := range durations {
		sequential += d
		if len(hour[i]) > 0 {
			tasks++
		}
	}
	if tasks > 0 {
		eff := s.tracker.TrackConcurrency("buckets", tasks, sequential, time.Since(start))
		s.logger.Debug(ctx, "Summarized %d sections, concurrency efficiency %.2f", tasks, eff)
	}
	return results
}

// summarizeBucket never fails: any error ends as an empty summary.
func (s *implSummarizer) summarizeBucket(ctx context.Context, i int, bucket sectionizer.Bucket) (summary string, elapsed time.Duration) {
	start := time.Now()
	defer func() {
		elapsed = time.Since(start)
		if r := recover(); r != nil {
			s.logger.Error(ctx, "Section %d panicked: %v", i, r)
			s.tracker.TrackError(ErrCategorySegment)
			summary = ""
		}
	}()

	out, err := s.caller.Call(ctx, SegmentPrompt(bucket))
	if err != nil {
		s.logger.Error(ctx, "Failed to summarize section %d: %v", i, err)
		s.tracker.TrackError(ErrCategoryLLM)
		return "", time.Since(start)
	}
	return out, time.Since(start)
}

func (s *implSummarizer) Consolidate(ctx context.Context, parts []string) HourSummary {
	defer s.progress.SubphaseStep()

	if len(parts) == 1 {
		return HourSummary{Overall: parts[0], Parts: []string{}}
	}

	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	summary := HourSummary{Parts: append([]string{}, parts...)}
	if len(nonEmpty) == 0 {
		return summary
	}

	out, err := s.caller.Call(ctx, ConsolidationPrompt(nonEmpty))
	if err != nil {
		s.logger.Error(ctx, "Failed to consolidate %d summaries, using the first one: %v", len(nonEmpty), err)
		s.tracker.TrackError(ErrCategoryConsolidation)
		summary.Overall = nonEmpty[0]
		return summary
	}
	summary.Overall = out
	return summary
}
