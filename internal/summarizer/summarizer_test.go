package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/gate"
	"github.com/nguyentantai21042004/caption-digest/internal/performance"
	"github.com/nguyentantai21042004/caption-digest/internal/retry"
	"github.com/nguyentantai21042004/caption-digest/internal/sectionizer"
)

// fakeCaller answers each prompt with the first caption it contains, after a
// fixed delay (or the per-caption one in delays), holding a gate permit for
// the duration of the call.
type fakeCaller struct {
	gate      *gate.Gate
	delay     time.Duration
	delays    map[string]time.Duration
	fail      func(prompt string) bool
	mu        sync.Mutex
	prompts   []string
	finished  []string
	callCount atomic.Int32
}

func (f *fakeCaller) Call(ctx context.Context, prompt string) (string, error) {
	f.callCount.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	var out string
	err := f.gate.Do(ctx, func(ctx context.Context) error {
		key := strings.Fields(strings.Split(prompt, "\n")[1])[0]
		delay := f.delay
		if d, ok := f.delays[key]; ok {
			delay = d
		}
		time.Sleep(delay)
		if f.fail != nil && f.fail(prompt) {
			return errors.New("model unavailable")
		}
		out = "summary: " + key
		f.mu.Lock()
		f.finished = append(f.finished, key)
		f.mu.Unlock()
		return nil
	})
	return out, err
}

func newFake(permits int, delay time.Duration) *fakeCaller {
	return &fakeCaller{gate: gate.New(permits), delay: delay}
}

func hourOf(texts ...string) sectionizer.Hour {
	hour := make(sectionizer.Hour, len(texts))
	for i, t := range texts {
		if t != "" {
			hour[i] = sectionizer.Bucket{t, "tail"}
		}
	}
	return hour
}

func TestSummarizeBucketsBoundedAndOrdered(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		caller := newFake(2, 15*time.Millisecond)
		s := New(caller, Options{Parallel: parallel}, nil)

		got := s.SummarizeBuckets(context.Background(), hourOf("a", "b", "c", "d", "e"))
		want := []string{"summary: a", "summary: b", "summary: c", "summary: d", "summary: e"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("parallel=%v: SummarizeBuckets()[%d] = %q, want %q", parallel, i, got[i], want[i])
			}
		}
		if peak := caller.gate.Peak(); peak > 2 {
			t.Errorf("parallel=%v: peak in-flight = %d, want <= 2", parallel, peak)
		}
		if !parallel && caller.gate.Peak() != 1 {
			t.Errorf("sequential peak in-flight = %d, want 1", caller.gate.Peak())
		}
	}
}

func TestSummarizeBucketsKeepsOrderUnderReversedCompletion(t *testing.T) {
	caller := newFake(5, 0)
	caller.delays = map[string]time.Duration{
		"a": 120 * time.Millisecond,
		"b": 90 * time.Millisecond,
		"c": 60 * time.Millisecond,
		"d": 0,
		"e": 30 * time.Millisecond,
	}
	s := New(caller, Options{Parallel: true}, nil)

	got := s.SummarizeBuckets(context.Background(), hourOf("a", "b", "c", "d", "e"))

	want := []string{"summary: a", "summary: b", "summary: c", "summary: d", "summary: e"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("SummarizeBuckets() = %v, want %v", got, want)
	}
	caller.mu.Lock()
	finished := strings.Join(caller.finished, "")
	caller.mu.Unlock()
	if strings.Index(finished, "d") > strings.Index(finished, "a") {
		t.Errorf("completion order = %q, want bucket 3 to finish before bucket 0", finished)
	}
}

func TestSummarizeBucketsEmptyAndFailed(t *testing.T) {
	caller := newFake(4, 0)
	caller.fail = func(p string) bool { return strings.Contains(p, "bad") }
	tracker := performance.NewTracker(nil)
	s := New(caller, Options{Parallel: true, Tracker: tracker}, nil)

	got := s.SummarizeBuckets(context.Background(), hourOf("a", "", "bad", "d"))
	want := []string{"summary: a", "", "", "summary: d"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SummarizeBuckets()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if n := caller.callCount.Load(); n != 3 {
		t.Errorf("calls = %d, want 3 (empty bucket skipped)", n)
	}
	if n := tracker.ErrorCounts()[ErrCategoryLLM]; n != 1 {
		t.Errorf("llm_processing errors = %d, want 1", n)
	}
}

func TestSegmentPrompt(t *testing.T) {
	got := SegmentPrompt([]string{"hello", "world"})
	want := "The following is a transcript of a section of a video.\nhello world\n Based on the previous transcript, describe what is happening in this section"
	if got != want {
		t.Errorf("SegmentPrompt() = %q, want %q", got, want)
	}
}

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name      string
		parts     []string
		fail      bool
		want      string
		wantCalls int32
		wantErrs  int
	}{
		{"single bucket", []string{"only"}, false, "only", 0, 0},
		{"all empty", []string{"", "  "}, false, "", 0, 0},
		{"merged", []string{"x one", "", "y two"}, false, "summary: x", 1, 0},
		{"fallback to first non-empty", []string{"", "first", "second"}, true, "first", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := newFake(1, 0)
			caller.fail = func(string) bool { return tt.fail }
			tracker := performance.NewTracker(nil)
			s := New(caller, Options{Tracker: tracker}, nil)

			got := s.Consolidate(context.Background(), tt.parts)
			if got.Overall != tt.want {
				t.Errorf("Overall = %q, want %q", got.Overall, tt.want)
			}
			if n := caller.callCount.Load(); n != tt.wantCalls {
				t.Errorf("calls = %d, want %d", n, tt.wantCalls)
			}
			if n := tracker.ErrorCounts()[ErrCategoryConsolidation]; n != tt.wantErrs {
				t.Errorf("consolidation errors = %d, want %d", n, tt.wantErrs)
			}
			if len(tt.parts) == 1 {
				if len(got.Parts) != 0 {
					t.Errorf("Parts = %v, want empty for a single bucket", got.Parts)
				}
			} else if len(got.Parts) != len(tt.parts) {
				t.Errorf("len(Parts) = %d, want %d", len(got.Parts), len(tt.parts))
			}
		})
	}
}

func TestConsolidationPromptSkipsEmpty(t *testing.T) {
	caller := newFake(1, 0)
	s := New(caller, Options{}, nil)
	s.Consolidate(context.Background(), []string{"alpha", "", "beta"})

	want := "The following is a set of summaries of sections of a video.\nalpha\nbeta\nTake those summaries of individual sections and distill it into a consolidated summary of the entire video."
	if len(caller.prompts) != 1 || caller.prompts[0] != want {
		t.Errorf("prompts = %q, want [%q]", caller.prompts, want)
	}
}

type retryingCaller struct {
	m     *retry.Manager
	calls atomic.Int32
}

func (r *retryingCaller) Call(ctx context.Context, _ string) (string, error) {
	return retry.Do(ctx, r.m, retry.Sync(func(context.Context) (string, error) {
		r.calls.Add(1)
		return "", errors.New("always down")
	}))
}

func TestRetryExhaustionFallsBack(t *testing.T) {
	tracker := performance.NewTracker(nil)
	caller := &retryingCaller{m: retry.New(2, time.Millisecond, retry.WithOnRetry(func(int, time.Duration, error) {
		tracker.TrackRetry()
	}))}
	s := New(caller, Options{Parallel: true, Tracker: tracker}, nil)

	got := s.SummarizeHours(context.Background(), []sectionizer.Hour{hourOf("a", "b")})
	if len(got) != 1 {
		t.Fatalf("len(SummarizeHours()) = %d, want 1", len(got))
	}
	if got[0].Overall != "" || got[0].Parts[0] != "" || got[0].Parts[1] != "" {
		t.Errorf("SummarizeHours() = %+v, want empty summaries", got[0])
	}
	if n := caller.calls.Load(); n != 6 {
		t.Errorf("attempts = %d, want 6 (2 buckets x 3 attempts)", n)
	}
	stats := tracker.Stats()
	if stats.RetriesPerformed != 4 {
		t.Errorf("RetriesPerformed = %d, want 4", stats.RetriesPerformed)
	}
	if stats.ErrorsEncountered != 2 {
		t.Errorf("ErrorsEncountered = %d, want 2", stats.ErrorsEncountered)
	}
}

type countingReporter struct {
	steps atomic.Int32
}

func (c *countingReporter) Phase(int, string, int, bool) {}
func (c *countingReporter) SubphaseStep()                { c.steps.Add(1) }
func (c *countingReporter) SubphaseStepTo(int)           {}
func (c *countingReporter) SetSubsteps(int)              {}
func (c *countingReporter) Close()                       {}

func TestSummarizeHours(t *testing.T) {
	hours := []sectionizer.Hour{
		hourOf("a", "b", "", "d"),
		hourOf("z"),
	}
	rep := &countingReporter{}
	caller := newFake(3, 2*time.Millisecond)
	s := New(caller, Options{Parallel: true, Progress: rep}, nil)

	got := s.SummarizeHours(context.Background(), hours)
	if len(got) != 2 {
		t.Fatalf("len(SummarizeHours()) = %d, want 2", len(got))
	}
	if got[0].Overall != "summary: summary:" {
		t.Errorf("hour 0 Overall = %q, want consolidated summary", got[0].Overall)
	}
	if got[1].Overall != "summary: z" || len(got[1].Parts) != 0 {
		t.Errorf("hour 1 = %+v, want single-bucket passthrough", got[1])
	}
	if want := int32(LLMRuns(hours)); rep.steps.Load() != want {
		t.Errorf("progress steps = %d, want %d", rep.steps.Load(), want)
	}
	if LLMRuns(hours) != 7 {
		t.Errorf("LLMRuns() = %d, want 7", LLMRuns(hours))
	}
}
