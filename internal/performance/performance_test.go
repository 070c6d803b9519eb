package performance

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name           string
		hw             Hardware
		wantLLM        int
		wantLocal      int
		wantThreads    int
		wantMemLimitMB int
	}{
		{"small box", Hardware{CPUCount: 2, MemoryAvailableMB: 2048}, 2, 1, 1, 1638},
		{"mid box", Hardware{CPUCount: 8, MemoryAvailableMB: 8192}, 4, 2, 2, 6553},
		{"large box", Hardware{CPUCount: 32, MemoryAvailableMB: 32768}, 10, 3, 2, 26214},
		{"many cpus low memory", Hardware{CPUCount: 16, MemoryAvailableMB: 3000}, 2, 1, 2, 2400},
		{"unknown hardware", Hardware{}, 2, 1, 1, 3276},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.hw)
			if cfg.MaxConcurrentLLM != tt.wantLLM {
				t.Errorf("MaxConcurrentLLM = %d, want %d", cfg.MaxConcurrentLLM, tt.wantLLM)
			}
			if cfg.MaxConcurrentLocalInference != tt.wantLocal {
				t.Errorf("MaxConcurrentLocalInference = %d, want %d", cfg.MaxConcurrentLocalInference, tt.wantLocal)
			}
			if cfg.LocalInferenceThreads != tt.wantThreads {
				t.Errorf("LocalInferenceThreads = %d, want %d", cfg.LocalInferenceThreads, tt.wantThreads)
			}
			if cfg.MemoryLimitMB != tt.wantMemLimitMB {
				t.Errorf("MemoryLimitMB = %d, want %d", cfg.MemoryLimitMB, tt.wantMemLimitMB)
			}
			if cfg.MaxConcurrentLLM < 2 {
				t.Errorf("MaxConcurrentLLM = %d, want >= 2", cfg.MaxConcurrentLLM)
			}
			if !cfg.EnableParallelProcessing {
				t.Error("EnableParallelProcessing = false, want true")
			}
		})
	}
}

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name       string
		tasks      int
		sequential time.Duration
		wall       time.Duration
		want       float64
	}{
		{"perfect overlap", 4, 4 * time.Second, time.Second, 4},
		{"capped at task count", 2, 10 * time.Second, time.Second, 2},
		{"no overlap", 3, 3 * time.Second, 3 * time.Second, 1},
		{"zero wall", 3, time.Second, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Efficiency(tt.tasks, tt.sequential, tt.wall); got != tt.want {
				t.Errorf("Efficiency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackPhaseRecordsOnPanic(t *testing.T) {
	tr := NewTracker(nil)

	func() {
		defer func() { _ = recover() }()
		stop := tr.TrackPhase("summarize")
		defer stop()
		time.Sleep(5 * time.Millisecond)
		panic("boom")
	}()

	got := tr.Stats().PhaseTimes["summarize"]
	if got < 5*time.Millisecond {
		t.Errorf("PhaseTimes[summarize] = %v, want >= 5ms", got)
	}
}

func TestPhaseReturnsError(t *testing.T) {
	tr := NewTracker(nil)
	want := errors.New("failed")
	if err := tr.Phase("load", func() error { return want }); !errors.Is(err, want) {
		t.Fatalf("Phase() error = %v, want %v", err, want)
	}
	if _, ok := tr.Stats().PhaseTimes["load"]; !ok {
		t.Error("Phase() did not record phase time")
	}
}

func TestTrackerCountsConcurrently(t *testing.T) {
	tr := NewTracker(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.TrackError("llm_processing")
			tr.TrackRetry()
		}()
	}
	wg.Wait()
	tr.TrackError("consolidated_summary")

	stats := tr.Stats()
	if stats.ErrorsEncountered != 51 {
		t.Errorf("ErrorsEncountered = %d, want 51", stats.ErrorsEncountered)
	}
	if stats.RetriesPerformed != 50 {
		t.Errorf("RetriesPerformed = %d, want 50", stats.RetriesPerformed)
	}
	if got := tr.ErrorCounts()["llm_processing"]; got != 50 {
		t.Errorf("ErrorCounts()[llm_processing] = %d, want 50", got)
	}
}

func TestStatsConcurrency(t *testing.T) {
	tr := NewTracker(nil)
	tr.TrackConcurrency("hour_0", 4, 4*time.Second, time.Second)
	tr.TrackConcurrency("hour_1", 2, time.Second, time.Second)

	stats := tr.Stats()
	if stats.SegmentsProcessed != 6 {
		t.Errorf("SegmentsProcessed = %d, want 6", stats.SegmentsProcessed)
	}
	if stats.ConcurrencyEfficiency != 2.5 {
		t.Errorf("ConcurrencyEfficiency = %v, want 2.5", stats.ConcurrencyEfficiency)
	}
}

func TestSampleMemory(t *testing.T) {
	tr := NewTracker(nil)
	if mb := tr.SampleMemory(); mb <= 0 {
		t.Errorf("SampleMemory() = %v, want > 0", mb)
	}
	if tr.Stats().MemoryPeakMB < 0 {
		t.Error("MemoryPeakMB negative")
	}
}

func TestReport(t *testing.T) {
	tr := NewTracker(nil)
	tr.TrackPhase("summarize")()
	tr.TrackError("llm_processing")
	tr.TrackRetry()

	short := tr.Report(false)
	if !strings.Contains(short, "Total Time") {
		t.Errorf("Report(false) missing Total Time:\n%s", short)
	}
	if strings.Contains(short, "summarize") {
		t.Errorf("Report(false) contains phase breakdown:\n%s", short)
	}

	long := tr.Report(true)
	for _, want := range []string{"summarize", "llm_processing", "Retries Performed"} {
		if !strings.Contains(long, want) {
			t.Errorf("Report(true) missing %q:\n%s", want, long)
		}
	}
}

func TestReportSwallowsRenderFailure(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(logger.NewWithFormat("error", "text", &buf))
	tracker.TrackError("llm_processing")
	tracker.now = func() time.Time { panic("clock unavailable") }

	if got := tracker.Report(true); got != "" {
		t.Errorf("Report() = %q, want empty on failure", got)
	}
	if !strings.Contains(buf.String(), "Failed to render performance report") {
		t.Errorf("failure not logged: %q", buf.String())
	}
	if n := tracker.ErrorCounts()["llm_processing"]; n != 1 {
		t.Errorf("ErrorCounts() after failed report = %d, want 1", n)
	}
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	tr.TrackPhase("x")()
	tr.TrackError("x")
	tr.TrackRetry()
	if got := tr.Report(true); got != "" {
		t.Errorf("Report() on nil tracker = %q, want empty", got)
	}
}
