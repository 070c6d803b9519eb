package performance

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

// Stats is the end-of-run snapshot of a Tracker.
type Stats struct {
	TotalTime             time.Duration
	PhaseTimes            map[string]time.Duration
	ConcurrencyEfficiency float64
	SegmentsProcessed     int
	ErrorsEncountered     int
	RetriesPerformed      int
	MemoryPeakMB          int
}

type concurrencySample struct {
	phase      string
	tasks      int
	efficiency float64
}

// Tracker accumulates timings and failure counts for one run. It is safe for
// concurrent use.
type Tracker struct {
	log logger.Logger
	now func() time.Time

	mu          sync.Mutex
	start       time.Time
	phaseTimes  map[string]time.Duration
	phaseOrder  []string
	concurrency []concurrencySample
	errors      map[string]int
	retries     int
	memPeakMB   float64
}

// NewTracker starts the run clock.
func NewTracker(log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Discard()
	}
	t := &Tracker{
		log:        log,
		now:        time.Now,
		phaseTimes: make(map[string]time.Duration),
		errors:     make(map[string]int),
	}
	t.start = t.now()
	return t
}

// TrackPhase starts timing name and returns the func that stops it. Use it
// with defer so the time is recorded however the phase exits.
func (t *Tracker) TrackPhase(name string) func() {
	if t == nil {
		return func() {}
	}
	started := t.now()
	var once sync.Once
	return func() {
		once.Do(func() {
			elapsed := t.now().Sub(started)
			t.mu.Lock()
			if _, seen := t.phaseTimes[name]; !seen {
				t.phaseOrder = append(t.phaseOrder, name)
			}
			t.phaseTimes[name] += elapsed
			t.mu.Unlock()
		})
	}
}

// Phase runs fn as the named phase.
func (t *Tracker) Phase(name string, fn func() error) error {
	stop := t.TrackPhase(name)
	defer stop()
	return fn()
}

// SampleMemory records the current heap footprint and returns it in MB.
// The figure is the Go runtime's view, not the process RSS.
func (t *Tracker) SampleMemory() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	mb := float64(ms.Sys) / 1024 / 1024
	if t == nil {
		return mb
	}
	t.mu.Lock()
	if mb > t.memPeakMB {
		t.memPeakMB = mb
	}
	t.mu.Unlock()
	return mb
}

// TrackError counts one failure in category.
func (t *Tracker) TrackError(category string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.errors[category]++
	t.mu.Unlock()
}

// TrackRetry counts one retry attempt.
func (t *Tracker) TrackRetry() {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.retries++
	t.mu.Unlock()
}

// TrackConcurrency records how well tasks overlapped. Efficiency is
// sequential/wall, capped at tasks since that is the best possible speedup.
func (t *Tracker) TrackConcurrency(phase string, tasks int, sequential, wall time.Duration) float64 {
	eff := Efficiency(tasks, sequential, wall)
	if t == nil || tasks <= 0 {
		return eff
	}
	t.mu.Lock()
	t.concurrency = append(t.concurrency, concurrencySample{phase: phase, tasks: tasks, efficiency: eff})
	t.mu.Unlock()
	return eff
}

// Efficiency computes min(sequential/wall, tasks); 1 when wall is zero.
func Efficiency(tasks int, sequential, wall time.Duration) float64 {
	if wall <= 0 {
		return 1
	}
	eff := float64(sequential) / float64(wall)
	if tasks > 0 && eff > float64(tasks) {
		eff = float64(tasks)
	}
	return eff
}

// ErrorCounts returns a copy of the per-category failure counts.
func (t *Tracker) ErrorCounts() map[string]int {
	out := make(map[string]int)
	if t == nil {
		return out
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, v := range t.errors {
		out[k] = v
	}
	return out
}

// Stats returns a snapshot.
func (t *Tracker) Stats() Stats {
	if t == nil {
		return Stats{PhaseTimes: map[string]time.Duration{}}
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{
		TotalTime:        t.now().Sub(t.start),
		PhaseTimes:       make(map[string]time.Duration, len(t.phaseTimes)),
		RetriesPerformed: t.retries,
		MemoryPeakMB:     int(t.memPeakMB),
	}
	for k, v := range t.phaseTimes {
		stats.PhaseTimes[k] = v
	}
	for _, n := range t.errors {
		stats.ErrorsEncountered += n
	}
	if len(t.concurrency) > 0 {
		var sum float64
		for _, c := range t.concurrency {
			sum += c.efficiency
			stats.SegmentsProcessed += c.tasks
		}
		stats.ConcurrencyEfficiency = sum / float64(len(t.concurrency))
	}
	return stats
}

// Report renders the statistics as a table. Rendering problems are logged and
// yield an empty string.
func (t *Tracker) Report(verbose bool) (out string) {
	if t == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			t.log.Error(context.Background(), "Failed to render performance report: %v", r)
			out = ""
		}
	}()

	stats := t.Stats()
	t.mu.Lock()
	order := append([]string(nil), t.phaseOrder...)
	categories := make([]string, 0, len(t.errors))
	for k := range t.errors {
		categories = append(categories, k)
	}
	t.mu.Unlock()
	sort.Strings(categories)

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Performance Report")
	tw.AppendHeader(table.Row{"Metric", "Value"})
	tw.AppendRow(table.Row{"Total Time", formatSeconds(stats.TotalTime)})
	tw.AppendRow(table.Row{"Memory Peak", fmt.Sprintf("%dMB", stats.MemoryPeakMB)})
	tw.AppendRow(table.Row{"Segments Processed", stats.SegmentsProcessed})
	if stats.ConcurrencyEfficiency > 0 {
		tw.AppendRow(table.Row{"Concurrency Efficiency", fmt.Sprintf("%.1f%%", stats.ConcurrencyEfficiency*100)})
	}
	if stats.ErrorsEncountered > 0 || stats.RetriesPerformed > 0 {
		tw.AppendRow(table.Row{"Errors Encountered", stats.ErrorsEncountered})
		tw.AppendRow(table.Row{"Retries Performed", stats.RetriesPerformed})
	}

	if verbose {
		counts := t.ErrorCounts()
		for _, c := range categories {
			tw.AppendRow(table.Row{"  errors: " + c, counts[c]})
		}
		if len(order) > 0 {
			tw.AppendSeparator()
			for _, name := range order {
				d := stats.PhaseTimes[name]
				pct := 0.0
				if stats.TotalTime > 0 {
					pct = float64(d) / float64(stats.TotalTime) * 100
				}
				tw.AppendRow(table.Row{"  " + name, fmt.Sprintf("%s (%.1f%%)", formatSeconds(d), pct)})
			}
		}
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight},
	})
	return strings.TrimRight(tw.Render(), "\n")
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
