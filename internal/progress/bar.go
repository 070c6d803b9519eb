package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

// Bar draws one terminal progress bar per phase.
type Bar struct {
	w      io.Writer
	phases int

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar returns a Bar writing to w for a run of phases phases.
func NewBar(w io.Writer, phases int) *Bar {
	return &Bar{w: w, phases: phases}
}

func (b *Bar) Phase(index int, name string, substeps int, bytes bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finishLocked()

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionSetDescription(fmt.Sprintf("[%d/%d] %s", index, b.phases, name)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(b.w) }),
	}
	if bytes {
		opts = append(opts, progressbar.OptionShowBytes(true))
	}
	b.bar = progressbar.NewOptions(substeps, opts...)
}

func (b *Bar) SubphaseStep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

func (b *Bar) SubphaseStepTo(v int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		_ = b.bar.Set(v)
	}
}

func (b *Bar) SetSubsteps(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.ChangeMax(n)
	}
}

func (b *Bar) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.finishLocked()
}

func (b *Bar) finishLocked() {
	if b.bar != nil {
		_ = b.bar.Finish()
		b.bar = nil
	}
}

// Log reports phase transitions through a logger. It is used when stderr is
// not a terminal.
type Log struct {
	log    logger.Logger
	phases int

	mu      sync.Mutex
	name    string
	total   int
	current int
}

// NewLog returns a Log reporter.
func NewLog(log logger.Logger, phases int) *Log {
	return &Log{log: log, phases: phases}
}

func (l *Log) Phase(index int, name string, substeps int, _ bool) {
	l.mu.Lock()
	l.name, l.total, l.current = name, substeps, 0
	l.mu.Unlock()
	l.log.Info(context.Background(), "[%d/%d] %s (%d steps)", index, l.phases, name, substeps)
}

func (l *Log) SubphaseStep() {
	l.mu.Lock()
	l.current++
	cur, total, name := l.current, l.total, l.name
	l.mu.Unlock()
	l.log.Debug(context.Background(), "%s: %d/%d", name, cur, total)
}

func (l *Log) SubphaseStepTo(v int) {
	l.mu.Lock()
	l.current = v
	l.mu.Unlock()
}

func (l *Log) SetSubsteps(n int) {
	l.mu.Lock()
	l.total = n
	l.mu.Unlock()
}

func (l *Log) Close() {}

// Auto picks Bar when f is a terminal and Log otherwise.
func Auto(f *os.File, log logger.Logger, phases int) Reporter {
	if f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return NewBar(f, phases)
	}
	if log == nil {
		return Nop{}
	}
	return NewLog(log, phases)
}
