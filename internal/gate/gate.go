// Package gate bounds the number of outbound LLM calls in flight at once.
package gate

import (
	"context"
	"sync/atomic"
)

// Gate is a counting semaphore with in-flight bookkeeping.
type Gate struct {
	ch       chan struct{}
	inFlight atomic.Int64
	peak     atomic.Int64
}

// New creates a gate with the given number of permits. Values below 1 are
// raised to 1.
func New(permits int) *Gate {
	if permits < 1 {
		permits = 1
	}
	return &Gate{
		ch: make(chan struct{}, permits),
	}
}

// Acquire takes a permit, blocking until one is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.ch <- struct{}{}:
		n := g.inFlight.Add(1)
		for {
			p := g.peak.Load()
			if n <= p || g.peak.CompareAndSwap(p, n) {
				break
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit taken by Acquire.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	<-g.ch
}

// Do runs fn while holding a permit. The permit is released on every exit
// path, panics included.
func (g *Gate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(ctx)
}

// Permits returns the configured capacity.
func (g *Gate) Permits() int {
	return cap(g.ch)
}

// InFlight returns the number of permits currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Peak returns the highest number of permits held at the same time.
func (g *Gate) Peak() int {
	return int(g.peak.Load())
}
