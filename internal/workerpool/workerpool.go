// Package workerpool runs blocking inference calls on a small fixed set of
// goroutines. Callers hand work over through a bounded queue and receive the
// result on a per-request channel; nothing else is shared between the two
// sides.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nguyentantai21042004/caption-digest/internal/retry"
)

// ErrClosed is delivered for requests submitted after Close.
var ErrClosed = errors.New("workerpool: closed")

// Handler performs one blocking call.
type Handler func(ctx context.Context, prompt string) (string, error)

type request struct {
	ctx    context.Context
	prompt string
	done   chan retry.Result[string]
}

// Pool is a fixed-size set of workers fed by a bounded queue.
type Pool struct {
	handler Handler
	queue   chan request
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts workers goroutines draining a queue of queueSize pending requests.
func New(workers, queueSize int, h Handler) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}
	p := &Pool{
		handler: h,
		queue:   make(chan request, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues prompt and returns the channel its result will arrive on.
// The channel always receives exactly one value.
func (p *Pool) Submit(ctx context.Context, prompt string) <-chan retry.Result[string] {
	done := make(chan retry.Result[string], 1)

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		done <- retry.Result[string]{Err: ErrClosed}
		return done
	}

	select {
	case p.queue <- request{ctx: ctx, prompt: prompt, done: done}:
	case <-ctx.Done():
		done <- retry.Result[string]{Err: ctx.Err()}
	}
	return done
}

// Call submits prompt and waits for the answer.
func (p *Pool) Call(ctx context.Context, prompt string) (string, error) {
	return retry.Async(func(ctx context.Context) <-chan retry.Result[string] {
		return p.Submit(ctx, prompt)
	})(ctx)
}

// Close stops accepting work, lets queued requests finish and waits for the
// workers to exit.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for req := range p.queue {
		req.done <- p.run(req)
	}
}

func (p *Pool) run(req request) (res retry.Result[string]) {
	if err := req.ctx.Err(); err != nil {
		return retry.Result[string]{Err: err}
	}
	defer func() {
		if r := recover(); r != nil {
			res = retry.Result[string]{Err: fmt.Errorf("workerpool: handler panic: %v", r)}
		}
	}()
	out, err := p.handler(req.ctx, req.prompt)
	return retry.Result[string]{Value: out, Err: err}
}
