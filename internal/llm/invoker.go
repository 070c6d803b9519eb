package llm

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/gate"
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/internal/retry"
	"github.com/nguyentantai21042004/caption-digest/internal/workerpool"
)

// InvokerOptions tunes how an Invoker drives its provider.
type InvokerOptions struct {
	// RequestTimeout bounds each attempt; zero disables it.
	RequestTimeout time.Duration
	// Workers sizes the pool used for providers without CallAsync.
	Workers int
	// QueueSize bounds pending pool requests.
	QueueSize int
}

// Invoker issues prompts through a shared gate and retry policy. Providers
// that can run calls asynchronously are used directly; the rest are handed to
// a worker pool.
type Invoker struct {
	provider Provider
	caps     Capabilities
	gate     *gate.Gate
	retry    *retry.Manager
	timeout  time.Duration
	pool     *workerpool.Pool
	logger   logger.Logger
}

// NewInvoker wires p to g and r. Close must be called to stop the pool.
func NewInvoker(p Provider, g *gate.Gate, r *retry.Manager, opts InvokerOptions, log logger.Logger) *Invoker {
	if log == nil {
		log = logger.Discard()
	}
	inv := &Invoker{
		provider: p,
		caps:     p.Capabilities(),
		gate:     g,
		retry:    r,
		timeout:  opts.RequestTimeout,
		logger:   log,
	}
	if inv.caps.CallAsync == nil {
		inv.pool = workerpool.New(opts.Workers, opts.QueueSize, p.Call)
	}
	return inv
}

// Call runs prompt with retries. Each attempt holds one gate permit for its
// duration; backoff waits hold none.
func (i *Invoker) Call(ctx context.Context, prompt string) (string, error) {
	return retry.Do(ctx, i.retry, retry.Sync(func(ctx context.Context) (string, error) {
		var out string
		err := i.gate.Do(ctx, func(ctx context.Context) error {
			if i.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, i.timeout)
				defer cancel()
			}
			var err error
			out, err = i.once(ctx, prompt)
			return err
		})
		return out, err
	}))
}

func (i *Invoker) once(ctx context.Context, prompt string) (string, error) {
	if i.caps.CallAsync != nil {
		return retry.Async(func(ctx context.Context) <-chan retry.Result[string] {
			return i.caps.CallAsync(ctx, prompt)
		})(ctx)
	}
	return i.pool.Call(ctx, prompt)
}

// FlushStats lets the provider persist its usage statistics, if it keeps any.
func (i *Invoker) FlushStats(ctx context.Context) {
	if i.caps.FlushStats == nil {
		return
	}
	if err := i.caps.FlushStats(ctx); err != nil {
		i.logger.Warn(ctx, "Failed to flush %s stats: %v", i.provider.Name(), err)
	}
}

// Close stops the worker pool, if one was started.
func (i *Invoker) Close() {
	if i.pool != nil {
		i.pool.Close()
	}
}
