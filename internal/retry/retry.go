// Package retry runs an operation with exponential backoff between attempts.
//
// An operation is either a plain call (Sync) or an awaitable call that hands
// back a result channel (Async). Both are turned into an Attempt so Do does not
// care which kind it was given.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second

	// delays stop doubling past this shift to avoid overflow
	maxShift = 30
)

// ErrNoResult is returned when an async call closes its channel without a value.
var ErrNoResult = errors.New("retry: async call produced no result")

// Result is the value delivered by an awaitable call.
type Result[T any] struct {
	Value T
	Err   error
}

// Attempt is one try of an operation.
type Attempt[T any] func(ctx context.Context) (T, error)

// Sync wraps a plain blocking call.
func Sync[T any](fn func(ctx context.Context) (T, error)) Attempt[T] {
	return fn
}

// Async wraps a call that returns immediately with a channel that later
// delivers the result.
func Async[T any](fn func(ctx context.Context) <-chan Result[T]) Attempt[T] {
	return func(ctx context.Context) (T, error) {
		var zero T
		select {
		case res, ok := <-fn(ctx):
			if !ok {
				return zero, ErrNoResult
			}
			return res.Value, res.Err
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// ExhaustedError carries the last failure once every attempt has failed.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Manager holds the backoff policy.
type Manager struct {
	maxRetries int
	baseDelay  time.Duration
	onRetry    func(attempt int, delay time.Duration, err error)
	minDelay   func(err error) time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

// Option customizes a Manager.
type Option func(*Manager)

// WithOnRetry registers a hook called before each retry wait. attempt is the
// 1-indexed retry number.
func WithOnRetry(fn func(attempt int, delay time.Duration, err error)) Option {
	return func(m *Manager) {
		m.onRetry = fn
	}
}

// WithMinDelay lets the failed attempt's error stretch the next wait, e.g. to
// honor a server's Retry-After. The wait never drops below the backoff.
func WithMinDelay(fn func(err error) time.Duration) Option {
	return func(m *Manager) {
		m.minDelay = fn
	}
}

// WithSleeper overrides how backoff waits are performed (useful for tests).
func WithSleeper(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Manager) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

// New builds a Manager allowing maxRetries retries after the first attempt.
func New(maxRetries int, baseDelay time.Duration, opts ...Option) *Manager {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay < 0 {
		baseDelay = 0
	}
	m := &Manager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Attempts returns the total number of tries, first attempt included.
func (m *Manager) Attempts() int {
	return m.maxRetries + 1
}

// Delay returns the wait before retry attempt i (1-indexed):
// baseDelay * 2^(i-1).
func (m *Manager) Delay(i int) time.Duration {
	if i < 1 {
		return 0
	}
	shift := i - 1
	if shift > maxShift {
		shift = maxShift
	}
	return m.baseDelay << shift
}

// Do runs attempt until it succeeds or the policy is exhausted. On exhaustion
// the last error is returned inside an ExhaustedError; Do never swallows it.
func Do[T any](ctx context.Context, m *Manager, attempt Attempt[T]) (T, error) {
	var (
		zero    T
		lastErr error
	)
	total := m.Attempts()

	for i := 0; i < total; i++ {
		if i > 0 {
			delay := m.Delay(i)
			if m.minDelay != nil {
				delay = max(delay, m.minDelay(lastErr))
			}
			if m.onRetry != nil {
				m.onRetry(i, delay, lastErr)
			}
			if err := m.sleep(ctx, delay); err != nil {
				return zero, fmt.Errorf("retry aborted after %d attempts: %w", i, errors.Join(err, lastErr))
			}
		}

		value, err := attempt(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, &ExhaustedError{Attempts: i + 1, Err: lastErr}
		}
	}

	return zero, &ExhaustedError{Attempts: total, Err: lastErr}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
