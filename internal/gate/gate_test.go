package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewClampsPermits(t *testing.T) {
	tests := []struct {
		permits int
		want    int
	}{
		{-1, 1},
		{0, 1},
		{3, 3},
	}
	for _, tt := range tests {
		if got := New(tt.permits).Permits(); got != tt.want {
			t.Errorf("New(%d).Permits() = %d, want %d", tt.permits, got, tt.want)
		}
	}
}

func TestGateBoundsInFlight(t *testing.T) {
	g := New(2)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(ctx, func(context.Context) error {
				time.Sleep(20 * time.Millisecond)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := g.Peak(); got < 1 || got > 2 {
		t.Errorf("Peak() = %d, want at most 2", got)
	}
	if got := g.InFlight(); got != 0 {
		t.Errorf("InFlight() = %d, want 0", got)
	}
}

func TestGateReleasesOnError(t *testing.T) {
	g := New(1)
	boom := errors.New("boom")

	if err := g.Do(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Do() error = %v, want boom", err)
	}
	if got := g.InFlight(); got != 0 {
		t.Errorf("InFlight() = %d after error, want 0", got)
	}
}

func TestGateReleasesOnPanic(t *testing.T) {
	g := New(1)
	func() {
		defer func() { _ = recover() }()
		_ = g.Do(context.Background(), func(context.Context) error { panic("boom") })
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := g.Acquire(ctx); err != nil {
		t.Fatalf("Acquire() after panic error = %v", err)
	}
	g.Release()
}

func TestAcquireHonorsContext(t *testing.T) {
	g := New(1)
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer g.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := g.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want DeadlineExceeded", err)
	}
}
