package llm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const usageFile = "usage.csv"

// usageLog appends "<RFC3339 timestamp>,<tokens>" rows to a CSV shared by
// every run using the same cache directory.
type usageLog struct {
	path string
	lock *flock.Flock
}

func newUsageLog(dir string) *usageLog {
	path := filepath.Join(dir, usageFile)
	return &usageLog{path: path, lock: flock.New(path + ".lock")}
}

func (u *usageLog) Append(ctx context.Context, at time.Time, tokens int64) error {
	if err := os.MkdirAll(filepath.Dir(u.path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	locked, err := u.lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", u.path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", u.path)
	}
	defer func() { _ = u.lock.Unlock() }()

	f, err := os.OpenFile(u.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", u.path, err)
	}
	if _, err := fmt.Fprintf(f, "%s,%d\n", at.Format(time.RFC3339), tokens); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", u.path, err)
	}
	return f.Close()
}
