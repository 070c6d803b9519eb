package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExecute(t *testing.T) {
	out, err := New().Execute(context.Background(), "sh", "-c", "printf hello")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != "hello" {
		t.Errorf("Execute() = %q, want %q", out, "hello")
	}
}

func TestRunStdinAndDir(t *testing.T) {
	dir := t.TempDir()
	out, err := New().Run(context.Background(), Command{
		Name:  "sh",
		Args:  []string{"-c", "cat; pwd"},
		Dir:   dir,
		Stdin: strings.NewReader("prompt\n"),
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(out, "prompt\n") {
		t.Errorf("Run() = %q, want stdin echoed first", out)
	}
	if !strings.Contains(out, dir) {
		t.Errorf("Run() = %q, want working dir %q", out, dir)
	}
}

func TestRunFailure(t *testing.T) {
	_, err := New().Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", "echo broken >&2; exit 3"},
	})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", cmdErr.ExitCode)
	}
	if cmdErr.Stderr != "broken" {
		t.Errorf("Stderr = %q, want %q", cmdErr.Stderr, "broken")
	}
}

func TestRunContextCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New().Execute(ctx, "sleep", "5")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want deadline exceeded", err)
	}
}
