package executor

import (
	"context"
	"io"
)

// Command describes one external process invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Env   []string
	Stdin io.Reader
}

// Executor runs external commands and returns their stdout.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	Run(ctx context.Context, cmd Command) (string, error)
	LookPath(name string) (string, error)
}
