package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/pkg/executor"
)

const (
	defaultLocalBinary    = "llama-cli"
	defaultLocalMaxTokens = 512
)

// localProvider runs a llama.cpp style CLI once per prompt. It blocks for the
// whole generation, so it offers no async call and is driven through a
// worker pool.
type localProvider struct {
	exec    executor.Executor
	binary  string
	model   string
	threads int
	logger  logger.Logger
}

func newLocal(exec executor.Executor, binary, model string, threads int, log logger.Logger) *localProvider {
	if log == nil {
		log = logger.Discard()
	}
	if threads < 1 {
		threads = 1
	}
	return &localProvider{
		exec:    exec,
		binary:  binary,
		model:   model,
		threads: threads,
		logger:  log,
	}
}

func (l *localProvider) Name() string { return ProviderLocal }

func (l *localProvider) Capabilities() Capabilities { return Capabilities{} }

func (l *localProvider) Call(ctx context.Context, prompt string) (string, error) {
	args := []string{
		"-m", l.model,
		"-t", strconv.Itoa(l.threads),
		"-n", strconv.Itoa(defaultLocalMaxTokens),
		"--no-display-prompt",
		"-p", prompt,
	}
	l.logger.Debug(ctx, "Running %s with %d threads", l.binary, l.threads)

	out, err := l.exec.Run(ctx, executor.Command{Name: l.binary, Args: args})
	if err != nil {
		return "", fmt.Errorf("local inference: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("local inference: %w", ErrEmptyResponse)
	}
	return out, nil
}
