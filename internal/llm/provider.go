// Package llm provides the language-model backends used for summarization and
// the Invoker that issues calls through the run's gate and retry policy.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/internal/retry"
	"github.com/nguyentantai21042004/caption-digest/pkg/executor"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderLocal  = "local"
)

var (
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrNoAPIKey        = errors.New("no api key configured")
	ErrEmptyResponse   = errors.New("empty response from model")
)

// Provider is a text-completion backend.
type Provider interface {
	Name() string
	Call(ctx context.Context, prompt string) (string, error)
	Capabilities() Capabilities
}

// Capabilities lists the optional operations a provider supports. A nil field
// means the provider does not offer it.
type Capabilities struct {
	// CallAsync starts a call and returns the channel its result arrives on.
	CallAsync func(ctx context.Context, prompt string) <-chan retry.Result[string]
	// FlushStats persists provider usage statistics at the end of a run.
	FlushStats func(ctx context.Context) error
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKeys  []string

	LocalBinary string
	LocalModel  string
	Threads     int

	// CacheDir receives usage statistics for providers that keep them.
	CacheDir string
}

// New builds the provider named by cfg.Provider.
func New(cfg Config, log logger.Logger) (Provider, error) {
	if log == nil {
		log = logger.Discard()
	}
	keys := nonEmpty(cfg.APIKeys)

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		if len(keys) == 0 {
			return nil, fmt.Errorf("%s: %w", ProviderGemini, ErrNoAPIKey)
		}
		return newGemini(keys, cfg.Model, log), nil
	case ProviderOpenAI:
		if len(keys) == 0 {
			return nil, fmt.Errorf("%s: %w", ProviderOpenAI, ErrNoAPIKey)
		}
		return newOpenAI(ProviderOpenAI, keys[0], cfg.BaseURL, firstNonEmpty(cfg.Model, defaultOpenAIModel), cfg.CacheDir, log), nil
	case ProviderGroq:
		if len(keys) == 0 {
			return nil, fmt.Errorf("%s: %w", ProviderGroq, ErrNoAPIKey)
		}
		return newOpenAI(ProviderGroq, keys[0], firstNonEmpty(cfg.BaseURL, groqBaseURL), firstNonEmpty(cfg.Model, defaultGroqModel), cfg.CacheDir, log), nil
	case ProviderLocal:
		if cfg.LocalModel == "" {
			return nil, fmt.Errorf("%s: model path is required", ProviderLocal)
		}
		if _, err := os.Stat(cfg.LocalModel); err != nil {
			return nil, fmt.Errorf("%s: model: %w", ProviderLocal, err)
		}
		ex := executor.New()
		bin := firstNonEmpty(cfg.LocalBinary, defaultLocalBinary)
		if _, err := ex.LookPath(bin); err != nil {
			return nil, fmt.Errorf("%s: %w", ProviderLocal, err)
		}
		return newLocal(ex, bin, cfg.LocalModel, cfg.Threads, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// async runs a blocking call on its own goroutine.
func async(call func(ctx context.Context, prompt string) (string, error)) func(ctx context.Context, prompt string) <-chan retry.Result[string] {
	return func(ctx context.Context, prompt string) <-chan retry.Result[string] {
		done := make(chan retry.Result[string], 1)
		go func() {
			out, err := call(ctx, prompt)
			done <- retry.Result[string]{Value: out, Err: err}
		}()
		return done
	}
}
