package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGroqModel   = "llama-3.1-8b-instant"
	groqBaseURL        = "https://api.groq.com/openai/v1"
)

// openAIProvider talks to any OpenAI-compatible chat completions endpoint.
type openAIProvider struct {
	name   string
	client openai.Client
	model  string
	usage  *usageLog
	logger logger.Logger

	tokens atomic.Int64
}

func newOpenAI(name, apiKey, baseURL, model, cacheDir string, log logger.Logger) *openAIProvider {
	if log == nil {
		log = logger.Discard()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	p := &openAIProvider{
		name:   name,
		client: openai.NewClient(opts...),
		model:  model,
		logger: log,
	}
	if cacheDir != "" {
		p.usage = newUsageLog(cacheDir)
	}
	return p
}

func (p *openAIProvider) Name() string { return p.name }

func (p *openAIProvider) Capabilities() Capabilities {
	caps := Capabilities{CallAsync: async(p.Call)}
	if p.usage != nil {
		caps.FlushStats = p.flushStats
	}
	return caps
}

func (p *openAIProvider) Call(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: p.model,
	})
	if err != nil {
		return "", p.wrapError(err)
	}
	p.tokens.Add(resp.Usage.TotalTokens)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrEmptyResponse)
	}
	return content, nil
}

// Tokens returns the total tokens consumed since the last flush.
func (p *openAIProvider) Tokens() int64 {
	return p.tokens.Load()
}

func (p *openAIProvider) flushStats(ctx context.Context) error {
	tokens := p.tokens.Swap(0)
	if tokens == 0 {
		return nil
	}
	if err := p.usage.Append(ctx, time.Now(), tokens); err != nil {
		p.tokens.Add(tokens)
		return fmt.Errorf("flush %s usage: %w", p.name, err)
	}
	p.logger.Debug(ctx, "Recorded %d %s tokens", tokens, p.name)
	return nil
}

func (p *openAIProvider) wrapError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s request: %w", p.name, err)
	}
	statusErr := &StatusError{
		Provider:   p.name,
		StatusCode: apiErr.StatusCode,
		Body:       apiErr.Message,
		Err:        err,
	}
	if apiErr.Response != nil {
		statusErr.RetryAfter, _ = parseRetryAfter(apiErr.Response.Header.Get("Retry-After"))
	}
	return statusErr
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
