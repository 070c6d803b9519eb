package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiProvider struct {
	apiKeys []string
	model   string
	logger  logger.Logger

	mu         sync.Mutex
	currentKey int
	clients    map[string]*genai.Client
}

func newGemini(apiKeys []string, model string, log logger.Logger) *geminiProvider {
	if log == nil {
		log = logger.Discard()
	}
	return &geminiProvider{
		apiKeys: apiKeys,
		model:   firstNonEmpty(model, defaultGeminiModel),
		logger:  log,
		clients: make(map[string]*genai.Client),
	}
}

func (g *geminiProvider) Name() string { return ProviderGemini }

func (g *geminiProvider) Capabilities() Capabilities {
	return Capabilities{CallAsync: async(g.Call)}
}

// Call sends prompt to Gemini. A rate-limited key is rotated out and the next
// one tried; when every key is limited the last error is returned.
func (g *geminiProvider) Call(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for range g.apiKeys {
		idx, client, err := g.client(ctx)
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			g.rotateKey(idx)
			continue
		}

		result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err != nil {
			if isRateLimited(err) {
				g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = &StatusError{Provider: ProviderGemini, StatusCode: http.StatusTooManyRequests, Err: err}
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if text := responseText(result); text != "" {
			return text, nil
		}
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *geminiProvider) client(ctx context.Context) (int, *genai.Client, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.currentKey
	key := g.apiKeys[idx]
	if c, ok := g.clients[key]; ok {
		return idx, c, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return idx, nil, err
	}
	g.clients[key] = c
	return idx, c, nil
}

// rotateKey advances past idx unless another caller already did.
func (g *geminiProvider) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
