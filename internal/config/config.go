package config

import (
	"fmt"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/llm"
	"github.com/nguyentantai21042004/caption-digest/internal/performance"
	"github.com/nguyentantai21042004/caption-digest/internal/render"
)

type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Performance PerformanceConfig `yaml:"performance"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Render      RenderConfig      `yaml:"render"`
	Transcribe  TranscribeConfig  `yaml:"transcribe"`
	Sponsor     SponsorConfig     `yaml:"sponsorblock"`
}

type LLMConfig struct {
	Provider string   `yaml:"provider"`
	Model    string   `yaml:"model"`
	BaseURL  string   `yaml:"base_url"`
	APIKeys  []string `yaml:"api_keys"`
	// APIKeyEnv names the environment variable holding comma separated keys.
	APIKeyEnv   string `yaml:"api_key_env"`
	LocalBinary string `yaml:"local_binary"`
	LocalModel  string `yaml:"local_model"`
}

// PerformanceConfig holds explicit overrides. Zero values keep the
// hardware-derived defaults.
type PerformanceConfig struct {
	MaxConcurrentLLM         int           `yaml:"max_concurrent_llm"`
	RetryMaxAttempts         *int          `yaml:"retry_max_attempts"`
	RetryBaseDelay           time.Duration `yaml:"retry_base_delay"`
	EnableParallelProcessing *bool         `yaml:"enable_parallel_processing"`
	RequestTimeout           time.Duration `yaml:"request_timeout"`
	LocalInferenceThreads    int           `yaml:"local_inference_threads"`
	// MaxConcurrentVideos bounds how many caption files watch mode handles at once.
	MaxConcurrentVideos int `yaml:"max_concurrent_videos"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Watch  string `yaml:"watch"`
	Cache  string `yaml:"cache"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TranscribeConfig enables whisper.cpp transcription of audio and video
// inputs. It is off while ModelPath is empty.
type TranscribeConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

// Enabled reports whether media inputs can be transcribed.
func (t TranscribeConfig) Enabled() bool {
	return t.ModelPath != ""
}

// SponsorConfig lists the SponsorBlock categories whose captions are dropped
// from YouTube videos. Empty disables the lookup.
type SponsorConfig struct {
	Categories []string      `yaml:"categories"`
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type RenderConfig struct {
	Format     string `yaml:"format"`
	Transcript bool   `yaml:"transcript"`
}

// Default returns a validated configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.Validate()
	return cfg
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case "":
		c.LLM.Provider = llm.ProviderGemini
	case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderGroq, llm.ProviderLocal:
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	if c.LLM.Provider == llm.ProviderLocal && c.LLM.LocalModel == "" {
		return fmt.Errorf("llm.local_model is required for the local provider")
	}

	p := c.Performance
	if p.MaxConcurrentLLM < 0 || p.LocalInferenceThreads < 0 || p.MaxConcurrentVideos < 0 {
		return fmt.Errorf("performance limits must not be negative")
	}
	if p.RetryMaxAttempts != nil && *p.RetryMaxAttempts < 0 {
		return fmt.Errorf("performance.retry_max_attempts must not be negative")
	}
	if p.RetryBaseDelay < 0 || p.RequestTimeout < 0 {
		return fmt.Errorf("performance durations must not be negative")
	}
	if c.Performance.MaxConcurrentVideos == 0 {
		c.Performance.MaxConcurrentVideos = 1
	}

	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Watch == "" {
		c.Paths.Watch = "data/input"
	}
	if c.Paths.Cache == "" {
		c.Paths.Cache = "data/cache"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Transcribe.Enabled() && c.Transcribe.BinaryPath == "" {
		c.Transcribe.BinaryPath = "whisper-cli"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	if err := c.Sponsor.validate(); err != nil {
		return err
	}

	c.Render.Format = strings.ToLower(c.Render.Format)
	switch c.Render.Format {
	case "":
		c.Render.Format = render.FormatMarkdown
	case render.FormatMarkdown, render.FormatDocx:
	default:
		return fmt.Errorf("render.format %q is not supported", c.Render.Format)
	}

	return nil
}

func (s *SponsorConfig) validate() error {
	seen := make(map[string]bool, len(s.Categories))
	cats := s.Categories[:0]
	for _, c := range s.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if !slices.Contains(caption.SponsorCategories, c) {
			return fmt.Errorf("sponsorblock category %q is not supported", c)
		}
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	s.Categories = cats
	if s.Timeout < 0 {
		return fmt.Errorf("sponsorblock.timeout must not be negative")
	}
	return nil
}

// Client builds the SponsorBlock client for this section.
func (s SponsorConfig) Client() *caption.SponsorBlock {
	opts := []caption.SponsorOption{caption.WithSponsorBaseURL(s.BaseURL)}
	if s.Timeout > 0 {
		opts = append(opts, caption.WithSponsorHTTPClient(&http.Client{Timeout: s.Timeout}))
	}
	return caption.NewSponsorBlock(s.Categories, opts...)
}

// ApplyTo layers the explicit overrides on top of perf.
func (p PerformanceConfig) ApplyTo(perf performance.Config) performance.Config {
	if p.MaxConcurrentLLM > 0 {
		perf.MaxConcurrentLLM = p.MaxConcurrentLLM
	}
	if p.RetryMaxAttempts != nil {
		perf.RetryMaxAttempts = *p.RetryMaxAttempts
	}
	if p.RetryBaseDelay > 0 {
		perf.RetryBaseDelay = p.RetryBaseDelay
	}
	if p.EnableParallelProcessing != nil {
		perf.EnableParallelProcessing = *p.EnableParallelProcessing
	}
	if p.RequestTimeout > 0 {
		perf.RequestTimeout = p.RequestTimeout
	}
	if p.LocalInferenceThreads > 0 {
		perf.LocalInferenceThreads = p.LocalInferenceThreads
	}
	return perf
}

var defaultKeyEnv = map[string][]string{
	llm.ProviderGemini: {"GEMINI_API_KEYS", "GEMINI_API_KEY"},
	llm.ProviderOpenAI: {"OPENAI_API_KEY"},
	llm.ProviderGroq:   {"GROQ_API_KEY"},
}

// ResolveAPIKeys returns the configured keys, falling back to the environment.
func (c LLMConfig) ResolveAPIKeys() []string {
	if len(c.APIKeys) > 0 {
		return c.APIKeys
	}
	names := defaultKeyEnv[c.Provider]
	if c.APIKeyEnv != "" {
		names = []string{c.APIKeyEnv}
	}
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return splitKeys(v)
		}
	}
	return nil
}

func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ProviderConfig converts the llm section for llm.New.
func (c *Config) ProviderConfig(threads int) llm.Config {
	return llm.Config{
		Provider:    c.LLM.Provider,
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		APIKeys:     c.LLM.ResolveAPIKeys(),
		LocalBinary: c.LLM.LocalBinary,
		LocalModel:  c.LLM.LocalModel,
		Threads:     threads,
		CacheDir:    c.Paths.Cache,
	}
}
