// Package performance holds the per-run execution settings and the tracker
// that accounts for phase timings, concurrency efficiency and failures.
package performance

import "time"

// Config is built once per run and passed explicitly to every stage.
type Config struct {
	MaxConcurrentLLM            int
	MaxConcurrentLocalInference int
	RetryMaxAttempts            int
	RetryBaseDelay              time.Duration
	EnableParallelProcessing    bool
	RequestTimeout              time.Duration
	LocalInferenceThreads       int
	MemoryLimitMB               int
}

// DefaultConfig returns the settings used when no hardware facts are known.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentLLM:            5,
		MaxConcurrentLocalInference: 2,
		RetryMaxAttempts:            3,
		RetryBaseDelay:              time.Second,
		EnableParallelProcessing:    true,
		RequestTimeout:              60 * time.Second,
		LocalInferenceThreads:       1,
		MemoryLimitMB:               4096,
	}
}

// NewConfig scales the defaults to the sampled hardware.
func NewConfig(hw Hardware) Config {
	cfg := DefaultConfig()

	cpus := hw.CPUCount
	if cpus <= 0 {
		cpus = 4
	}
	memMB := hw.MemoryAvailableMB
	if memMB <= 0 {
		memMB = 4096
	}

	cfg.MaxConcurrentLLM = min(max(2, cpus/2), 8)
	cfg.MaxConcurrentLocalInference = min(max(1, cpus/4), 3)

	switch {
	case memMB < 4096:
		cfg.MaxConcurrentLLM = min(cfg.MaxConcurrentLLM, 2)
		cfg.MaxConcurrentLocalInference = 1
	case memMB > 16384:
		cfg.MaxConcurrentLLM = min(cfg.MaxConcurrentLLM+2, 10)
	}

	cfg.MemoryLimitMB = int(memMB * 0.8)
	cfg.LocalInferenceThreads = min(max(1, cpus/4), 2)
	return cfg
}
