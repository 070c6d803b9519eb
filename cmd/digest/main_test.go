package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/performance"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	want := map[string]bool{"summarize": false, "playlist": false, "watch": false, "hardware": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	flags := &globalFlags{
		configPath:    filepath.Join(t.TempDir(), "missing.yaml"),
		provider:      "openai",
		output:        "elsewhere",
		format:        "docx",
		maxConcurrent: 7,
		sequential:    true,
	}
	cfg, err := loadConfig(flags)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.Paths.Output != "elsewhere" || cfg.Render.Format != "docx" {
		t.Errorf("loadConfig() = %+v", cfg)
	}
	perf := cfg.Performance.ApplyTo(performance.DefaultConfig())
	if perf.MaxConcurrentLLM != 7 || perf.EnableParallelProcessing {
		t.Errorf("ApplyTo() = %+v, want 7 sequential", perf)
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  provider: bard\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(&globalFlags{configPath: path}); err == nil {
		t.Error("loadConfig() accepted an unknown provider")
	}
}

func TestHardwareCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"hardware", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--max-concurrent", "9"})
	if err := root.Execute(); err != nil {
		t.Fatalf("hardware error = %v", err)
	}
	if !strings.Contains(out.String(), "Max concurrent LLM calls") {
		t.Errorf("hardware output missing settings:\n%s", out.String())
	}
}

func TestRenderHardwareTable(t *testing.T) {
	hw := performance.Hardware{CPUCount: 8, MemoryTotalMB: 16000, MemoryAvailableMB: 8192}
	derived := performance.NewConfig(hw)
	effective := derived
	effective.RetryBaseDelay = 2 * time.Second
	got := renderHardwareTable(hw, derived, effective)
	if !strings.Contains(got, "2s") {
		t.Errorf("table missing effective override:\n%s", got)
	}
}
