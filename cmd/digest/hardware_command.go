package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-digest/internal/performance"
)

func newHardwareCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "hardware",
		Short: "Show the detected hardware and the execution settings derived from it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			hw := performance.SampleHardware()
			derived := performance.NewConfig(hw)
			effective := cfg.Performance.ApplyTo(derived)

			fmt.Fprintln(cmd.OutOrStdout(), renderHardwareTable(hw, derived, effective))
			return nil
		},
	}
}

func renderHardwareTable(hw performance.Hardware, derived, effective performance.Config) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Setting", "Derived", "Effective"})
	tw.AppendRow(table.Row{"CPU cores", hw.CPUCount, hw.CPUCount})
	tw.AppendRow(table.Row{"Memory total (MB)", fmt.Sprintf("%.0f", hw.MemoryTotalMB), ""})
	tw.AppendRow(table.Row{"Memory available (MB)", fmt.Sprintf("%.0f", hw.MemoryAvailableMB), ""})
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"Max concurrent LLM calls", derived.MaxConcurrentLLM, effective.MaxConcurrentLLM})
	tw.AppendRow(table.Row{"Max concurrent local inference", derived.MaxConcurrentLocalInference, effective.MaxConcurrentLocalInference})
	tw.AppendRow(table.Row{"Local inference threads", derived.LocalInferenceThreads, effective.LocalInferenceThreads})
	tw.AppendRow(table.Row{"Retry attempts", derived.RetryMaxAttempts, effective.RetryMaxAttempts})
	tw.AppendRow(table.Row{"Retry base delay", derived.RetryBaseDelay, effective.RetryBaseDelay})
	tw.AppendRow(table.Row{"Request timeout", derived.RequestTimeout, effective.RequestTimeout})
	tw.AppendRow(table.Row{"Parallel processing", derived.EnableParallelProcessing, effective.EnableParallelProcessing})
	tw.AppendRow(table.Row{"Memory limit (MB)", derived.MemoryLimitMB, effective.MemoryLimitMB})
	return tw.Render()
}
