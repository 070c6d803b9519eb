package main

import (
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	logLevel   string
	verbose    bool

	provider      string
	model         string
	output        string
	format        string
	maxConcurrent int
	sequential    bool
	transcript    bool
	sponsorblock  []string
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:           "digest",
		Short:         "Summarize long video captions hour by hour with an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "config.yaml", "Configuration file path (ignored if missing)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Print the performance report at the end of the run")
	pf.StringVar(&flags.provider, "provider", "", "LLM provider override (gemini, openai, groq, local)")
	pf.StringVar(&flags.model, "model", "", "Model override")
	pf.StringVarP(&flags.output, "output", "o", "", "Output directory override")
	pf.StringVar(&flags.format, "format", "", "Artifact format override (md, docx)")
	pf.IntVar(&flags.maxConcurrent, "max-concurrent", 0, "Maximum concurrent LLM calls")
	pf.BoolVar(&flags.sequential, "sequential", false, "Summarize sections one at a time")
	pf.BoolVar(&flags.transcript, "transcript", false, "Append the caption transcript to each artifact")
	pf.StringSliceVar(&flags.sponsorblock, "sponsorblock", nil, "SponsorBlock categories to drop from YouTube captions (sponsor, selfpromo, intro, ...)")

	rootCmd.AddCommand(newSummarizeCommand(flags))
	rootCmd.AddCommand(newPlaylistCommand(flags))
	rootCmd.AddCommand(newWatchCommand(flags))
	rootCmd.AddCommand(newHardwareCommand(flags))

	return rootCmd
}
