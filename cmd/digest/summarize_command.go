package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-digest/internal/playlist"
)

func newSummarizeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <captions>...",
		Short: "Summarize one or more caption files (.json3, .srt, .json)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ref := range args {
				if playlist.IsPlaylistURL(ref) {
					return fmt.Errorf("%s: %w (see digest playlist)", ref, playlist.ErrPlaylistURL)
				}
			}

			ctx, run, err := newRunContext(cmd.Context(), flags)
			if err != nil {
				return err
			}
			out := func(s string) { fmt.Fprintln(cmd.OutOrStdout(), s) }
			defer run.close(ctx, out)

			proc := run.processor()
			var failed int
			for _, ref := range args {
				res, err := proc.Process(ctx, ref, run.progress)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					run.log.Error(ctx, "Failed to summarize %s: %v", ref, err)
					failed++
					continue
				}
				path, err := writeArtifact(run.cfg.Paths.Output, res)
				if err != nil {
					return err
				}
				out(path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(args))
			}
			return nil
		},
	}
}
