package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-digest/internal/playlist"
)

func newPlaylistCommand(flags *globalFlags) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "playlist <manifest.yaml>",
		Short: "Summarize every video listed in a playlist manifest into one folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pl, err := playlist.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if title != "" {
				pl.Title = title
			}

			ctx, run, err := newRunContext(cmd.Context(), flags)
			if err != nil {
				return err
			}
			out := func(s string) { fmt.Fprintln(cmd.OutOrStdout(), s) }
			defer run.close(ctx, out)

			orch := playlist.New(run.processor(), run.cfg.Paths.Output, run.progress, run.log)
			res, err := orch.Run(ctx, pl)
			if err != nil {
				return err
			}
			out(playlist.SummaryTable(res))
			if len(res.Successful) == 0 && res.TotalVideos > 0 {
				return fmt.Errorf("no video of %q could be summarized", res.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Override the playlist title from the manifest")
	return cmd
}
