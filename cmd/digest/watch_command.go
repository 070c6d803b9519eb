package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/progress"
	"github.com/nguyentantai21042004/caption-digest/internal/watcher"
)

func newWatchCommand(flags *globalFlags) *cobra.Command {
	var existing bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Summarize caption (or, with transcription configured, media) files dropped into the watch directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, run, err := newRunContext(cmd.Context(), flags)
			if err != nil {
				return err
			}
			out := func(s string) { fmt.Fprintln(cmd.OutOrStdout(), s) }
			defer run.close(ctx, out)

			cfg := run.cfg
			processedDir := filepath.Join(cfg.Paths.Output, "processed")
			for _, dir := range []string{cfg.Paths.Watch, cfg.Paths.Output, processedDir} {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("create directory %s: %w", dir, err)
				}
			}

			proc := run.processor()
			handler := func(ctx context.Context, path string) error {
				// Concurrent files would interleave on one terminal bar.
				res, err := proc.Process(ctx, path, progress.Nop{})
				if err != nil {
					return err
				}
				dest, err := writeArtifact(cfg.Paths.Output, res)
				if err != nil {
					return err
				}
				moveProcessed(ctx, run, path, processedDir)
				run.log.Info(ctx, "[DONE] %s -> %s", filepath.Base(path), dest)
				return nil
			}

			opts := []watcher.Option{watcher.WithFilter(run.accepts)}
			if existing {
				opts = append(opts, watcher.WithExisting())
			}
			w, err := watcher.New(cfg.Paths.Watch, handler, run.log, cfg.Performance.MaxConcurrentVideos, opts...)
			if err != nil {
				return err
			}
			defer w.Stop()

			run.log.Info(ctx, "Caption digest is watching %s (output: %s). Press Ctrl+C to stop", cfg.Paths.Watch, cfg.Paths.Output)
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			run.log.Info(ctx, "Caption digest stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&existing, "existing", false, "Also summarize caption files already in the watch directory")
	return cmd
}

// moveProcessed moves the caption file and its metadata sidecar out of the
// watch directory so they are not processed again.
func moveProcessed(ctx context.Context, run *runContext, path, dir string) {
	for _, p := range []string{path, caption.FindInfo(path)} {
		if p == "" {
			continue
		}
		if err := os.Rename(p, filepath.Join(dir, filepath.Base(p))); err != nil {
			run.log.Warn(ctx, "Failed to move %s: %v", p, err)
		}
	}
}
