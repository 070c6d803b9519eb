package playlist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/caption-digest/internal/progress"
)

func (o *implOrchestrator) Run(ctx context.Context, pl Playlist) (Result, error) {
	title := strings.TrimSpace(pl.Title)
	if title == "" {
		title = untitled
	}

	dir, err := createFolder(o.baseDir, SanitizeFolderName(title))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Title:       title,
		TotalVideos: len(pl.Items),
		OutputDir:   dir,
	}
	o.logger.Info(ctx, "Processing playlist %q: %d videos -> %s", title, len(pl.Items), dir)

	for i, ref := range pl.Items {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name := itemName(ref)
		o.logger.Info(ctx, "[%d/%d] Processing: %s", i+1, len(pl.Items), name)

		rep := progress.WithPrefix(o.progress, progress.Item(i+1, len(pl.Items), name))
		result, err := o.processor.Process(ctx, ref, rep)
		if err == nil {
			path := filepath.Join(dir, result.VideoID+result.ArtifactExt)
			if werr := os.WriteFile(path, result.Artifact, 0644); werr != nil {
				err = fmt.Errorf("write %s: %w", path, werr)
			}
		}
		if err != nil {
			o.logger.Error(ctx, "Failed to process %s: %v", ref, err)
			res.Failed = append(res.Failed, Failure{VideoID: ref, Error: err.Error()})
			continue
		}

		o.logger.Info(ctx, "[DONE] %s", result.VideoID)
		res.Successful = append(res.Successful, result.VideoID)
	}

	o.logger.Info(ctx, "Playlist complete: %d success, %d failed", len(res.Successful), len(res.Failed))
	return res, nil
}

// createFolder makes base/name, or "name (n)" for the first free n.
func createFolder(base, name string) (string, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	candidate := filepath.Join(base, name)
	for n := 1; ; n++ {
		err := os.Mkdir(candidate, 0755)
		if err == nil {
			return candidate, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create playlist folder: %w", err)
		}
		candidate = filepath.Join(base, fmt.Sprintf("%s (%d)", name, n))
	}
}

func itemName(ref string) string {
	name := filepath.Base(ref)
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
