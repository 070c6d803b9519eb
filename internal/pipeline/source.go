package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
)

// videoInfo is the subset of a yt-dlp style info.json the digest uses.
type videoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	WebpageURL string  `json:"webpage_url"`
	Extractor  string  `json:"extractor"`
	Duration   float64 `json:"duration"`
}

// FileSource reads caption files from disk. Metadata comes from an optional
// yt-dlp sidecar next to the caption file ("talk.info.json" for
// "talk.en.json3"). YouTube captions are run through Sponsor when it is set.
type FileSource struct {
	Sponsor *caption.SponsorBlock
	Log     logger.Logger
}

func (f FileSource) Fetch(ctx context.Context, ref string) (Video, error) {
	if err := ctx.Err(); err != nil {
		return Video{}, err
	}

	segs, err := caption.Load(ref)
	if err != nil {
		return Video{}, err
	}

	base := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	v := Video{
		ID:       base,
		Title:    base,
		Segments: segs,
	}

	if path := caption.FindInfo(ref); path != "" {
		info, err := readInfo(path)
		if err != nil {
			return Video{}, err
		}
		if info.ID != "" {
			v.ID = info.ID
		}
		if info.Title != "" {
			v.Title = info.Title
		}
		v.URL = info.WebpageURL
		v.Extractor = strings.ToLower(info.Extractor)
		v.Duration = int(info.Duration)
	}

	if v.Duration <= 0 {
		v.Duration = caption.LastEnd(segs)
	}

	if strings.HasPrefix(v.Extractor, "youtube") && f.Sponsor.Enabled() {
		kept, err := f.Sponsor.RemoveSponsored(ctx, v.ID, v.Segments)
		if err != nil {
			if ctx.Err() != nil {
				return Video{}, ctx.Err()
			}
			f.logger().Warn(ctx, "Keeping sponsored captions of %s: %v", v.ID, err)
		} else if dropped := len(v.Segments) - len(kept); dropped > 0 {
			f.logger().Info(ctx, "Removed %d sponsored captions from %s", dropped, v.ID)
			v.Segments = kept
		}
	}
	return v, nil
}

func (f FileSource) logger() logger.Logger {
	if f.Log == nil {
		return logger.Discard()
	}
	return f.Log
}

func readInfo(path string) (videoInfo, error) {
	var info videoInfo
	data, err := os.ReadFile(path)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return info, nil
}
