package playlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrPlaylistURL is returned when a playlist URL is given where a manifest or
// a single video is expected. Playlists are fetched with yt-dlp and listed in
// a manifest.
var ErrPlaylistURL = errors.New("playlist URLs are not fetched; list the downloaded captions in a manifest")

// LoadManifest reads a playlist from YAML. Relative item paths are resolved
// against the manifest's directory. Items must be single videos.
func LoadManifest(path string) (Playlist, error) {
	if IsPlaylistURL(path) {
		return Playlist{}, fmt.Errorf("%s: %w", path, ErrPlaylistURL)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Playlist{}, fmt.Errorf("read manifest: %w", err)
	}

	var pl Playlist
	if err := yaml.Unmarshal(data, &pl); err != nil {
		return Playlist{}, fmt.Errorf("parse manifest: %w", err)
	}
	if len(pl.Items) == 0 {
		return Playlist{}, fmt.Errorf("manifest %s lists no items", path)
	}

	dir := filepath.Dir(path)
	for i, item := range pl.Items {
		item = strings.TrimSpace(item)
		if IsPlaylistURL(item) {
			return Playlist{}, fmt.Errorf("manifest item %d (%s): %w", i+1, item, ErrPlaylistURL)
		}
		if item != "" && !filepath.IsAbs(item) && !strings.Contains(item, "://") {
			item = filepath.Join(dir, item)
		}
		pl.Items[i] = item
	}
	return pl, nil
}
