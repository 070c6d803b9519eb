package caption

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// InfoSuffix marks the metadata sidecar written next to a caption file.
const InfoSuffix = ".info.json"

// trackTag matches the subtitle track yt-dlp puts between the video name and
// the extension: "en", "en-US", "zh-Hans", "live_chat".
var trackTag = regexp.MustCompile(`^([a-zA-Z]{2,3}(-[a-zA-Z0-9]{2,8})*|live_chat)$`)

// InfoCandidates lists the sidecar paths a caption file may have, most
// specific first: "talk.en.json3" gives "talk.en.info.json", "talk.info.json".
func InfoCandidates(path string) []string {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := []string{filepath.Join(dir, stem+InfoSuffix)}

	if ext := filepath.Ext(stem); ext != "" && trackTag.MatchString(ext[1:]) {
		out = append(out, filepath.Join(dir, strings.TrimSuffix(stem, ext)+InfoSuffix))
	}
	return out
}

// FindInfo returns the first existing sidecar for path, or "".
func FindInfo(path string) string {
	for _, p := range InfoCandidates(path) {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load reads a caption file and picks the parser from its extension:
// .json3 (YouTube track), .srt (SubRip) or .json (a plain segment list).
func Load(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json3":
		return ParseJSON3(data)
	case ".srt":
		return ParseSRT(string(data))
	case ".json":
		var segs []Segment
		if err := json.Unmarshal(data, &segs); err != nil {
			return nil, fmt.Errorf("caption json: decode: %w", err)
		}
		return segs, nil
	default:
		return nil, fmt.Errorf("unsupported caption format: %s", filepath.Ext(path))
	}
}

// IsCaptionFile reports whether Load understands the file extension.
// Metadata sidecars (*.info.json) are not captions.
func IsCaptionFile(path string) bool {
	if strings.HasSuffix(strings.ToLower(path), InfoSuffix) {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json3", ".srt", ".json":
		return true
	}
	return false
}
