package playlist

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	untitled      = "Untitled Playlist"
	maxFolderName = 100
)

var (
	reInvalidChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	reSpaces       = regexp.MustCompile(`\s+`)
	rePlaylistURL  = regexp.MustCompile(`playlist\?list=|/playlist/|&list=|\?list=`)
)

// SanitizeFolderName makes title safe to use as a directory name.
func SanitizeFolderName(title string) string {
	name := reInvalidChars.ReplaceAllString(title, " ")
	name = reSpaces.ReplaceAllString(name, " ")
	name = norm.NFC.String(strings.TrimSpace(name))

	if r := []rune(name); len(r) > maxFolderName {
		name = strings.TrimSpace(string(r[:maxFolderName]))
	}
	if name == "" {
		return untitled
	}
	return name
}

// IsPlaylistURL reports whether url points at a playlist rather than a
// single video.
func IsPlaylistURL(url string) bool {
	return rePlaylistURL.MatchString(url)
}
