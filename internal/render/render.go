// Package render turns hour summaries into documents that can be written to
// disk.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/sectionizer"
	"github.com/nguyentantai21042004/caption-digest/internal/summarizer"
)

const (
	FormatMarkdown = "md"
	FormatDocx     = "docx"
)

// Document is everything a renderer needs for one video.
type Document struct {
	Title       string
	URL         string
	Extractor   string
	Hours       []summarizer.HourSummary
	GeneratedAt time.Time
	// Transcript, when set, is appended after the summaries.
	Transcript []caption.Segment
}

// Renderer encodes a Document.
type Renderer interface {
	Render(doc Document) ([]byte, error)
	// Ext is the file extension, dot included.
	Ext() string
}

// New returns the renderer for format.
func New(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatMarkdown, "markdown", "":
		return Markdown{}, nil
	case FormatDocx:
		return Docx{}, nil
	default:
		return nil, fmt.Errorf("unknown render format %q", format)
	}
}

// FormatTimestamp renders seconds as HH:MM:SS.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// TimeURL links to the start of bucket b of hour h on sites that support
// it. Extractors match by prefix ("twitch:vod", "youtube:tab"); others get
// the bare url.
func TimeURL(url, extractor string, h, b int) string {
	if url == "" {
		return ""
	}
	extractor = strings.ToLower(extractor)
	switch {
	case strings.HasPrefix(extractor, "youtube"):
		start, _ := sectionizer.Window(h, b)
		return fmt.Sprintf("%s&t=%d", url, start)
	case strings.HasPrefix(extractor, "twitch"):
		return fmt.Sprintf("%s?t=%dh%dm00s", url, h, b*5)
	default:
		return url
	}
}
