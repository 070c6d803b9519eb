package render

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
)

// Markdown renders a Document as GitHub-flavoured markdown.
type Markdown struct{}

func (Markdown) Ext() string { return ".md" }

func (Markdown) Render(doc Document) ([]byte, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", doc.Title)
	if !doc.GeneratedAt.IsZero() {
		fmt.Fprintf(&sb, "_%s_\n\n", doc.GeneratedAt.Format("2006-01-02 15:04"))
	}
	if doc.URL != "" {
		fmt.Fprintf(&sb, "Source: %s\n\n", doc.URL)
	}

	multiHour := len(doc.Hours) > 1
	for h, hour := range doc.Hours {
		if multiHour {
			fmt.Fprintf(&sb, "## Hour %d (%s)\n\n", h+1, timeLink(doc, h, 0))
		} else {
			sb.WriteString("## Summary\n\n")
		}
		if overall := strings.TrimSpace(hour.Overall); overall != "" {
			sb.WriteString(overall)
			sb.WriteString("\n\n")
		} else {
			sb.WriteString("_No summary available._\n\n")
		}

		for b, part := range hour.Parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			fmt.Fprintf(&sb, "### %s\n\n%s\n\n", timeLink(doc, h, b), part)
		}
	}

	if len(doc.Transcript) > 0 {
		sb.WriteString("## Transcript\n\n")
		for _, seg := range dedupe(doc.Transcript) {
			fmt.Fprintf(&sb, "`%s` %s\n\n", FormatTimestamp(seg.Start), seg.Text)
		}
	}

	return []byte(strings.TrimRight(sb.String(), "\n") + "\n"), nil
}

func timeLink(doc Document, h, b int) string {
	label := FormatTimestamp(h*3600 + b*300)
	if u := TimeURL(doc.URL, doc.Extractor, h, b); u != "" {
		return fmt.Sprintf("[%s](%s)", label, u)
	}
	return label
}

// dedupe drops blank and repeated caption lines, keeping first occurrences.
func dedupe(segs []caption.Segment) []caption.Segment {
	seen := make(map[string]bool, len(segs))
	out := make([]caption.Segment, 0, len(segs))
	for _, seg := range segs {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" || seen[seg.Text] {
			continue
		}
		seen[seg.Text] = true
		out = append(out, seg)
	}
	return out
}
