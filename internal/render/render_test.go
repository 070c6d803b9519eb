package render

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/summarizer"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{300, "00:05:00"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.in); got != tt.want {
			t.Errorf("FormatTimestamp(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		extractor string
		h, b      int
		want      string
	}{
		{"youtube", "https://www.youtube.com/watch?v=abc", "youtube", 1, 2, "https://www.youtube.com/watch?v=abc&t=4200"},
		{"twitch", "https://www.twitch.tv/videos/1", "twitch", 2, 3, "https://www.twitch.tv/videos/1?t=2h15m00s"},
		{"twitch vod", "https://www.twitch.tv/videos/1", "twitch:vod", 0, 1, "https://www.twitch.tv/videos/1?t=0h5m00s"},
		{"youtube tab", "https://www.youtube.com/watch?v=abc", "YouTube:Tab", 0, 3, "https://www.youtube.com/watch?v=abc&t=900"},
		{"other", "https://example.com/v", "vimeo", 1, 1, "https://example.com/v"},
		{"no url", "", "youtube", 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeURL(tt.url, tt.extractor, tt.h, tt.b); got != tt.want {
				t.Errorf("TimeURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func sampleDoc() Document {
	return Document{
		Title:       "Long Stream",
		URL:         "https://www.youtube.com/watch?v=abc",
		Extractor:   "youtube",
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		Hours: []summarizer.HourSummary{
			{Overall: "First hour **overall**.", Parts: []string{"intro", "", "demo"}},
			{Overall: "", Parts: []string{}},
		},
		Transcript: []caption.Segment{
			{Start: 1, End: 3, Text: "hello"},
			{Start: 4, End: 6, Text: "hello"},
			{Start: 3725, End: 3730, Text: "world"},
		},
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown{}.Render(sampleDoc())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	md := string(out)
	for _, want := range []string{
		"# Long Stream",
		"_2026-01-02 03:04_",
		"## Hour 1 ([00:00:00](https://www.youtube.com/watch?v=abc&t=0))",
		"### [00:10:00](https://www.youtube.com/watch?v=abc&t=600)\n\ndemo",
		"## Hour 2",
		"_No summary available._",
		"## Transcript\n\n`00:00:01` hello\n\n`01:02:05` world\n",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	if strings.Count(md, "hello") != 1 {
		t.Errorf("transcript lines not deduplicated:\n%s", md)
	}
}

func TestDocx(t *testing.T) {
	out, err := Docx{}.Render(sampleDoc())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("docx is not a zip archive: %v", err)
	}
	var found bool
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			found = true
		}
	}
	if !found {
		t.Error("docx missing word/document.xml")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"", ".md", false},
		{"md", ".md", false},
		{"DOCX", ".docx", false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		r, err := New(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("New(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			continue
		}
		if err == nil && r.Ext() != tt.wantExt {
			t.Errorf("New(%q).Ext() = %q, want %q", tt.format, r.Ext(), tt.wantExt)
		}
	}
}

func TestCleanMarkdownInline(t *testing.T) {
	got := cleanMarkdownInline("[00:05:00](https://x.test/a_b) **bold** `code`")
	want := "00:05:00 (https://x.test/a_b) bold code"
	if got != want {
		t.Errorf("cleanMarkdownInline() = %q, want %q", got, want)
	}
}
