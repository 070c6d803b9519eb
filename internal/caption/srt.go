package caption

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSRT parses SubRip text into segments. Consecutive text lines under one
// timestamp are joined with a space.
func ParseSRT(text string) ([]Segment, error) {
	//	1
	//	00:00:00,000 --> 00:00:01,830
	//	I'm happy to
	//	have you here today.
	if strings.TrimSpace(text) == "" {
		return []Segment{}, nil
	}

	var (
		segments []Segment
		cur      *Segment
		lines    []string
	)
	flush := func() {
		if cur != nil && len(lines) > 0 {
			cur.Text = strings.Join(lines, " ")
			segments = append(segments, *cur)
		}
		cur = nil
		lines = nil
	}

	for i, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		if strings.Contains(line, "-->") {
			flush()
			parts := strings.SplitN(line, "-->", 2)
			start, err := parseSRTTime(parts[0])
			if err != nil {
				return nil, fmt.Errorf("caption srt: line %d: %w", i+1, err)
			}
			end, err := parseSRTTime(parts[1])
			if err != nil {
				return nil, fmt.Errorf("caption srt: line %d: %w", i+1, err)
			}
			cur = &Segment{Start: start, End: end}
			continue
		}
		if cur == nil {
			// sequence number or stray text before the first timestamp
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return segments, nil
}

// parseSRTTime converts "HH:MM:SS,mmm" into whole seconds.
func parseSRTTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, ",", ".")
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}
