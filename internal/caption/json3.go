package caption

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoEvents is returned when a json3 payload carries no "events" key.
var ErrNoEvents = errors.New("caption json3: missing events")

type json3Payload struct {
	Events *[]json3Event `json:"events"`
}

type json3Event struct {
	StartMs    *int64 `json:"tStartMs"`
	DurationMs int64  `json:"dDurationMs"`
	Segs       []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}

// ParseJSON3 decodes a YouTube json3 caption track.
// Events without text or without a start time are skipped.
func ParseJSON3(data []byte) ([]Segment, error) {
	var payload json3Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("caption json3: decode: %w", err)
	}
	if payload.Events == nil {
		return nil, ErrNoEvents
	}

	segments := make([]Segment, 0, len(*payload.Events))
	for _, ev := range *payload.Events {
		var b strings.Builder
		for _, s := range ev.Segs {
			b.WriteString(s.UTF8)
		}
		text := b.String()
		if text == "" || ev.StartMs == nil {
			continue
		}
		start := *ev.StartMs
		segments = append(segments, Segment{
			Start: int(start / 1000),
			End:   int((start + ev.DurationMs) / 1000),
			Text:  text,
		})
	}
	return segments, nil
}
