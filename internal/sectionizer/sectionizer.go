// Package sectionizer partitions an ordered caption stream into hour windows
// of 5-minute buckets.
package sectionizer

import "github.com/nguyentantai21042004/caption-digest/internal/caption"

const (
	HourSeconds    = 3600
	BucketSeconds  = 300
	BucketsPerHour = HourSeconds / BucketSeconds

	// Trailing windows shorter than this are folded into their predecessor.
	tailThreshold = 60
)

// Bucket holds the caption texts whose start falls in one 300 second window.
type Bucket []string

// Hour is up to BucketsPerHour buckets; bucket i of hour h covers
// [3600h + 300i, 3600h + 300(i+1)).
type Hour []Bucket

// Sectionize assigns every segment to exactly one bucket using its start time
// only. A caption whose end crosses a boundary stays in the bucket it starts
// in. Segments past duration grow the structure instead of being dropped.
func Sectionize(segments []caption.Segment, duration int) []Hour {
	if duration < 0 {
		duration = 0
	}
	hours := shape(duration)
	tail, ok := tailFold(hours, duration)
	if ok {
		hours = tail.trim(hours)
	}

	for _, seg := range segments {
		start := seg.Start
		if start < 0 {
			start = 0
		}
		h := start / HourSeconds
		b := (start % HourSeconds) / BucketSeconds
		if ok && h == tail.hour && b == tail.bucket {
			h, b = tail.intoHour, tail.intoBucket
		}
		hours = grow(hours, h, b)
		hours[h][b] = append(hours[h][b], seg.Text)
	}
	return hours
}

// Window returns the [start, end) seconds covered by bucket b of hour h.
func Window(h, b int) (int, int) {
	start := h*HourSeconds + b*BucketSeconds
	return start, start + BucketSeconds
}

func shape(duration int) []Hour {
	full := duration / HourSeconds
	rem := duration % HourSeconds

	hours := make([]Hour, 0, full+1)
	for i := 0; i < full; i++ {
		hours = append(hours, make(Hour, BucketsPerHour))
	}
	if rem > 0 {
		n := (rem + BucketSeconds - 1) / BucketSeconds
		hours = append(hours, make(Hour, n))
	}
	return hours
}

// grow makes sure hours[h][b] exists. Hours skipped over are full width.
func grow(hours []Hour, h, b int) []Hour {
	for len(hours) <= h {
		if n := len(hours); n > 0 {
			hours[n-1] = pad(hours[n-1], BucketsPerHour)
		}
		hours = append(hours, Hour{})
		if len(hours) <= h {
			hours[len(hours)-1] = make(Hour, BucketsPerHour)
		}
	}
	hours[h] = pad(hours[h], b+1)
	return hours
}

func pad(hour Hour, n int) Hour {
	for len(hour) < n {
		hour = append(hour, nil)
	}
	return hour
}

// fold moves the dangling window (hour, bucket) into (intoHour, intoBucket).
type fold struct {
	hour, bucket         int
	intoHour, intoBucket int
}

// tailFold picks the dangling window from the duration-derived shape, before
// any segment grows it.
func tailFold(hours []Hour, duration int) (fold, bool) {
	n := len(hours)
	if n == 0 {
		return fold{}, false
	}

	// A remainder of 0 is a full final hour, not a dangling one.
	if rem := duration % HourSeconds; duration > HourSeconds && rem > 0 && rem < tailThreshold && n >= 2 {
		return fold{hour: n - 1, bucket: 0, intoHour: n - 2, intoBucket: len(hours[n-2]) - 1}, true
	}

	if rem := duration % BucketSeconds; duration > BucketSeconds && rem < tailThreshold {
		last := len(hours[n-1])
		if last >= 2 {
			return fold{hour: n - 1, bucket: last - 1, intoHour: n - 1, intoBucket: last - 2}, true
		}
	}
	return fold{}, false
}

func (f fold) trim(hours []Hour) []Hour {
	if f.hour != f.intoHour {
		return hours[:f.hour]
	}
	hours[f.hour] = hours[f.hour][:f.bucket]
	return hours
}
