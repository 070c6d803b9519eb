package caption

// Segment is one timed caption line. Start and End are whole seconds.
type Segment struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// LastEnd returns the largest end time in segs, or 0 for an empty list.
func LastEnd(segs []Segment) int {
	last := 0
	for _, s := range segs {
		if s.End > last {
			last = s.End
		}
		if s.Start > last {
			last = s.Start
		}
	}
	return last
}
