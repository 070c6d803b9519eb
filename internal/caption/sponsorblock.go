package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultSponsorBlockURL = "https://sponsor.ajay.app"

	defaultSponsorTimeout = 15 * time.Second
)

// SponsorCategories lists the categories the skipSegments API accepts.
var SponsorCategories = []string{
	"sponsor", "selfpromo", "interaction", "intro", "outro",
	"preview", "music", "offtopic", "filler",
}

// Skip is one crowd-sourced segment to drop, in seconds.
type Skip struct {
	Segment  [2]float64 `json:"segment"`
	Category string     `json:"category"`
}

// SponsorBlock queries the SponsorBlock skipSegments API for a video.
type SponsorBlock struct {
	baseURL    string
	categories []string
	httpClient *http.Client
}

// SponsorOption customizes a SponsorBlock client.
type SponsorOption func(*SponsorBlock)

// WithSponsorBaseURL overrides the API host.
func WithSponsorBaseURL(base string) SponsorOption {
	return func(s *SponsorBlock) {
		if base = strings.TrimSpace(base); base != "" {
			s.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithSponsorHTTPClient overrides the default HTTP client.
func WithSponsorHTTPClient(client *http.Client) SponsorOption {
	return func(s *SponsorBlock) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewSponsorBlock returns a client that removes the given categories. With no
// categories it is disabled.
func NewSponsorBlock(categories []string, opts ...SponsorOption) *SponsorBlock {
	s := &SponsorBlock{
		baseURL:    DefaultSponsorBlockURL,
		categories: categories,
		httpClient: &http.Client{Timeout: defaultSponsorTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether any category is requested.
func (s *SponsorBlock) Enabled() bool {
	return s != nil && len(s.categories) > 0
}

type sponsorStatusError struct {
	StatusCode int
	Body       string
}

func (e *sponsorStatusError) Error() string {
	return fmt.Sprintf("sponsorblock: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Skips fetches the segments to drop for videoID. A video without any
// submissions yields no skips.
func (s *SponsorBlock) Skips(ctx context.Context, videoID string) ([]Skip, error) {
	if !s.Enabled() {
		return nil, nil
	}

	q := url.Values{}
	q.Set("videoID", videoID)
	for _, c := range s.categories {
		q.Add("category", c)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/skipSegments?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("sponsorblock: read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &sponsorStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var skips []Skip
	if err := json.Unmarshal(body, &skips); err != nil {
		return nil, fmt.Errorf("sponsorblock: decode: %w", err)
	}
	return skips, nil
}

// RemoveSponsored drops captions of videoID that overlap any skip segment.
func (s *SponsorBlock) RemoveSponsored(ctx context.Context, videoID string, segs []Segment) ([]Segment, error) {
	skips, err := s.Skips(ctx, videoID)
	if err != nil {
		return segs, err
	}
	return DropSkipped(segs, skips), nil
}

// DropSkipped keeps the captions that touch none of skips. Touching a bound
// counts as overlap.
func DropSkipped(segs []Segment, skips []Skip) []Segment {
	if len(skips) == 0 {
		return segs
	}
	out := make([]Segment, 0, len(segs))
	for _, seg := range segs {
		if !overlapsAny(seg, skips) {
			out = append(out, seg)
		}
	}
	return out
}

func overlapsAny(seg Segment, skips []Skip) bool {
	for _, sk := range skips {
		if !(float64(seg.End) < sk.Segment[0] || sk.Segment[1] < float64(seg.Start)) {
			return true
		}
	}
	return false
}
