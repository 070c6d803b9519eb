// Package playlist summarizes every video of a playlist into one folder.
package playlist

import "context"

// Playlist is an ordered list of video references under a title.
type Playlist struct {
	Title string   `yaml:"title"`
	Items []string `yaml:"items"`
}

// Failure records a video that could not be digested.
type Failure struct {
	VideoID string
	Error   string
}

// Result summarizes a playlist run.
type Result struct {
	Title       string
	TotalVideos int
	Successful  []string
	Failed      []Failure
	OutputDir   string
}

// Orchestrator runs the single-video pipeline over a playlist.
type Orchestrator interface {
	// Run processes every item in order. A failing item is recorded and the
	// run continues; only output folder problems abort it.
	Run(ctx context.Context, pl Playlist) (Result, error)
}
