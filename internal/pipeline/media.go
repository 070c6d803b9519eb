package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/caption-digest/internal/caption"
	"github.com/nguyentantai21042004/caption-digest/internal/logger"
	"github.com/nguyentantai21042004/caption-digest/pkg/executor"
)

var mediaExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
	".m4v": true, ".flv": true, ".mp3": true, ".m4a": true, ".wav": true,
}

// IsMediaFile reports whether MediaSource can transcribe path.
func IsMediaFile(path string) bool {
	return mediaExts[strings.ToLower(filepath.Ext(path))]
}

// WhisperConfig points at a whisper.cpp install.
type WhisperConfig struct {
	BinaryPath string
	ModelPath  string
	Language   string
	Prompt     string
	Threads    int
}

// MediaSource produces captions for audio or video files by extracting a
// 16kHz mono track with ffmpeg and transcribing it with whisper.cpp.
type MediaSource struct {
	executor executor.Executor
	cfg      WhisperConfig
	tempDir  string
	logger   logger.Logger
}

// NewMediaSource creates a MediaSource. Intermediate files go to tempDir.
func NewMediaSource(exec executor.Executor, cfg WhisperConfig, tempDir string, log logger.Logger) *MediaSource {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	if cfg.Language == "" {
		cfg.Language = "auto"
	}
	return &MediaSource{executor: exec, cfg: cfg, tempDir: tempDir, logger: log}
}

func (m *MediaSource) Fetch(ctx context.Context, ref string) (Video, error) {
	if err := os.MkdirAll(m.tempDir, 0755); err != nil {
		return Video{}, fmt.Errorf("create temp dir: %w", err)
	}
	work, err := os.MkdirTemp(m.tempDir, "transcribe-*")
	if err != nil {
		return Video{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(work)

	audioPath, err := m.extractAudio(ctx, ref, work)
	if err != nil {
		return Video{}, fmt.Errorf("extract audio: %w", err)
	}
	srtPath, err := m.transcribe(ctx, audioPath)
	if err != nil {
		return Video{}, fmt.Errorf("transcribe: %w", err)
	}

	data, err := os.ReadFile(srtPath)
	if err != nil {
		return Video{}, fmt.Errorf("read transcript: %w", err)
	}
	segs, err := caption.ParseSRT(string(data))
	if err != nil {
		return Video{}, err
	}

	name := strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	return Video{
		ID:       name,
		Title:    name,
		Duration: caption.LastEnd(segs),
		Segments: segs,
	}, nil
}

// extractAudio converts the input to 16kHz mono PCM, the format whisper.cpp
// expects.
func (m *MediaSource) extractAudio(ctx context.Context, mediaPath, dir string) (string, error) {
	audioPath := filepath.Join(dir, "audio.wav")
	m.logger.Info(ctx, "Extracting audio: %s", mediaPath)

	args := []string{
		"-i", mediaPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-threads", "0",
		"-y",
		audioPath,
	}
	if _, err := m.executor.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return audioPath, nil
}

// transcribe runs whisper.cpp, which writes <prefix>.srt next to the audio.
func (m *MediaSource) transcribe(ctx context.Context, audioPath string) (string, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	m.logger.Info(ctx, "Transcribing with %d threads: %s", m.cfg.Threads, audioPath)

	args := []string{
		"-m", m.cfg.ModelPath,
		"-f", audioPath,
		"-osrt",
		"-l", m.cfg.Language,
		"-t", strconv.Itoa(m.cfg.Threads),
		"-ml", "0",
		"-mc", "0",
		"--output-file", outputPrefix,
	}
	if m.cfg.Prompt != "" {
		args = append(args, "--prompt", m.cfg.Prompt)
	}

	if _, err := m.executor.Run(ctx, executor.Command{
		Name: m.cfg.BinaryPath,
		Args: args,
		Dir:  filepath.Dir(audioPath),
	}); err != nil {
		return "", fmt.Errorf("whisper transcribe: %w", err)
	}
	return outputPrefix + ".srt", nil
}

// RoutedSource sends caption files to Captions and media files to Media.
type RoutedSource struct {
	Captions Source
	// Media is optional; without it media files are rejected.
	Media Source
}

func (r RoutedSource) Fetch(ctx context.Context, ref string) (Video, error) {
	switch {
	case caption.IsCaptionFile(ref):
		return r.Captions.Fetch(ctx, ref)
	case IsMediaFile(ref) && r.Media != nil:
		return r.Media.Fetch(ctx, ref)
	case IsMediaFile(ref):
		return Video{}, fmt.Errorf("%s: transcription is not configured", filepath.Base(ref))
	default:
		return Video{}, fmt.Errorf("unsupported input: %s", filepath.Base(ref))
	}
}
